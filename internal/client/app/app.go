// Package app wires the local store, DAO, sync engine and backup exporter
// behind the docsync command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/docsync/internal/client/backup"
	"github.com/dmitrijs2005/docsync/internal/client/checkpoint"
	"github.com/dmitrijs2005/docsync/internal/client/config"
	"github.com/dmitrijs2005/docsync/internal/client/dao"
	"github.com/dmitrijs2005/docsync/internal/client/remote"
	"github.com/dmitrijs2005/docsync/internal/client/remote/rest"
	"github.com/dmitrijs2005/docsync/internal/client/store"
	syncer "github.com/dmitrijs2005/docsync/internal/client/sync"
	"github.com/dmitrijs2005/docsync/internal/filex"
	"github.com/dmitrijs2005/docsync/internal/logging"
)

type App struct {
	cfg *config.Config
	log logging.Logger
	out io.Writer

	store  *store.Store
	cp     *checkpoint.SQLiteStore
	dao    *dao.DAO
	engine *syncer.Engine
	backup *backup.Exporter
}

// NewLogger picks a text handler for terminals and JSON otherwise.
func NewLogger(f *os.File, level slog.Level) logging.Logger {
	if term.IsTerminal(int(f.Fd())) {
		return logging.NewText(f, level)
	}
	return logging.NewJSON(f, level)
}

// New opens both databases and builds the engine. The remote stays nil when
// the config lacks a URL or key, which leaves the engine unconfigured.
func New(ctx context.Context, cfg *config.Config, log logging.Logger, out io.Writer) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	c := *cfg
	c.DataDir = dir
	cfg = &c

	st := store.New(cfg.LocalDBPath(), log)
	if err := st.Open(ctx); err != nil {
		return nil, err
	}
	if _, err := st.InitializeDefaults(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	cp, err := checkpoint.Open(ctx, cfg.StateDBPath())
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var r remote.Remote
	if cfg.RemoteConfigured() {
		rc, err := rest.New(rest.Config{
			BaseURL:     cfg.RemoteURL,
			APIKey:      cfg.RemoteAPIKey,
			AccessToken: cfg.AccessToken,
			Timeout:     cfg.RequestTimeout,
		})
		if err != nil {
			_ = cp.Close()
			_ = st.Close()
			return nil, err
		}
		r = rc
	} else {
		log.Info(ctx, "remote not configured, running offline")
	}

	d := dao.New(st, nil, log, cfg.DebounceDelay)
	return &App{
		cfg:    cfg,
		log:    log,
		out:    out,
		store:  st,
		cp:     cp,
		dao:    d,
		engine: syncer.New(d, r, cp, log),
		backup: backup.New(backup.Config{
			Endpoint:  cfg.Backup.Endpoint,
			Region:    cfg.Backup.Region,
			Bucket:    cfg.Backup.Bucket,
			Prefix:    cfg.Backup.Prefix,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		}, st, log),
	}, nil
}

// Close flushes pending writes and closes both databases.
func (a *App) Close() error {
	return errors.Join(a.dao.Close(), a.cp.Close(), a.store.Close())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
