package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

const usage = `usage: docsync [flags] <command> [args]

commands:
  init              create the local database and print the installation flags
  status            show outbox size, checkpoint and identity
  push              send queued changes
  pull              fetch remote changes since the last checkpoint
  sync              push then pull
  migrate <user>    hand guest rows over to a signed-in user
  health            check the remote
  backup            upload a snapshot of the local store
  clear             delete all local data and reset the checkpoint
  watch             sync periodically until interrupted
  doc-add <title>   create a draft document
  docs              list documents
`

// Run executes one command. Results are printed as indented JSON.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("%s", usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		a.printf("%s", usage)
		return nil
	case "init":
		return a.init(ctx)
	case "status":
		return a.status(ctx)
	case "push":
		return a.print(a.engine.PushOutbox(ctx))
	case "pull":
		return a.pull(ctx)
	case "sync":
		return a.print(a.engine.FullSync(ctx))
	case "migrate":
		if len(rest) != 1 {
			return fmt.Errorf("%w: migrate <user-id>", ErrUsage)
		}
		return a.print(a.engine.MigrateGuestToUser(ctx, rest[0]))
	case "health":
		return a.print(a.engine.CheckHealth(ctx), nil)
	case "backup":
		return a.runBackup(ctx)
	case "clear":
		return a.clear(ctx)
	case "watch":
		return a.watch(ctx)
	case "doc-add":
		if len(rest) == 0 {
			return fmt.Errorf("%w: doc-add <title>", ErrUsage)
		}
		return a.print(a.dao.UpsertDocument(ctx, &models.Document{Title: strings.Join(rest, " ")}))
	case "docs":
		return a.print(a.dao.ListDocuments(ctx, ""))
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
}

func (a *App) print(v any, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) init(ctx context.Context) error {
	return a.print(a.dao.GetFlags(ctx))
}

type statusView struct {
	GuestID          string    `json:"guest_id"`
	UserID           string    `json:"user_id,omitempty"`
	LastSync         time.Time `json:"last_sync"`
	Outbox           int       `json:"outbox"`
	Documents        int       `json:"documents"`
	RemoteConfigured bool      `json:"remote_configured"`
	State            string    `json:"state"`
}

func (a *App) status(ctx context.Context) error {
	f, err := a.dao.GetFlags(ctx)
	if err != nil {
		return err
	}
	v := statusView{
		GuestID:          f.GuestID,
		RemoteConfigured: a.engine.Configured(),
		State:            a.engine.State().String(),
	}
	if v.UserID, err = a.cp.UserID(ctx); err != nil {
		return err
	}
	if v.LastSync, err = a.cp.LastSync(ctx); err != nil {
		return err
	}
	if v.Outbox, err = a.dao.OutboxSize(ctx); err != nil {
		return err
	}
	docs, err := a.dao.ListDocuments(ctx, "")
	if err != nil {
		return err
	}
	v.Documents = len(docs)
	return a.print(v, nil)
}

func (a *App) pull(ctx context.Context) error {
	since, err := a.cp.LastSync(ctx)
	if err != nil {
		return err
	}
	return a.print(a.engine.PullSince(ctx, since))
}

func (a *App) runBackup(ctx context.Context) error {
	f, err := a.dao.GetFlags(ctx)
	if err != nil {
		return err
	}
	if err := a.dao.FlushChat(ctx); err != nil {
		return err
	}
	return a.print(a.backup.Export(ctx, f.GuestID))
}

// clear wipes local data and starts a fresh guest identity.
func (a *App) clear(ctx context.Context) error {
	if err := a.dao.FlushChat(ctx); err != nil {
		return err
	}
	if err := a.store.ClearAllData(ctx); err != nil {
		return err
	}
	if err := a.cp.Reset(ctx); err != nil {
		return err
	}
	return a.print(a.store.InitializeDefaults(ctx))
}

func (a *App) watch(ctx context.Context) error {
	stop := a.engine.StartAutoSync(ctx, a.cfg.SyncInterval, a.cfg.SyncStartDelay)
	defer stop()

	a.log.Info(ctx, "auto-sync started", "interval", a.cfg.SyncInterval)
	<-ctx.Done()
	a.log.Info(ctx, "auto-sync stopped")
	return nil
}
