// Package backup exports a snapshot of the local store to S3-compatible
// object storage. Snapshots are write-only; restoring is done by hand.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/docsync/internal/client/store"
	"github.com/dmitrijs2005/docsync/internal/logging"
)

// ErrBackupNotConfigured is returned by Export when no bucket is set.
var ErrBackupNotConfigured = errors.New("backup is not configured")

const snapshotVersion = 1

// Seams for tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Source yields the rows to back up.
type Source interface {
	ExportTables(ctx context.Context) (map[string][]store.Row, error)
}

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// Snapshot is the uploaded document.
type Snapshot struct {
	Version int                    `json:"version"`
	TakenAt time.Time              `json:"taken_at"`
	GuestID string                 `json:"guest_id"`
	Tables  map[string][]store.Row `json:"tables"`
}

type Result struct {
	Key   string `json:"key"`
	Bytes int    `json:"bytes"`
	Rows  int    `json:"rows"`
}

type Exporter struct {
	cfg Config
	src Source
	log logging.Logger
	now func() time.Time
}

func New(cfg Config, src Source, log logging.Logger) *Exporter {
	return &Exporter{
		cfg: cfg,
		src: src,
		log: log.With("module", "backup"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (e *Exporter) Configured() bool { return e.cfg.Bucket != "" }

func (e *Exporter) client(ctx context.Context) (objectPutter, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(e.cfg.Region)}
	if e.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(e.cfg.AccessKey, e.cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3Client(awsCfg, func(o *s3.Options) {
		if e.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(e.cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Key returns the object key for a snapshot of guestID taken at t.
func (e *Exporter) Key(guestID string, t time.Time) string {
	prefix := e.cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%s%s/%s.json", prefix, guestID, t.UTC().Format("20060102T150405.000Z"))
}

// Export serializes every local table and uploads the snapshot.
func (e *Exporter) Export(ctx context.Context, guestID string) (Result, error) {
	if !e.Configured() {
		return Result{}, ErrBackupNotConfigured
	}

	tables, err := e.src.ExportTables(ctx)
	if err != nil {
		return Result{}, err
	}

	snap := Snapshot{Version: snapshotVersion, TakenAt: e.now(), GuestID: guestID, Tables: tables}
	body, err := json.Marshal(snap)
	if err != nil {
		return Result{}, fmt.Errorf("encode snapshot: %w", err)
	}

	res := Result{Key: e.Key(guestID, snap.TakenAt), Bytes: len(body)}
	for _, rows := range tables {
		res.Rows += len(rows)
	}

	c, err := e.client(ctx)
	if err != nil {
		return Result{}, err
	}
	_, err = c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(res.Key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("upload snapshot: %w", err)
	}

	e.log.Info(ctx, "snapshot uploaded", "bucket", e.cfg.Bucket, "key", res.Key, "rows", res.Rows)
	return res, nil
}
