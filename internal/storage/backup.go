package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/config"
)

// ObjectPutter is the part of the S3 API a backup needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewR2Client builds an S3 client for the configured CloudFlare R2 (or any
// S3 compatible) endpoint.
func NewR2Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.R2Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true
	}), nil
}

// Backup uploads snapshots of the local state to an object store.
type Backup struct {
	storage *Storage
	client  ObjectPutter
	bucket  string
	now     func() time.Time
	log     zerolog.Logger
}

func NewBackup(s *Storage, client ObjectPutter, bucket string, log zerolog.Logger) *Backup {
	return &Backup{
		storage: s,
		client:  client,
		bucket:  bucket,
		now:     time.Now,
		log:     log,
	}
}

// BackupKey is the object key of a snapshot taken at t.
func BackupKey(t time.Time) string {
	return "backups/localstate-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Run uploads every prefixed key and returns the object key written.
func (b *Backup) Run(ctx context.Context) (string, error) {
	entries, err := b.storage.Export()
	if err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	key := BackupKey(b.now())
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup %s: %w", key, err)
	}

	b.log.Info().
		Str("bucket", b.bucket).
		Str("key", key).
		Int("keys", len(entries)).
		Msg("Local state backed up")
	return key, nil
}
