// Package archive keeps a copy of every uploaded spreadsheet in S3 so a run
// can be replayed or audited later.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
)

// PutObjectAPI is the subset of the S3 client used by Archive.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config configures the S3 archive.
type Config struct {
	Bucket  string
	Region  string
	Prefix  string // e.g. "kol-metrics/"
	Profile string // shared config profile; empty uses the default chain
}

// Archive stores raw uploads under <prefix>uploads/YYYY/MM/DD/<run>-<file>.
type Archive struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// New creates an Archive on an existing S3 client.
func New(client PutObjectAPI, bucket, prefix string) *Archive {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archive{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// NewS3Archive loads AWS configuration and creates an Archive for cfg.Bucket.
func NewS3Archive(ctx context.Context, cfg Config) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for upload archive: %w", err)
	}
	return New(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Key returns the object key for an upload.
func (a *Archive) Key(runID, filename string) string {
	name := unsafeName.ReplaceAllString(filepath.Base(filename), "_")
	day := a.now().UTC().Format("2006/01/02")
	return a.prefix + path.Join("uploads", day, runID+"-"+name)
}

// Store uploads data and returns its object key.
func (a *Archive) Store(ctx context.Context, runID, filename string, data []byte) (string, error) {
	key := a.Key(runID, filename)
	sum := sha256.Sum256(data)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(filename)),
		Metadata: map[string]string{
			"sha256":   hex.EncodeToString(sum[:]),
			"filename": filepath.Base(filename),
			"run-id":   runID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("S3 PutObject %s/%s: %w", a.bucket, key, err)
	}
	logger.Info("archive: upload stored", "bucket", a.bucket, "key", key, "bytes", len(data))
	return key, nil
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
