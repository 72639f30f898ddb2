// Package publish uploads a built site to an S3 bucket.
//
// Objects whose content hash matches what the state store recorded for the
// last upload are skipped, so repeated publishes only transfer changed
// files. With Prune set, remote objects under the prefix that are no longer
// part of the build are deleted.
package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/leapstack-labs/wadocs/internal/state"
	"golang.org/x/sync/errgroup"
)

// deleteBatch is the S3 limit on keys per DeleteObjects call.
const deleteBatch = 1000

// ErrNoBucket is returned when publishing without a bucket.
var ErrNoBucket = errors.New("publish bucket is not configured")

// Config holds publisher settings.
type Config struct {
	Bucket       string
	Prefix       string
	CacheControl string
	Prune        bool
	DryRun       bool
	Concurrency  int
	Logger       *slog.Logger
}

// Report describes what a publish did, or would do in dry-run mode.
type Report struct {
	Uploaded  []string
	Unchanged []string
	Deleted   []string
	Bytes     int64
	DryRun    bool
}

// Publisher uploads site files to S3. A nil store uploads every file.
type Publisher struct {
	client S3API
	store  *state.Store
	cfg    Config
}

// New creates a publisher.
func New(client S3API, store *state.Store, cfg Config) *Publisher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Publisher{client: client, store: store, cfg: cfg}
}

// localFile is a file of the built site.
type localFile struct {
	path string // on disk
	key  string // object key
	hash string
	size int64
}

// Publish uploads the site in dir.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Report, error) {
	if p.cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	files, err := p.collect(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{DryRun: p.cfg.DryRun}
	var pending []localFile
	for _, f := range files {
		unchanged, err := p.unchanged(ctx, f)
		if err != nil {
			return nil, err
		}
		if unchanged {
			report.Unchanged = append(report.Unchanged, f.key)
			continue
		}
		pending = append(pending, f)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, f := range pending {
		g.Go(func() error {
			if err := p.upload(gctx, f); err != nil {
				return err
			}
			mu.Lock()
			report.Uploaded = append(report.Uploaded, f.key)
			report.Bytes += f.size
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(report.Uploaded)

	if p.cfg.Prune {
		keep := make(map[string]bool, len(files))
		for _, f := range files {
			keep[f.key] = true
		}
		deleted, err := p.prune(ctx, keep)
		if err != nil {
			return nil, err
		}
		report.Deleted = deleted
	}

	p.cfg.Logger.Info("publish finished",
		"bucket", p.cfg.Bucket,
		"prefix", p.cfg.Prefix,
		"uploaded", len(report.Uploaded),
		"unchanged", len(report.Unchanged),
		"deleted", len(report.Deleted),
		"dry_run", p.cfg.DryRun)
	return report, nil
}

func (p *Publisher) collect(dir string) ([]localFile, error) {
	var files []localFile
	err := filepath.WalkDir(dir, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, fp)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(fp) //nolint:gosec // G304: walking the build output
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		sum := sha256.Sum256(data)
		files = append(files, localFile{
			path: fp,
			key:  p.key(filepath.ToSlash(rel)),
			hash: hex.EncodeToString(sum[:]),
			size: int64(len(data)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect site files: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].key < files[j].key })
	return files, nil
}

func (p *Publisher) key(rel string) string {
	if p.cfg.Prefix == "" {
		return rel
	}
	return path.Join(p.cfg.Prefix, rel)
}

func (p *Publisher) unchanged(ctx context.Context, f localFile) (bool, error) {
	if p.store == nil {
		return false, nil
	}
	prev, err := p.store.PublishedHash(ctx, p.stateKey(f.key))
	if err != nil {
		return false, err
	}
	return prev == f.hash, nil
}

// stateKey scopes recorded hashes to the bucket so switching buckets
// uploads everything again.
func (p *Publisher) stateKey(key string) string {
	return "s3://" + p.cfg.Bucket + "/" + key
}

func (p *Publisher) upload(ctx context.Context, f localFile) error {
	if p.cfg.DryRun {
		p.cfg.Logger.Info("would upload", "key", f.key, "bytes", f.size)
		return nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.key, err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(f.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType(f.key)),
	}
	if p.cfg.CacheControl != "" {
		input.CacheControl = aws.String(p.cfg.CacheControl)
	}
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload %s: %w", f.key, err)
	}
	p.cfg.Logger.Debug("uploaded", "key", f.key, "bytes", f.size)

	if p.store != nil {
		if err := p.store.SetPublishedHash(ctx, p.stateKey(f.key), f.hash); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) prune(ctx context.Context, keep map[string]bool) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(p.cfg.Bucket)}
	if p.cfg.Prefix != "" {
		input.Prefix = aws.String(p.cfg.Prefix + "/")
	}

	var stale []string
	pager := s3.NewListObjectsV2Paginator(p.client, input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", p.cfg.Bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !keep[key] {
				stale = append(stale, key)
			}
		}
	}
	sort.Strings(stale)

	if p.cfg.DryRun {
		for _, key := range stale {
			p.cfg.Logger.Info("would delete", "key", key)
		}
		return stale, nil
	}

	for start := 0; start < len(stale); start += deleteBatch {
		end := min(start+deleteBatch, len(stale))
		batch := stale[start:end]
		ids := make([]types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			ids[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}
		out, err := p.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(p.cfg.Bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return nil, fmt.Errorf("delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return nil, fmt.Errorf("delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
		}
		for _, key := range batch {
			if p.store != nil {
				if err := p.store.ForgetPublished(ctx, p.stateKey(key)); err != nil {
					return nil, err
				}
			}
			p.cfg.Logger.Debug("deleted", "key", key)
		}
	}
	return stale, nil
}

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".xml":  "application/xml",
	".txt":  "text/plain; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".pdf":  "application/pdf",
}

// ContentType returns the Content-Type header for an object key. The common
// site types are fixed so uploads do not depend on the host's MIME tables.
func ContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
