package publish

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/leapstack-labs/wadocs/internal/state"
	"github.com/leapstack-labs/wadocs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	puts     int
	deletes  int
	pageSize int
	putErr   error
}

func newFakeS3(existing ...string) *fakeS3 {
	f := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}, pageSize: 2}
	for _, k := range existing {
		f.objects[k] = []byte("old")
	}
	return f
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		for start < len(keys) && keys[start] <= tok {
			start++
		}
	}
	end := min(start+f.pageSize, len(keys))
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end-1])
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
		f.deletes++
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func siteDir(t *testing.T) string {
	return testutil.WriteTree(t, map[string]string{
		"index.html":                    "<html>home</html>",
		"assets/site.css":               "body{}",
		"cost-optimization/COST01.html": "<html>cost</html>",
		"manifest.json":                 "{}",
	})
}

func openStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	dir := siteDir(t)
	client := newFakeS3()
	store := openStore(t)
	p := New(client, store, Config{Bucket: "docs", Prefix: "/wa/", Logger: testutil.NewTestLogger(t)})

	report, err := p.Publish(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"wa/assets/site.css",
		"wa/cost-optimization/COST01.html",
		"wa/index.html",
		"wa/manifest.json",
	}, report.Uploaded)
	assert.Empty(t, report.Unchanged)
	assert.Equal(t, int64(len("<html>home</html>")+len("body{}")+len("<html>cost</html>")+len("{}")), report.Bytes)
	assert.Equal(t, "text/html; charset=utf-8", client.types["wa/index.html"])
	assert.Equal(t, "text/css; charset=utf-8", client.types["wa/assets/site.css"])
	assert.Equal(t, "<html>home</html>", string(client.objects["wa/index.html"]))

	t.Run("second publish skips unchanged files", func(t *testing.T) {
		report, err := p.Publish(ctx, dir)
		require.NoError(t, err)
		assert.Empty(t, report.Uploaded)
		assert.Len(t, report.Unchanged, 4)
		assert.Equal(t, 4, client.puts)
	})

	t.Run("changed file is uploaded again", func(t *testing.T) {
		dir2 := testutil.WriteTree(t, map[string]string{
			"index.html":                    "<html>home v2</html>",
			"assets/site.css":               "body{}",
			"cost-optimization/COST01.html": "<html>cost</html>",
			"manifest.json":                 "{}",
		})
		report, err := p.Publish(ctx, dir2)
		require.NoError(t, err)
		assert.Equal(t, []string{"wa/index.html"}, report.Uploaded)
	})
}

func TestPublisher_Prune(t *testing.T) {
	ctx := context.Background()
	dir := siteDir(t)
	existing := []string{"stale/a.html", "stale/b.html", "index.html.bak", "other/keep.html"}
	tests := []struct {
		name        string
		prefix      string
		dryRun      bool
		wantDeleted []string
		wantRemain  []string
	}{
		{
			name:        "no prefix deletes everything outside the build",
			wantDeleted: []string{"index.html.bak", "other/keep.html", "stale/a.html", "stale/b.html"},
		},
		{
			name:        "prefix limits the scan",
			prefix:      "stale",
			wantDeleted: []string{"stale/a.html", "stale/b.html"},
			wantRemain:  []string{"index.html.bak", "other/keep.html"},
		},
		{
			name:        "dry run reports without deleting",
			dryRun:      true,
			wantDeleted: []string{"index.html.bak", "other/keep.html", "stale/a.html", "stale/b.html"},
			wantRemain:  existing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeS3(existing...)
			p := New(client, nil, Config{Bucket: "docs", Prefix: tt.prefix, Prune: true, DryRun: tt.dryRun})

			report, err := p.Publish(ctx, dir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, report.Deleted)
			for _, k := range tt.wantRemain {
				assert.Contains(t, client.objects, k)
			}
			for _, k := range report.Deleted {
				if !tt.dryRun {
					assert.NotContains(t, client.objects, k)
				}
			}
			if tt.dryRun {
				assert.Zero(t, client.puts)
				assert.True(t, report.DryRun)
				assert.Len(t, report.Uploaded, 4)
			}
		})
	}
}

func TestPublisher_PruneForgetsState(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.SetPublishedHash(ctx, "s3://docs/old.html", "x"))

	client := newFakeS3("old.html")
	p := New(client, store, Config{Bucket: "docs", Prune: true})
	_, err := p.Publish(ctx, siteDir(t))
	require.NoError(t, err)

	hash, err := store.PublishedHash(ctx, "s3://docs/old.html")
	require.NoError(t, err)
	assert.Empty(t, hash)
	hash, err = store.PublishedHash(ctx, "s3://docs/index.html")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestPublisher_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(newFakeS3(), nil, Config{}).Publish(ctx, siteDir(t))
	assert.ErrorIs(t, err, ErrNoBucket)

	client := newFakeS3()
	client.putErr = errors.New("access denied")
	store := openStore(t)
	_, err = New(client, store, Config{Bucket: "docs"}).Publish(ctx, siteDir(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	hash, err := store.PublishedHash(ctx, "s3://docs/index.html")
	require.NoError(t, err)
	assert.Empty(t, hash, "failed uploads are not recorded")
}

func TestContentType(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"index.html", "text/html; charset=utf-8"},
		{"assets/SITE.CSS", "text/css; charset=utf-8"},
		{"search.json", "application/json"},
		{"sitemap.xml", "application/xml"},
		{"robots.txt", "text/plain; charset=utf-8"},
		{"img/diagram.png", "image/png"},
		{"data.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentType(tt.key))
		})
	}
}
