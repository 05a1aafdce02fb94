package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), bytes.Repeat([]byte("a"), 32), 0o644))

	loader, err := NewFile(root, WithFileMaxBytes(16))
	require.NoError(t, err)

	doc, err := loader.Load(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", doc.Text())
	assert.Equal(t, "notes.txt", doc.Meta["filename"])

	_, err = loader.Load(context.Background(), "big.txt")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = loader.Load(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = loader.Load(context.Background(), "/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = loader.Load(context.Background(), "missing.txt")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileList(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.md"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", ".hidden"), []byte("h"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", ".git", "HEAD"), []byte("h"), 0o644))

	loader, err := NewFile(root)
	require.NoError(t, err)
	files, err := loader.List(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "docs", "a.md")}, files)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://kb/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "kb", bucket)
	assert.Equal(t, "docs/a.txt", key)

	_, _, err = ParseS3URI("https://kb/docs")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("not found")
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(body)))}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("not found")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := new(s3.ListObjectsV2Output)
	for _, key := range []string{"docs/", "docs/a.txt", "docs/b.txt"} {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func TestS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"docs/a.txt": "from s3",
		"docs/b.txt": strings.Repeat("b", 64),
	}}
	loader := NewS3(client, WithS3MaxBytes(32))
	ctx := context.Background()

	doc, err := loader.Load(ctx, "s3://kb/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "from s3", doc.Text())
	assert.Equal(t, "kb", doc.Meta["bucket"])

	_, err = loader.Load(ctx, "s3://kb/docs/b.txt")
	assert.ErrorIs(t, err, ErrTooLarge)

	uris, err := loader.List(ctx, "s3://kb/docs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://kb/docs/a.txt", "s3://kb/docs/b.txt"}, uris)
}

func TestHttpAndMux(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("from web"))
	}))
	defer srv.Close()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("local"), 0o644))
	file, err := NewFile(root)
	require.NoError(t, err)

	mux := &Mux{File: file, Http: NewHttp(WithHttpClient(srv.Client()))}
	ctx := context.Background()

	doc, err := mux.Load(ctx, srv.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, "from web", doc.Text())
	assert.True(t, strings.HasPrefix(doc.Meta["content_type"], "text/plain"))

	_, err = mux.Load(ctx, srv.URL+"/missing")
	assert.Error(t, err)

	doc, err = mux.Load(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "local", doc.Text())

	_, err = mux.Load(ctx, "s3://kb/a.txt")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	uris, err := mux.List(ctx, srv.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/doc"}, uris)
}

const leavePage = `<!DOCTYPE html>
<html><head><title>Leave</title></head>
<body><h1>Annual leave</h1><p>Employees get <strong>20 days</strong> of annual leave.</p></body></html>`

func TestNormalize(t *testing.T) {
	content, contentType, err := Normalize([]byte(leavePage), "")
	require.NoError(t, err)
	assert.Equal(t, "text/html", contentType)
	assert.Contains(t, string(content), "# Annual leave")
	assert.Contains(t, string(content), "**20 days**")
	assert.NotContains(t, string(content), "<p>")

	content, _, err = Normalize([]byte("<h2>Holidays</h2>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Contains(t, string(content), "## Holidays")

	content, contentType, err = Normalize([]byte(`{"days": 20}`), "")
	require.NoError(t, err)
	assert.Equal(t, `{"days": 20}`, string(content))
	assert.Equal(t, "application/json", contentType)

	_, _, err = Normalize([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj"), "")
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestLoadersNormalizeContent(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/logo.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngHeader)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(leavePage))
	}))
	defer srv.Close()

	loader := NewHttp(WithHttpClient(srv.Client()))
	doc, err := loader.Load(ctx, srv.URL+"/leave")
	require.NoError(t, err)
	assert.Contains(t, doc.Text(), "# Annual leave")
	assert.NotContains(t, doc.Text(), "<body>")
	assert.Equal(t, "text/html", doc.Meta["content_type"])

	_, err = loader.Load(ctx, srv.URL+"/logo.png")
	assert.ErrorIs(t, err, ErrUnsupportedContent)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "leave.html"), []byte(leavePage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.png"), pngHeader, 0o644))
	file, err := NewFile(root)
	require.NoError(t, err)
	doc, err = file.Load(ctx, "leave.html")
	require.NoError(t, err)
	assert.Contains(t, doc.Text(), "**20 days**")
	_, err = file.Load(ctx, "logo.png")
	assert.ErrorIs(t, err, ErrUnsupportedContent)

	s3loader := NewS3(&fakeS3{objects: map[string]string{
		"docs/leave.html": leavePage,
		"docs/logo.png":   string(pngHeader),
	}})
	doc, err = s3loader.Load(ctx, "s3://kb/docs/leave.html")
	require.NoError(t, err)
	assert.Contains(t, doc.Text(), "# Annual leave")
	_, err = s3loader.Load(ctx, "s3://kb/docs/logo.png")
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
