package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File loads documents from the local filesystem below a root directory
type File struct {
	root     string
	maxBytes int64
}

var (
	_ Loader = (*File)(nil)
	_ Lister = (*File)(nil)
)

type FileOption func(*File)

func WithFileMaxBytes(n int64) FileOption {
	return func(f *File) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewFile returns a File loader confined to root
func NewFile(root string, opts ...FileOption) (*File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ret := &File{
		root:     abs,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// Resolve maps a relative or absolute path to a path inside root
func (f *File) Resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "file://")
	if !filepath.IsAbs(name) {
		name = filepath.Join(f.root, name)
	}
	name = filepath.Clean(name)
	rel, err := filepath.Rel(f.root, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	return name, nil
}

func (f *File) Load(ctx context.Context, uri string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := f.Resolve(uri)
	if err != nil {
		return nil, err
	}
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	info, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("document could not be a directory")
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}
	content, err := io.ReadAll(io.LimitReader(fp, f.maxBytes))
	if err != nil {
		return nil, err
	}
	content, contentType, err := Normalize(content, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Document{
		Source: name,
		Meta: map[string]string{
			"source":       "file",
			"filename":     info.Name(),
			"modtime":      strconv.FormatInt(info.ModTime().Unix(), 10),
			"content_type": contentType,
		},
		Content: content,
	}, nil
}

// List walks a directory below root and returns every regular file
func (f *File) List(ctx context.Context, uri string) ([]string, error) {
	name, err := f.Resolve(uri)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{name}, nil
	}
	var ret []string
	err = filepath.WalkDir(name, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != name && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && !strings.HasPrefix(d.Name(), ".") {
			ret = append(ret, path)
		}
		return nil
	})
	return ret, err
}
