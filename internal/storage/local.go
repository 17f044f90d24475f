package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider serves stems from a directory on disk. Used in
// development and tests where no object store is available.
type LocalProvider struct {
	root string
}

func NewLocalProvider(root string) *LocalProvider {
	return &LocalProvider{root: root}
}

func (l *LocalProvider) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.Walk(l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := filepath.ToSlash(strings.TrimPrefix(path, l.root+string(os.PathSeparator)))
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}

	return keys, err
}

func (l *LocalProvider) Get(ctx context.Context, key string) (*Object, error) {
	path := filepath.Join(l.root, filepath.FromSlash(key))

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &Object{
		Body:          file,
		ContentLength: info.Size(),
		ContentType:   "audio/mpeg",
		LastModified:  info.ModTime(),
	}, nil
}

func (l *LocalProvider) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	path := filepath.Join(l.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, body)
	return err
}

func (l *LocalProvider) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
