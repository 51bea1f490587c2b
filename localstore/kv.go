// Package localstore persists the local variant's notes and preferences in a
// string key-value store, the way a browser keeps them in localStorage.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/bytedance/sonic"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// KV is a string key-value store.
type KV interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// FileKV keeps every key in a single JSON object file. No caching: each call
// reads or rewrites the file under an exclusive lock so several processes can
// share it.
type FileKV struct {
	path string
}

// NewFileKV creates the parent directory of path if needed.
func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	return &FileKV{path: path}, nil
}

// Path returns the backing file.
func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := f.withFileLock(func(file *os.File) error {
		values, err := readValues(file)
		if err != nil {
			return err
		}
		value, ok = values[key]
		return nil
	})
	return value, ok, err
}

// Set rewrites the file with key updated. Lock → Read → Write → Unlock.
// An undecodable file is moved aside to path.corrupt and replaced, so a
// single bad write cannot block every later save.
func (f *FileKV) Set(ctx context.Context, key, value string) error {
	return f.withFileLock(func(file *os.File) error {
		values, err := readValues(file)
		if errors.Is(err, domain.ErrStorageCorrupt) {
			if err := f.keepCorrupt(file); err != nil {
				return err
			}
			values, err = map[string]string{}, nil
		}
		if err != nil {
			return err
		}
		values[key] = value
		return writeValues(file, values)
	})
}

func (f *FileKV) keepCorrupt(file *os.File) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := os.WriteFile(f.path+".corrupt", data, 0o644); err != nil {
		return fmt.Errorf("failed to keep corrupt file: %w", err)
	}
	return nil
}

func (f *FileKV) withFileLock(fn func(*os.File) error) error {
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock file: %w", err)
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN)

	return fn(file)
}

func readValues(file *os.File) (map[string]string, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	values := map[string]string{}
	if info.Size() == 0 {
		return values, nil
	}
	data := make([]byte, info.Size())
	if _, err := file.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := sonic.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, file.Name(), err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func writeValues(file *os.File, values map[string]string) error {
	data, err := sonic.ConfigStd.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
