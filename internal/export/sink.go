package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	apperrors "signal-dashboard/internal/errors"
)

// Sink stores a finished download under name and returns where it went.
type Sink interface {
	Save(name string, r io.Reader) (string, error)
	SaveBytes(name string, data []byte) (string, error)
}

// DirSink saves downloads into a directory. A download only appears under its
// final name once it is completely written.
type DirSink struct {
	Dir string
}

// NewDirSink creates a DirSink for dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Save streams r into Dir/name.
func (s *DirSink) Save(name string, r io.Reader) (path string, err error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", apperrors.Wrap(err, "failed to create export directory")
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.part")
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create download file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return "", apperrors.Wrap(err, "failed to write download")
	}
	if err = tmp.Close(); err != nil {
		return "", apperrors.Wrap(err, "failed to write download")
	}

	path = filepath.Join(s.Dir, name)
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", apperrors.Wrapf(err, "failed to save %s", name)
	}
	return path, nil
}

// SaveBytes saves data as Dir/name.
func (s *DirSink) SaveBytes(name string, data []byte) (string, error) {
	return s.Save(name, bytes.NewReader(data))
}
