package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const outputFileMode = 0644

// Writer persists values as indented JSON with atomic replace semantics.
// The target path only ever holds the complete old content or the complete
// new content.
type Writer struct {
	Indent string

	// Hooks for the file-system calls that can fail mid-write.
	sync   func(*os.File) error
	rename func(oldpath, newpath string) error
}

// NewWriter creates a writer using two-space indentation.
func NewWriter() *Writer {
	return &Writer{
		Indent: "  ",
		sync:   (*os.File).Sync,
		rename: os.Rename,
	}
}

// Write encodes v and replaces path with it. The data goes to a temporary
// file in the same directory, is flushed to stable storage, then renamed
// over path. On failure the temporary file is removed and a *FileError is
// returned. Encoding failures are returned unwrapped.
func (w *Writer) Write(path string, v any) error {
	data, err := w.encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return writeError(path, err)
	}

	tmpPath := tmp.Name()

	if err := w.writeTemp(tmp, data); err != nil {
		_ = os.Remove(tmpPath)
		return writeError(path, err)
	}

	if err := w.rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return writeError(path, err)
	}

	syncDir(dir)

	return nil
}

func (w *Writer) encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.Indent)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeTemp fills, syncs and closes tmp. The handle is closed on every path.
func (w *Writer) writeTemp(tmp *os.File, data []byte) error {
	if _, err := tmp.Write(data); err != nil {
		return errors.Join(err, tmp.Close())
	}

	if err := tmp.Chmod(outputFileMode); err != nil {
		return errors.Join(err, tmp.Close())
	}

	if err := w.sync(tmp); err != nil {
		return errors.Join(err, tmp.Close())
	}

	return tmp.Close()
}

// syncDir makes the rename durable. Not every platform supports syncing a
// directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()

	_ = d.Sync()
}

func writeError(path string, err error) error {
	return &FileError{Op: "write", Path: path, Kind: classifyWrite(err), Err: err}
}

func classifyWrite(err error) Kind {
	if classify(err) == KindPermission {
		return KindPermission
	}

	return KindIO
}
