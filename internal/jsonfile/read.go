// Package jsonfile reads drilling-machine records from disk and writes them
// back atomically.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"dmworker/internal/models"
)

// Read loads the JSON document at path. A document whose top level is not an
// object is returned as a nil Record. Failures are *FileError values.
func Read(path string) (models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Kind: classify(err), Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Kind: classify(err), Err: err}
	}

	v, err := decode(data)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Kind: KindMalformed, Err: err}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}

	return models.Record(m), nil
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", io.ErrUnexpectedEOF)
		}

		return nil, err
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}

	return v, nil
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	default:
		return KindIO
	}
}
