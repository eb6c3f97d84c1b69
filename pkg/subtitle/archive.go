package subtitle

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nwaples/rardecode"
)

// File is a subtitle document, either uploaded as is or extracted from an archive.
type File struct {
	Name string
	Data []byte
}

var (
	zipMagic  = []byte("PK\x03\x04")
	rar4Magic = []byte("Rar!\x1A\x07\x00")
	rar5Magic = []byte("Rar!\x1A\x07\x01\x00")
	gzipMagic = []byte("\x1F\x8B")
)

// Extract returns the first subtitle file found in data when data is a ZIP, RAR or GZIP archive,
// and data itself otherwise. Extracted files are capped at limit bytes.
func Extract(name string, data []byte, limit int64) (*File, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return extractZip(data, limit)
	case bytes.HasPrefix(data, rar4Magic), bytes.HasPrefix(data, rar5Magic):
		return extractRar(data, limit)
	case bytes.HasPrefix(data, gzipMagic):
		return extractGzip(name, data, limit)
	default:
		return &File{Name: name, Data: data}, nil
	}
}

// isSubtitle reports whether the file name has a supported subtitle extension.
func isSubtitle(name string) bool {
	_, ok := formats[strings.ToLower(path.Ext(name))]
	return ok
}

func extractZip(data []byte, limit int64) (*File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ZIP: %w", ErrUnsupportedFormat, err)
	}

	for _, file := range zr.File {
		if file.FileInfo().IsDir() || !isSubtitle(file.Name) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in ZIP: %w", file.Name, err)
		}
		defer rc.Close()

		b, err := ReadAll(rc, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in ZIP: %w", file.Name, err)
		}

		return &File{Name: file.Name, Data: b}, nil
	}

	return nil, fmt.Errorf("%w: no subtitle file found in ZIP", ErrUnsupportedFormat)
}

func extractRar(data []byte, limit int64) (*File, error) {
	rr, err := rardecode.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid RAR: %w", ErrUnsupportedFormat, err)
	}

	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read RAR: %w", err)
		}
		if header.IsDir || !isSubtitle(header.Name) {
			continue
		}

		b, err := ReadAll(rr, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in RAR: %w", header.Name, err)
		}

		return &File{Name: header.Name, Data: b}, nil
	}

	return nil, fmt.Errorf("%w: no subtitle file found in RAR", ErrUnsupportedFormat)
}

func extractGzip(name string, data []byte, limit int64) (*File, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid GZIP: %w", ErrUnsupportedFormat, err)
	}
	defer gzr.Close()

	b, err := ReadAll(gzr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read GZIP: %w", err)
	}

	if gzr.Name != "" {
		name = gzr.Name
	} else {
		name = strings.TrimSuffix(name, path.Ext(name))
	}

	return &File{Name: name, Data: b}, nil
}
