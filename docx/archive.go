// Package docx implements a streaming, security-hardened DOCX parser:
// ZIP-bounded archive access, a style catalog with basedOn inheritance,
// an event-driven body parser covering paragraphs, nested tables, drawings
// and notes, and markdown plus document-tree output.
package docx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hidez8891/zip"

	"kreuzberg/document"
)

const (
	// Archive ceilings enforced before any decompression.
	maxZipEntries             = 10000
	maxUncompressedFileSize   = 100 * 1024 * 1024
	maxTotalUncompressedSize  = 500 * 1024 * 1024
	defaultMaxImageExtractPer = 50 * 1024 * 1024
)

// Archive is bomb-checked read access to the DOCX package.
type Archive struct {
	reader *zip.Reader
}

// OpenArchive opens DOCX bytes and validates them against ZIP-bomb limits:
// at most 10 000 entries, no single file above 100 MB uncompressed, total
// uncompressed size at most 500 MB. Violations fail with SecurityLimit
// carrying the offending measurement and ceiling; no parsing state is
// constructed.
func OpenArchive(content []byte) (*Archive, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, document.NewParsing("failed to open DOCX archive", err)
	}

	if len(reader.File) > maxZipEntries {
		return nil, document.NewSecurityLimit(
			fmt.Sprintf("archive contains %d entries, exceeds limit of %d", len(reader.File), maxZipEntries), nil)
	}

	var total uint64
	for _, f := range reader.File {
		size := f.UncompressedSize64
		if size > maxUncompressedFileSize {
			return nil, document.NewSecurityLimit(
				fmt.Sprintf("file %q uncompressed size %d bytes exceeds limit of %d bytes", f.Name, size, uint64(maxUncompressedFileSize)), nil)
		}
		total += size
	}
	if total > maxTotalUncompressedSize {
		return nil, document.NewSecurityLimit(
			fmt.Sprintf("total uncompressed size %d bytes exceeds limit of %d bytes", total, uint64(maxTotalUncompressedSize)), nil)
	}

	return &Archive{reader: reader}, nil
}

// ReadFile returns the contents of a named entry, bounded by the per-read
// cap. Missing entries return a Parsing error the callers treat as
// optional-part absence.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	for _, f := range a.reader.File {
		if f.Name != path {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, document.NewIO("failed to open archive entry "+path, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxUncompressedFileSize))
		if err != nil {
			return nil, document.NewIO("failed to read archive entry "+path, err)
		}
		return data, nil
	}
	return nil, document.NewParsing("file not found in DOCX: "+path, nil)
}

// Has reports whether an entry exists.
func (a *Archive) Has(path string) bool {
	for _, f := range a.reader.File {
		if f.Name == path {
			return true
		}
	}
	return false
}

// Names returns all entry names.
func (a *Archive) Names() []string {
	out := make([]string, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		out = append(out, f.Name)
	}
	return out
}

// ReadImage reads a media entry for image extraction. Targets containing
// ".." path segments are refused, as are entries above the per-image
// ceiling.
func (a *Archive) ReadImage(target string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageExtractPer
	}
	for _, part := range strings.Split(target, "/") {
		if part == ".." {
			return nil, document.NewSecurityLimit("image target contains path traversal: "+target, nil)
		}
	}
	for _, f := range a.reader.File {
		if f.Name != target {
			continue
		}
		if int64(f.UncompressedSize64) > maxBytes {
			return nil, document.NewSecurityLimit(
				fmt.Sprintf("image %q uncompressed size %d bytes exceeds limit of %d bytes", target, f.UncompressedSize64, maxBytes), nil)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, document.NewIO("failed to open image entry "+target, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxBytes))
		if err != nil {
			return nil, document.NewIO("failed to read image entry "+target, err)
		}
		return data, nil
	}
	return nil, document.NewParsing("image not found in DOCX: "+target, nil)
}
