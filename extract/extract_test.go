package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"kreuzberg/plugin"
)

func TestDetectMimeType(t *testing.T) {
	t.Run("pdf magic", func(t *testing.T) {
		content := []byte("%PDF-1.7\n%âãÏÓ\n")
		if got := DetectMimeType(content, "whatever.bin"); got != "application/pdf" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("docx by extension over plain zip", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		fw, _ := w.Create("word/document.xml")
		_, _ = fw.Write([]byte("<w:document/>"))
		_ = w.Close()

		got := DetectMimeType(buf.Bytes(), "report.docx")
		if got != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("djot extension", func(t *testing.T) {
		if got := DetectMimeType([]byte("# hi"), "notes.dj"); got != "text/djot" {
			t.Errorf("got %q", got)
		}
	})
}

func TestBytesEndToEnd(t *testing.T) {
	reg := plugin.NewRegistry()
	RegisterBuiltins(reg, nil)

	src := []byte("---\ntitle: Note\n---\n\n# Note\n\nHello _there_.")
	result, err := Bytes(context.Background(), reg, src, "text/djot", "note.dj", nil, nil)
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if result.Metadata.Title != "Note" {
		t.Errorf("title = %q", result.Metadata.Title)
	}
	if !strings.Contains(result.Content, "Hello there.") {
		t.Errorf("content = %q", result.Content)
	}
	if result.DjotContent == nil || len(result.DjotContent.Blocks) == 0 {
		t.Error("djot content missing")
	}
}
