// Package extract ties extractor selection and the post-processing
// pipeline into the single entry point used by the CLI and the benchmark
// subprocess modes.
package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"kreuzberg/djot"
	"kreuzberg/document"
	"kreuzberg/docx"
	"kreuzberg/pdf"
	"kreuzberg/pipeline"
	"kreuzberg/plugin"
)

// RegisterBuiltins registers the built-in extractors with the registry.
// Safe to call once per process; duplicate names fail quietly into the log.
func RegisterBuiltins(reg *plugin.Registry, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, e := range []plugin.DocumentExtractor{
		docx.NewExtractor(log),
		djot.NewExtractor(log),
		pdf.NewExtractor(log),
	} {
		if err := reg.RegisterExtractor(e); err != nil {
			log.Debug("Extractor already registered", zap.String("name", e.Name()), zap.Error(err))
		}
	}
}

// Bytes extracts content of the given MIME type and runs the result
// through the pipeline. An empty mimeType is sniffed from the content and
// file name.
func Bytes(ctx context.Context, reg *plugin.Registry, content []byte, mimeType, fileName string, cfg *document.ExtractionConfig, log *zap.Logger) (*document.ExtractionResult, error) {
	if mimeType == "" {
		mimeType = DetectMimeType(content, fileName)
	}

	extractor, err := reg.ExtractorFor(mimeType)
	if err != nil {
		return nil, err
	}
	if err := extractor.Initialize(); err != nil {
		return nil, document.NewPlugin(extractor.Name(), "initialization failed", err)
	}

	result, err := extractor.ExtractBytes(ctx, content, mimeType, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, reg, result, cfg, log)
}

// DetectMimeType sniffs content magic first and falls back to the file
// extension for text formats that have none.
func DetectMimeType(content []byte, fileName string) string {
	if kind, err := filetype.Match(content); err == nil && kind != filetype.Unknown {
		switch kind.Extension {
		case "docx":
			return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		case "pdf":
			return "application/pdf"
		case "zip":
			// DOCX is a zip; trust the extension for office packages.
			if strings.EqualFold(filepath.Ext(fileName), ".docx") {
				return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
			}
		}
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	case ".dj", ".djot":
		return "text/djot"
	}
	return "text/djot"
}
