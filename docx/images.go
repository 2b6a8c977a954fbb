package docx

import (
	"bytes"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"kreuzberg/document"
)

// ExtractImages resolves drawing blip references through the image
// relationships and pulls the media entries out of the archive. Targets
// with path traversal or above the per-image ceiling are skipped, not
// fatal. Image bounds are decoded when the data is a readable raster
// format.
func ExtractImages(archive *Archive, doc *Document, cfg *document.ImageExtractionConfig, log *zap.Logger) []document.ExtractedImage {
	if cfg == nil || !cfg.ExtractImages {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	var out []document.ExtractedImage
	for idx, drawing := range doc.Drawings {
		if drawing.EmbedID == "" {
			continue
		}
		target, ok := doc.ImageRels[drawing.EmbedID]
		if !ok {
			continue
		}
		// Refuse traversal before path.Join can clean it away.
		if strings.Contains(target, "..") {
			log.Debug("Skipping image with traversal target", zap.String("target", target))
			continue
		}
		// Relationship targets are relative to word/.
		entry := target
		if !archive.Has(entry) {
			entry = path.Join("word", target)
		}

		data, err := archive.ReadImage(entry, cfg.MaxImageBytes)
		if err != nil {
			log.Debug("Skipping image", zap.String("target", target), zap.Error(err))
			continue
		}

		img := document.ExtractedImage{
			Data:        data,
			ImageIndex:  idx,
			Description: drawing.Description,
		}
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			img.Format = kind.Extension
		}
		if decoded, err := imaging.Decode(bytes.NewReader(data)); err == nil {
			bounds := decoded.Bounds()
			img.Width = bounds.Dx()
			img.Height = bounds.Dy()
		}
		out = append(out, img)
	}
	return out
}
