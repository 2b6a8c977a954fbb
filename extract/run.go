package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"kreuzberg/archive"
	"kreuzberg/plugin"
	"kreuzberg/state"
)

// Run is the "extract" subcommand action: extract every SOURCE argument and
// write results next to it (or to DESTINATION when given).
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("nothing to do, no sources specified")
	}

	sources := args
	destination := ""
	if len(args) > 1 {
		if info, err := os.Stat(args[len(args)-1]); err != nil || info.IsDir() {
			destination = args[len(args)-1]
			sources = args[:len(args)-1]
		}
	}

	cfg, err := env.Cfg.Extraction.ExtractionConfig()
	if err != nil {
		return fmt.Errorf("unable to prepare extraction configuration: %w", err)
	}
	if env.DumpStructure {
		cfg.IncludeDocumentStruct = true
	}

	reg := plugin.Global()
	RegisterBuiltins(reg, log)

	extractOne := func(name string, content []byte) error {
		result, err := Bytes(ctx, reg, content, env.MimeType, name, cfg, log)
		if err != nil {
			return fmt.Errorf("extraction of '%s' failed: %w", name, err)
		}

		out := outputPath(name, destination)
		if !env.Overwrite {
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("destination '%s' already exists (use --overwrite)", out)
			}
		}
		if err := os.WriteFile(out, []byte(result.Content), 0644); err != nil {
			return fmt.Errorf("unable to write destination '%s': %w", out, err)
		}
		if env.DumpStructure && result.Document != nil {
			tree := strings.TrimSuffix(out, ".md") + ".tree.txt"
			if err := os.WriteFile(tree, []byte(result.Document.Dump()), 0644); err != nil {
				return fmt.Errorf("unable to write structure dump '%s': %w", tree, err)
			}
			log.Debug("Wrote document tree", zap.String("destination", tree))
		}
		log.Info("Extracted",
			zap.String("source", name),
			zap.String("destination", out),
			zap.String("mime", result.MimeType),
			zap.Int("tables", len(result.Tables)))
		return nil
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Zip archives are walked recursively; every supported document
		// inside is extracted next to DESTINATION.
		if strings.EqualFold(filepath.Ext(src), ".zip") {
			err := archive.WalkExt(src, []string{"pdf", "docx", "dj", "djot"}, func(_ string, f *zip.File) error {
				rc, err := f.Open()
				if err != nil {
					return fmt.Errorf("unable to open archive entry '%s': %w", f.Name, err)
				}
				defer rc.Close()
				content, err := io.ReadAll(rc)
				if err != nil {
					return fmt.Errorf("unable to read archive entry '%s': %w", f.Name, err)
				}
				return extractOne(f.Name, content)
			})
			if err != nil {
				return fmt.Errorf("unable to process archive '%s': %w", src, err)
			}
			continue
		}

		content, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("unable to read source '%s': %w", src, err)
		}
		if err := extractOne(src, content); err != nil {
			return err
		}
	}
	return nil
}

func outputPath(src, destination string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)] + ".md"
	if destination == "" {
		return filepath.Join(filepath.Dir(src), name)
	}
	return filepath.Join(destination, name)
}
