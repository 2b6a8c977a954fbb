// Package pipeline orchestrates post-processing of extraction results:
// staged post-processors, chunking, language detection, element projection,
// output-format conversion and validators, under the defined error policy.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"kreuzberg/common"
	"kreuzberg/document"
	"kreuzberg/plugin"
)

var initOnce sync.Once

// initializeFeatures performs idempotent feature setup. The quality
// processor joins the Middle stage at priority 30 when registered.
func initializeFeatures(reg *plugin.Registry, cfg *document.ExtractionConfig) {
	if cfg != nil && cfg.EnableQualityProcessing {
		initOnce.Do(func() {
			_ = reg.RegisterPostProcessor(&QualityProcessor{}, 30)
		})
	}
}

// Run executes the post-processing pipeline on result.
//
// Stage order is Early, Middle, Late; within a stage processors run in
// priority order (lower first, stable on ties). Processor errors of kind Io,
// LockPoisoned or Plugin abort the pipeline; all other kinds are recorded
// under "processing_error_<name>" in result metadata and processing
// continues. Chunking and language-detection failures never abort.
// Validators run last and are fail-fast.
func Run(ctx context.Context, reg *plugin.Registry, result *document.ExtractionResult, cfg *document.ExtractionConfig, log *zap.Logger) (*document.ExtractionResult, error) {
	if result == nil {
		return nil, document.NewInvalidParameter("nil extraction result")
	}
	if cfg == nil {
		cfg = &document.ExtractionConfig{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	enabled := cfg.Postprocessor == nil || cfg.Postprocessor.Enabled
	if enabled {
		initializeFeatures(reg, cfg)
		cache := reg.ProcessorSnapshot()
		if err := executeProcessors(ctx, result, cfg, cache, log); err != nil {
			return nil, err
		}
	}

	executeChunking(result, cfg, log)
	executeLanguageDetection(result, cfg, log)

	if cfg.ResultFormat == common.ResultFormatElementBased {
		result.Elements = transformToElements(result)
	}

	// Output-format conversion is the terminal mutation.
	applyOutputFormat(result, cfg.OutputFormat)

	if err := executeValidators(ctx, reg, result, cfg); err != nil {
		return nil, err
	}
	return result, nil
}

func executeProcessors(ctx context.Context, result *document.ExtractionResult, cfg *document.ExtractionConfig, cache *plugin.ProcessorCache, log *zap.Logger) error {
	for _, stage := range [][]plugin.PostProcessor{cache.Early, cache.Middle, cache.Late} {
		for _, proc := range stage {
			if err := ctx.Err(); err != nil {
				return document.NewIO("pipeline cancelled", err)
			}
			name := proc.Name()
			if !shouldRun(cfg.Postprocessor, name) || !proc.ShouldProcess(result, cfg) {
				continue
			}
			if err := proc.Process(ctx, result, cfg); err != nil {
				if document.Fatal(err) {
					return err
				}
				log.Debug("Post-processor failed, continuing", zap.String("processor", name), zap.Error(err))
				result.Metadata.Set(fmt.Sprintf("processing_error_%s", name), err.Error())
			}
		}
	}
	return nil
}

// shouldRun applies inclusion/exclusion precedence:
// EnabledSet > DisabledSet > EnabledProcessors > DisabledProcessors > true.
func shouldRun(cfg *document.PostProcessorConfig, name string) bool {
	if cfg == nil {
		return true
	}
	if cfg.EnabledSet != nil {
		_, ok := cfg.EnabledSet[name]
		return ok
	}
	if cfg.DisabledSet != nil {
		_, ok := cfg.DisabledSet[name]
		return !ok
	}
	if cfg.EnabledProcessors != nil {
		for _, n := range cfg.EnabledProcessors {
			if n == name {
				return true
			}
		}
		return false
	}
	if cfg.DisabledProcessors != nil {
		for _, n := range cfg.DisabledProcessors {
			if n == name {
				return false
			}
		}
		return true
	}
	return true
}

func executeValidators(ctx context.Context, reg *plugin.Registry, result *document.ExtractionResult, cfg *document.ExtractionConfig) error {
	for _, v := range reg.Validators() {
		if !v.ShouldValidate(result, cfg) {
			continue
		}
		if err := v.Validate(ctx, result, cfg); err != nil {
			return err
		}
	}
	return nil
}
