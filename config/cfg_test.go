package config

import (
	"testing"

	"kreuzberg/common"
)

func TestExtractionConfigConversion(t *testing.T) {
	settings := &ExtractionSettings{
		OutputFormat:      "markdown",
		ResultFormat:      "elementBased",
		DocumentStructure: true,
		QualityProcessing: true,
		PostProcessors: PostProcessorSettings{
			Enable:             true,
			DisabledProcessors: []string{"noisy"},
		},
		Chunking:          ChunkingSettings{Enable: true, MaxChars: 500, MaxOverlap: 50},
		LanguageDetection: LanguageDetectionSettings{Enable: true, MinConfidence: 0.3},
	}

	cfg, err := settings.ExtractionConfig()
	if err != nil {
		t.Fatalf("ExtractionConfig() error = %v", err)
	}
	if cfg.OutputFormat != common.OutputFormatMarkdown {
		t.Errorf("output format = %v", cfg.OutputFormat)
	}
	if cfg.ResultFormat != common.ResultFormatElementBased {
		t.Errorf("result format = %v", cfg.ResultFormat)
	}
	if !cfg.IncludeDocumentStruct || !cfg.EnableQualityProcessing {
		t.Error("boolean settings lost")
	}
	if cfg.Chunking == nil || cfg.Chunking.MaxChars != 500 {
		t.Errorf("chunking = %+v", cfg.Chunking)
	}
	if cfg.LanguageDetection == nil || cfg.LanguageDetection.MinConfidence != 0.3 {
		t.Errorf("language detection = %+v", cfg.LanguageDetection)
	}
	if cfg.Images != nil {
		t.Error("images should stay nil when extraction disabled")
	}
	if len(cfg.Postprocessor.DisabledProcessors) != 1 {
		t.Errorf("postprocessor = %+v", cfg.Postprocessor)
	}
}

func TestExtractionConfigRejectsBadEnums(t *testing.T) {
	settings := &ExtractionSettings{OutputFormat: "pdf", ResultFormat: "default"}
	if _, err := settings.ExtractionConfig(); err == nil {
		t.Error("invalid output format accepted")
	}

	settings = &ExtractionSettings{OutputFormat: "markdown", ResultFormat: "weird"}
	if _, err := settings.ExtractionConfig(); err == nil {
		t.Error("invalid result format accepted")
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("version = %d", cfg.Version)
	}
	if cfg.Extraction.OutputFormat != "markdown" {
		t.Errorf("default output format = %q", cfg.Extraction.OutputFormat)
	}
	if _, err := cfg.Extraction.ExtractionConfig(); err != nil {
		t.Errorf("default settings do not convert: %v", err)
	}
}
