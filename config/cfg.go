package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"kreuzberg/common"
	"kreuzberg/document"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ChunkingSettings struct {
		Enable     bool `yaml:"enable"`
		MaxChars   int  `yaml:"max_chars" validate:"min=1"`
		MaxOverlap int  `yaml:"max_overlap" validate:"gte=0"`
	}

	LanguageDetectionSettings struct {
		Enable         bool    `yaml:"enable"`
		MinConfidence  float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
		DetectMultiple bool    `yaml:"detect_multiple"`
	}

	ImageSettings struct {
		Extract  bool  `yaml:"extract"`
		MaxBytes int64 `yaml:"max_bytes" validate:"gte=0"`
	}

	PostProcessorSettings struct {
		Enable             bool     `yaml:"enable"`
		EnabledProcessors  []string `yaml:"enabled_processors,omitempty"`
		DisabledProcessors []string `yaml:"disabled_processors,omitempty"`
	}

	PdfSettings struct {
		OCRCoverageThreshold *float32 `yaml:"ocr_coverage_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	}

	ExtractionSettings struct {
		OutputFormat      string                    `yaml:"output_format" validate:"oneof=plain djot html markdown"`
		ResultFormat      string                    `yaml:"result_format" validate:"oneof=default elementBased"`
		DocumentStructure bool                      `yaml:"document_structure"`
		QualityProcessing bool                      `yaml:"quality_processing"`
		PostProcessors    PostProcessorSettings     `yaml:"postprocessors"`
		Chunking          ChunkingSettings          `yaml:"chunking"`
		LanguageDetection LanguageDetectionSettings `yaml:"language_detection"`
		Images            ImageSettings             `yaml:"images"`
		Pdf               PdfSettings               `yaml:"pdf"`
	}

	Config struct {
		Version    int                `yaml:"version" validate:"eq=1"`
		Extraction ExtractionSettings `yaml:"extraction"`
		Logging    LoggingConfig      `yaml:"logging"`
		Reporting  ReporterConfig     `yaml:"reporting"`
	}
)

// ExtractionConfig converts the YAML settings into the library-level
// configuration handed to extractors and the pipeline.
func (s *ExtractionSettings) ExtractionConfig() (*document.ExtractionConfig, error) {
	outputFormat, err := common.ParseOutputFormat(s.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("output format: %w", err)
	}
	resultFormat, err := common.ParseResultFormat(s.ResultFormat)
	if err != nil {
		return nil, fmt.Errorf("result format: %w", err)
	}

	cfg := &document.ExtractionConfig{
		OutputFormat:            outputFormat,
		ResultFormat:            resultFormat,
		IncludeDocumentStruct:   s.DocumentStructure,
		EnableQualityProcessing: s.QualityProcessing,
		Postprocessor: &document.PostProcessorConfig{
			Enabled:            s.PostProcessors.Enable,
			EnabledProcessors:  s.PostProcessors.EnabledProcessors,
			DisabledProcessors: s.PostProcessors.DisabledProcessors,
		},
	}
	if s.Chunking.Enable {
		cfg.Chunking = &document.ChunkingConfig{
			MaxChars:   s.Chunking.MaxChars,
			MaxOverlap: s.Chunking.MaxOverlap,
		}
	}
	if s.LanguageDetection.Enable {
		cfg.LanguageDetection = &document.LanguageDetectionConfig{
			MinConfidence:  s.LanguageDetection.MinConfidence,
			DetectMultiple: s.LanguageDetection.DetectMultiple,
		}
	}
	if s.Images.Extract {
		cfg.Images = &document.ImageExtractionConfig{
			ExtractImages: true,
			MaxImageBytes: s.Images.MaxBytes,
		}
	}
	if s.Pdf.OCRCoverageThreshold != nil {
		cfg.PdfOptions = &document.PdfOptions{
			Hierarchy: &document.HierarchyOptions{OCRCoverageThreshold: s.Pdf.OCRCoverageThreshold},
		}
	}
	return cfg, nil
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a
// byte slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
