package pipeline

import (
	"context"
	"strings"
	"testing"

	"kreuzberg/common"
	"kreuzberg/document"
	"kreuzberg/plugin"
)

type fakeProcessor struct {
	name    string
	stage   common.ProcessingStage
	process func(result *document.ExtractionResult) error
}

func (p *fakeProcessor) Name() string                            { return p.name }
func (p *fakeProcessor) Version() string                         { return "test" }
func (p *fakeProcessor) Initialize() error                       { return nil }
func (p *fakeProcessor) Shutdown() error                         { return nil }
func (p *fakeProcessor) ProcessingStage() common.ProcessingStage { return p.stage }
func (p *fakeProcessor) ShouldProcess(*document.ExtractionResult, *document.ExtractionConfig) bool {
	return true
}
func (p *fakeProcessor) Process(_ context.Context, result *document.ExtractionResult, _ *document.ExtractionConfig) error {
	return p.process(result)
}

type fakeValidator struct {
	name     string
	validate func(result *document.ExtractionResult) error
}

func (v *fakeValidator) Name() string      { return v.name }
func (v *fakeValidator) Version() string   { return "test" }
func (v *fakeValidator) Initialize() error { return nil }
func (v *fakeValidator) Shutdown() error   { return nil }
func (v *fakeValidator) ShouldValidate(*document.ExtractionResult, *document.ExtractionConfig) bool {
	return true
}
func (v *fakeValidator) Validate(_ context.Context, result *document.ExtractionResult, _ *document.ExtractionConfig) error {
	return v.validate(result)
}

func appendingProcessor(name string, stage common.ProcessingStage, marker string) *fakeProcessor {
	return &fakeProcessor{name: name, stage: stage, process: func(r *document.ExtractionResult) error {
		r.Content += marker
		return nil
	}}
}

func TestPipelineStageOrdering(t *testing.T) {
	reg := plugin.NewRegistry()
	// Register out of order on purpose; stages and priorities decide.
	if err := reg.RegisterPostProcessor(appendingProcessor("late", common.ProcessingStageLate, "|late"), 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterPostProcessor(appendingProcessor("early-b", common.ProcessingStageEarly, "|early-b"), 20); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterPostProcessor(appendingProcessor("early-a", common.ProcessingStageEarly, "|early-a"), 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterPostProcessor(appendingProcessor("middle", common.ProcessingStageMiddle, "|middle"), 10); err != nil {
		t.Fatal(err)
	}

	var validatorSaw string
	if err := reg.RegisterValidator(&fakeValidator{name: "observer", validate: func(r *document.ExtractionResult) error {
		validatorSaw = r.Content
		return nil
	}}, 10); err != nil {
		t.Fatal(err)
	}

	result := &document.ExtractionResult{Content: "base"}
	out, err := Run(context.Background(), reg, result, &document.ExtractionConfig{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "base|early-a|early-b|middle|late"
	if out.Content != want {
		t.Errorf("content = %q, want %q", out.Content, want)
	}
	// Validators observe the result after all processors and conversion.
	if validatorSaw != want {
		t.Errorf("validator saw %q, want %q", validatorSaw, want)
	}
}

func TestPipelineErrorIsolation(t *testing.T) {
	reg := plugin.NewRegistry()
	if err := reg.RegisterPostProcessor(&fakeProcessor{
		name:  "broken",
		stage: common.ProcessingStageEarly,
		process: func(*document.ExtractionResult) error {
			return document.NewParsing("bad content", nil)
		},
	}, 10); err != nil {
		t.Fatal(err)
	}

	result := &document.ExtractionResult{Content: "untouched"}
	out, err := Run(context.Background(), reg, result, &document.ExtractionConfig{}, nil)
	if err != nil {
		t.Fatalf("Parsing errors must not abort the pipeline: %v", err)
	}
	if out.Content != "untouched" {
		t.Errorf("content = %q, want unchanged", out.Content)
	}
	recorded, ok := out.Metadata.Additional["processing_error_broken"].(string)
	if !ok || !strings.Contains(recorded, "bad content") {
		t.Errorf("recorded error = %v", out.Metadata.Additional["processing_error_broken"])
	}
}

func TestPipelineFatalErrorAborts(t *testing.T) {
	reg := plugin.NewRegistry()
	if err := reg.RegisterPostProcessor(&fakeProcessor{
		name:  "io-broken",
		stage: common.ProcessingStageEarly,
		process: func(*document.ExtractionResult) error {
			return document.NewIO("disk gone", nil)
		},
	}, 10); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), reg, &document.ExtractionResult{}, &document.ExtractionConfig{}, nil)
	if err == nil {
		t.Fatal("IO errors must abort the pipeline")
	}
	if document.KindOf(err) != document.KindIO {
		t.Errorf("error kind = %s", document.KindOf(err))
	}
}

func TestPipelineValidatorFailsFast(t *testing.T) {
	reg := plugin.NewRegistry()
	if err := reg.RegisterValidator(&fakeValidator{name: "strict", validate: func(*document.ExtractionResult) error {
		return document.NewValidation("too short", nil)
	}}, 10); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), reg, &document.ExtractionResult{Content: "x"}, &document.ExtractionConfig{}, nil)
	if err == nil {
		t.Fatal("validator error must abort")
	}
	if document.KindOf(err) != document.KindValidation {
		t.Errorf("error kind = %s", document.KindOf(err))
	}
}

func TestShouldRunPrecedence(t *testing.T) {
	set := func(names ...string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, n := range names {
			m[n] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name string
		cfg  *document.PostProcessorConfig
		proc string
		want bool
	}{
		{"nil config defaults true", nil, "x", true},
		{"enabled set wins", &document.PostProcessorConfig{EnabledSet: set("a"), DisabledProcessors: []string{"a"}}, "a", true},
		{"enabled set excludes others", &document.PostProcessorConfig{EnabledSet: set("a")}, "b", false},
		{"disabled set blocks", &document.PostProcessorConfig{DisabledSet: set("a"), EnabledProcessors: []string{"a"}}, "a", false},
		{"enabled list includes", &document.PostProcessorConfig{EnabledProcessors: []string{"a"}}, "a", true},
		{"enabled list excludes", &document.PostProcessorConfig{EnabledProcessors: []string{"a"}}, "b", false},
		{"disabled list blocks", &document.PostProcessorConfig{DisabledProcessors: []string{"a"}}, "a", false},
		{"disabled list passes others", &document.PostProcessorConfig{DisabledProcessors: []string{"a"}}, "b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRun(tt.cfg, tt.proc); got != tt.want {
				t.Errorf("shouldRun = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunking(t *testing.T) {
	t.Run("chunks respect max chars and record count", func(t *testing.T) {
		reg := plugin.NewRegistry()
		content := strings.Repeat("One sentence here. ", 30)
		cfg := &document.ExtractionConfig{Chunking: &document.ChunkingConfig{MaxChars: 100, MaxOverlap: 10}}
		out, err := Run(context.Background(), reg, &document.ExtractionResult{Content: content}, cfg, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(out.Chunks) < 2 {
			t.Fatalf("got %d chunks, want several", len(out.Chunks))
		}
		for _, c := range out.Chunks {
			if n := len([]rune(c.Content)); n > 100 {
				t.Errorf("chunk has %d runes, want <= 100", n)
			}
		}
		if out.Metadata.Additional["chunk_count"] != len(out.Chunks) {
			t.Errorf("chunk_count = %v", out.Metadata.Additional["chunk_count"])
		}
		for i, c := range out.Chunks {
			if c.Metadata.ChunkIndex != i || c.Metadata.TotalChunks != len(out.Chunks) {
				t.Errorf("chunk %d metadata = %+v", i, c.Metadata)
			}
		}
	})

	t.Run("invalid config records chunking_error", func(t *testing.T) {
		reg := plugin.NewRegistry()
		cfg := &document.ExtractionConfig{Chunking: &document.ChunkingConfig{MaxChars: 0}}
		out, err := Run(context.Background(), reg, &document.ExtractionResult{Content: "text"}, cfg, nil)
		if err != nil {
			t.Fatalf("chunking errors must not abort: %v", err)
		}
		if _, ok := out.Metadata.Additional["chunking_error"]; !ok {
			t.Error("chunking_error not recorded")
		}
	})
}

func TestLanguageDetection(t *testing.T) {
	reg := plugin.NewRegistry()
	cfg := &document.ExtractionConfig{LanguageDetection: &document.LanguageDetectionConfig{}}
	english := "The quick brown fox jumps over the lazy dog and the cat is in the house with the mouse."
	out, err := Run(context.Background(), reg, &document.ExtractionResult{Content: english}, cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.DetectedLanguages) != 1 || out.DetectedLanguages[0] != "en" {
		t.Errorf("detected = %v, want [en]", out.DetectedLanguages)
	}

	t.Run("cyrillic detects russian", func(t *testing.T) {
		out, err := Run(context.Background(), reg, &document.ExtractionResult{Content: "Пример текста на русском языке для проверки."}, cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(out.DetectedLanguages) != 1 || out.DetectedLanguages[0] != "ru" {
			t.Errorf("detected = %v, want [ru]", out.DetectedLanguages)
		}
	})

	t.Run("empty content records error", func(t *testing.T) {
		out, err := Run(context.Background(), reg, &document.ExtractionResult{Content: "  "}, cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := out.Metadata.Additional["language_detection_error"]; !ok {
			t.Error("language_detection_error not recorded")
		}
	})
}

func TestOutputFormats(t *testing.T) {
	md := "# Head\n\nSome **bold** and *em* text with [a link](http://x)."

	t.Run("markdown is identity", func(t *testing.T) {
		r := &document.ExtractionResult{Content: md}
		applyOutputFormat(r, common.OutputFormatMarkdown)
		if r.Content != md {
			t.Errorf("markdown changed: %q", r.Content)
		}
	})

	t.Run("plain strips markers", func(t *testing.T) {
		r := &document.ExtractionResult{Content: md}
		applyOutputFormat(r, common.OutputFormatPlain)
		for _, banned := range []string{"#", "**", "*", "]("} {
			if strings.Contains(r.Content, banned) {
				t.Errorf("plain output still has %q: %q", banned, r.Content)
			}
		}
		if !strings.Contains(r.Content, "Head") || !strings.Contains(r.Content, "bold") {
			t.Errorf("plain output lost text: %q", r.Content)
		}
	})

	t.Run("html renders headings and emphasis", func(t *testing.T) {
		r := &document.ExtractionResult{Content: md}
		applyOutputFormat(r, common.OutputFormatHtml)
		for _, want := range []string{"<h1>Head</h1>", "<strong>bold</strong>", "<em>em</em>", `<a href="http://x">a link</a>`} {
			if !strings.Contains(r.Content, want) {
				t.Errorf("html missing %q: %q", want, r.Content)
			}
		}
	})

	t.Run("djot converts emphasis markers", func(t *testing.T) {
		r := &document.ExtractionResult{Content: "**bold** *em*"}
		applyOutputFormat(r, common.OutputFormatDjot)
		if r.Content != "*bold* _em_" {
			t.Errorf("djot output = %q", r.Content)
		}
	})
}

func TestElementProjection(t *testing.T) {
	reg := plugin.NewRegistry()
	cfg := &document.ExtractionConfig{ResultFormat: common.ResultFormatElementBased}
	result := &document.ExtractionResult{Content: "# Title\n\nBody text.\n\n- item one\n- item two"}
	out, err := Run(context.Background(), reg, result, cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Elements) != 4 {
		t.Fatalf("got %d elements, want 4: %+v", len(out.Elements), out.Elements)
	}
	if out.Elements[0].Kind != document.ElementHeading || out.Elements[0].Level != 1 {
		t.Errorf("first element = %+v", out.Elements[0])
	}
	if out.Elements[1].Kind != document.ElementParagraph {
		t.Errorf("second element = %+v", out.Elements[1])
	}
	if out.Elements[2].Kind != document.ElementListItem {
		t.Errorf("third element = %+v", out.Elements[2])
	}
}
