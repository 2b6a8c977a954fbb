package plugin

import (
	"context"
	"testing"

	"kreuzberg/common"
	"kreuzberg/document"
)

type stubExtractor struct {
	name     string
	mimes    []string
	priority int
}

func (e *stubExtractor) Name() string                 { return e.name }
func (e *stubExtractor) Version() string              { return "test" }
func (e *stubExtractor) Initialize() error            { return nil }
func (e *stubExtractor) Shutdown() error              { return nil }
func (e *stubExtractor) SupportedMimeTypes() []string { return e.mimes }
func (e *stubExtractor) Priority() int                { return e.priority }
func (e *stubExtractor) ExtractBytes(context.Context, []byte, string, *document.ExtractionConfig) (*document.ExtractionResult, error) {
	return &document.ExtractionResult{}, nil
}

type stubProcessor struct {
	name     string
	stage    common.ProcessingStage
	shutdown func() error
}

func (p *stubProcessor) Name() string                            { return p.name }
func (p *stubProcessor) Version() string                         { return "test" }
func (p *stubProcessor) Initialize() error                       { return nil }
func (p *stubProcessor) ProcessingStage() common.ProcessingStage { return p.stage }
func (p *stubProcessor) ShouldProcess(*document.ExtractionResult, *document.ExtractionConfig) bool {
	return true
}
func (p *stubProcessor) Process(context.Context, *document.ExtractionResult, *document.ExtractionConfig) error {
	return nil
}
func (p *stubProcessor) Shutdown() error {
	if p.shutdown != nil {
		return p.shutdown()
	}
	return nil
}

func TestExtractorSelection(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterExtractor(&stubExtractor{name: "low", mimes: []string{"text/djot"}, priority: 10}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterExtractor(&stubExtractor{name: "high", mimes: []string{"text/djot"}, priority: 90}); err != nil {
		t.Fatal(err)
	}

	extractor, err := reg.ExtractorFor("text/djot")
	if err != nil {
		t.Fatalf("ExtractorFor() error = %v", err)
	}
	if extractor.Name() != "high" {
		t.Errorf("selected %q, want highest priority", extractor.Name())
	}

	if _, err := reg.ExtractorFor("application/unknown"); err == nil {
		t.Error("unknown MIME must fail")
	}
}

func TestRegistryNameUniqueness(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterExtractor(&stubExtractor{name: "dup", mimes: []string{"x"}}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterExtractor(&stubExtractor{name: "dup", mimes: []string{"y"}}); err == nil {
		t.Error("duplicate extractor name must be rejected")
	}

	if err := reg.RegisterPostProcessor(&stubProcessor{name: "p"}, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterPostProcessor(&stubProcessor{name: "p"}, 20); err == nil {
		t.Error("duplicate processor name must be rejected")
	}
}

func TestProcessorCacheInvalidation(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterPostProcessor(&stubProcessor{name: "a", stage: common.ProcessingStageEarly}, 10); err != nil {
		t.Fatal(err)
	}

	first := reg.ProcessorSnapshot()
	if len(first.Early) != 1 {
		t.Fatalf("early = %d, want 1", len(first.Early))
	}

	// Snapshot is reused until a registration change invalidates it.
	if reg.ProcessorSnapshot() != first {
		t.Error("snapshot rebuilt without invalidation")
	}

	if err := reg.RegisterPostProcessor(&stubProcessor{name: "b", stage: common.ProcessingStageLate}, 10); err != nil {
		t.Fatal(err)
	}
	second := reg.ProcessorSnapshot()
	if second == first {
		t.Error("registration did not invalidate the cache")
	}
	if len(second.Late) != 1 {
		t.Errorf("late = %d, want 1", len(second.Late))
	}

	reg.ClearProcessorCache()
	if reg.ProcessorSnapshot() == second {
		t.Error("explicit clear did not rebuild")
	}
}

func TestShutdownAllToleratesPanics(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterPostProcessor(&stubProcessor{
		name:     "panicky",
		shutdown: func() error { panic("teardown") },
	}, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterPostProcessor(&stubProcessor{name: "fine"}, 20); err != nil {
		t.Fatal(err)
	}

	err := reg.ShutdownAll()
	if err == nil {
		t.Error("panicking shutdown should surface as error, not panic")
	}

	if _, err := reg.ExtractorFor("anything"); err == nil {
		t.Error("registry should be empty after ShutdownAll")
	}
}
