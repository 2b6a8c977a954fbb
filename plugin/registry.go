package plugin

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"kreuzberg/common"
	"kreuzberg/document"
)

// Registries are process-wide. Names must be unique within a registry.
// All access is serialised by a reader/writer lock; writers invalidate the
// processor cache snapshot.

type extractorEntry struct {
	extractor DocumentExtractor
}

type processorEntry struct {
	processor PostProcessor
	priority  int
	order     int // registration order, stabilises priority ties
}

type validatorEntry struct {
	validator Validator
	priority  int
	order     int
}

// Registry holds every registered plugin of the three roles.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]extractorEntry
	processors map[string]processorEntry
	validators map[string]validatorEntry
	seq        int

	cacheMu sync.Mutex
	cache   *ProcessorCache
}

var global = NewRegistry()

// Global returns the process-wide registry instance.
func Global() *Registry {
	return global
}

// NewRegistry returns an empty registry. Tests use private instances;
// production code shares Global().
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]extractorEntry),
		processors: make(map[string]processorEntry),
		validators: make(map[string]validatorEntry),
	}
}

// RegisterExtractor adds a document extractor under its name.
func (r *Registry) RegisterExtractor(e DocumentExtractor) error {
	if e == nil || e.Name() == "" {
		return document.NewInvalidParameter("extractor must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.extractors[e.Name()]; dup {
		return document.NewPlugin(e.Name(), "already registered", nil)
	}
	r.extractors[e.Name()] = extractorEntry{extractor: e}
	return nil
}

// RemoveExtractor removes an extractor by name.
func (r *Registry) RemoveExtractor(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.extractors, name)
}

// ExtractorFor selects the highest-priority extractor supporting mimeType.
func (r *Registry) ExtractorFor(mimeType string) (DocumentExtractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best DocumentExtractor
	for _, entry := range r.extractors {
		for _, mt := range entry.extractor.SupportedMimeTypes() {
			if mt != mimeType {
				continue
			}
			if best == nil || entry.extractor.Priority() > best.Priority() {
				best = entry.extractor
			}
		}
	}
	if best == nil {
		return nil, document.NewUnsupportedFormat(mimeType)
	}
	return best, nil
}

// RegisterPostProcessor adds a post-processor with the given priority.
// Lower priority numbers run first within their stage; ties keep
// registration order.
func (r *Registry) RegisterPostProcessor(p PostProcessor, priority int) error {
	if p == nil || p.Name() == "" {
		return document.NewInvalidParameter("post-processor must have a name")
	}
	r.mu.Lock()
	if _, dup := r.processors[p.Name()]; dup {
		r.mu.Unlock()
		return document.NewPlugin(p.Name(), "already registered", nil)
	}
	r.seq++
	r.processors[p.Name()] = processorEntry{processor: p, priority: priority, order: r.seq}
	r.mu.Unlock()
	r.invalidateCache()
	return nil
}

// RemovePostProcessor removes a post-processor by name.
func (r *Registry) RemovePostProcessor(name string) {
	r.mu.Lock()
	delete(r.processors, name)
	r.mu.Unlock()
	r.invalidateCache()
}

// RegisterValidator adds a validator with the given priority.
func (r *Registry) RegisterValidator(v Validator, priority int) error {
	if v == nil || v.Name() == "" {
		return document.NewInvalidParameter("validator must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.validators[v.Name()]; dup {
		return document.NewPlugin(v.Name(), "already registered", nil)
	}
	r.seq++
	r.validators[v.Name()] = validatorEntry{validator: v, priority: priority, order: r.seq}
	return nil
}

// RemoveValidator removes a validator by name.
func (r *Registry) RemoveValidator(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.validators, name)
}

// Validators returns all validators sorted by priority, registration order
// on ties.
func (r *Registry) Validators() []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]validatorEntry, 0, len(r.validators))
	for _, e := range r.validators {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].order < entries[j].order
	})
	out := make([]Validator, len(entries))
	for i, e := range entries {
		out[i] = e.validator
	}
	return out
}

// ShutdownAll calls Shutdown on every registered plugin and clears the
// registry. Shutdown never panics; individual failures are accumulated.
func (r *Registry) ShutdownAll() error {
	defer r.invalidateCache()
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	for name, e := range r.extractors {
		if er := safeShutdown(e.extractor); er != nil {
			err = multierr.Append(err, fmt.Errorf("extractor %q: %w", name, er))
		}
	}
	for name, e := range r.processors {
		if er := safeShutdown(e.processor); er != nil {
			err = multierr.Append(err, fmt.Errorf("post-processor %q: %w", name, er))
		}
	}
	for name, e := range r.validators {
		if er := safeShutdown(e.validator); er != nil {
			err = multierr.Append(err, fmt.Errorf("validator %q: %w", name, er))
		}
	}
	r.extractors = make(map[string]extractorEntry)
	r.processors = make(map[string]processorEntry)
	r.validators = make(map[string]validatorEntry)
	return err
}

// safeShutdown converts a plugin panic during teardown into an error so that
// drop paths never panic.
func safeShutdown(p Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("shutdown panic: %v", rec)
		}
	}()
	return p.Shutdown()
}

// ProcessorCache is an immutable three-way partition of post-processors by
// stage. The registry is authoritative; the cache is a snapshot rebuilt on
// demand and shared by concurrent pipeline runs.
type ProcessorCache struct {
	Early  []PostProcessor
	Middle []PostProcessor
	Late   []PostProcessor
}

// ProcessorSnapshot returns the current cache, rebuilding it if a
// registration change invalidated it. Readers receive shared slices and must
// not mutate them.
func (r *Registry) ProcessorSnapshot() *ProcessorCache {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if r.cache != nil {
		return r.cache
	}
	r.cache = r.buildCache()
	return r.cache
}

// ClearProcessorCache drops the snapshot so the next pipeline run rebuilds it.
func (r *Registry) ClearProcessorCache() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache = nil
}

// invalidateCache must not be called while holding r.mu: the snapshot
// rebuild takes the locks in cacheMu then mu order.
func (r *Registry) invalidateCache() {
	r.cacheMu.Lock()
	r.cache = nil
	r.cacheMu.Unlock()
}

func (r *Registry) buildCache() *ProcessorCache {
	r.mu.RLock()
	entries := make([]processorEntry, 0, len(r.processors))
	for _, e := range r.processors {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].order < entries[j].order
	})

	cache := &ProcessorCache{}
	for _, e := range entries {
		switch e.processor.ProcessingStage() {
		case common.ProcessingStageEarly:
			cache.Early = append(cache.Early, e.processor)
		case common.ProcessingStageMiddle:
			cache.Middle = append(cache.Middle, e.processor)
		case common.ProcessingStageLate:
			cache.Late = append(cache.Late, e.processor)
		}
	}
	return cache
}
