package filter

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/smart-prospective/spctl/spapi"
)

// Presets holds named filters, usually loaded from the filter.presets config
type Presets struct {
	compiler Compiler
	filters  map[string]Filter
	mu       sync.RWMutex
}

// PresetsOption configures a preset registry
type PresetsOption func(*Presets)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) PresetsOption {
	return func(p *Presets) {
		p.compiler = compiler
	}
}

// NewPresets creates an empty preset registry
func NewPresets(opts ...PresetsOption) *Presets {
	p := &Presets{
		compiler: NewCompiler(WithCache(100)),
		filters:  make(map[string]Filter),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register registers a new preset or replaces an existing one
func (p *Presets) Register(name, expression string) error {
	f, err := p.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile preset '%s': %w", name, err)
	}

	p.mu.Lock()
	p.filters[name] = f
	p.mu.Unlock()
	return nil
}

// RegisterAll registers every preset, or none when one fails to compile
func (p *Presets) RegisterAll(presets map[string]string) error {
	compiled := make(map[string]Filter, len(presets))
	for _, name := range slices.Sorted(maps.Keys(presets)) {
		f, err := p.compiler.Compile(presets[name])
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = f
	}

	p.mu.Lock()
	maps.Copy(p.filters, compiled)
	p.mu.Unlock()
	return nil
}

// Unregister removes a preset
func (p *Presets) Unregister(name string) {
	p.mu.Lock()
	delete(p.filters, name)
	p.mu.Unlock()
}

// Get returns a preset by name
func (p *Presets) Get(name string) (Filter, bool) {
	p.mu.RLock()
	f, ok := p.filters[name]
	p.mu.RUnlock()
	return f, ok
}

// Names returns the registered preset names, sorted
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.filters))
}

// Apply filters records with the named preset
func (p *Presets) Apply(name string, records []spapi.Record) ([]spapi.Record, error) {
	f, ok := p.Get(name)
	if !ok {
		return nil, fmt.Errorf("filter preset '%s' not found", name)
	}
	return Apply(f, records), nil
}
