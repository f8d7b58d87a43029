package volstate

import (
	"errors"
	"fmt"
	"log/slog"
)

// Registry maps every domain to its table. A Registry is immutable once
// built and may be shared by any number of goroutines.
type Registry struct {
	tables [domainCount]*Table
	log    *slog.Logger
}

// Option configures a registry during construction.
type Option func(*registryConfig) error

type registryConfig struct {
	add    [domainCount][]Transition
	remove [domainCount][]Transition
	log    *slog.Logger
}

var defaultRegistry = MustNewRegistry()

// Default returns the registry built from the canonical tables.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from the canonical tables with opts applied.
// Edge removals are applied before additions. Any added edge that references
// an unknown state fails construction with ErrInvalidRegistry.
func NewRegistry(opts ...Option) (*Registry, error) {
	cfg := &registryConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.Join(ErrInvalidRegistry, err)
		}
	}

	r := &Registry{
		tables: defaultTables(),
		log:    cfg.log,
	}
	for _, d := range Domains() {
		if len(cfg.add[d]) == 0 && len(cfg.remove[d]) == 0 {
			continue
		}
		t, err := r.tables[d].rebuild(cfg.add[d], cfg.remove[d])
		if err != nil {
			return nil, errors.Join(ErrInvalidRegistry, err)
		}
		r.tables[d] = t
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(opts ...Option) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build transition registry: %v", err))
	}
	return r
}

// TablesFor returns the table of the given domain.
func (r *Registry) TablesFor(d Domain) (*Table, error) {
	if !d.Valid() {
		return nil, NewUnknownDomainError(d.String())
	}
	return r.tables[d], nil
}

// TablesForName resolves a domain by wire name and returns its table.
func (r *Registry) TablesForName(name string) (*Table, error) {
	d, err := ParseDomain(name)
	if err != nil {
		return nil, err
	}
	return r.tables[d], nil
}

// Logger returns the logger used by quiet validation.
func (r *Registry) Logger() *slog.Logger {
	if r.log == nil {
		return slog.Default()
	}
	return r.log
}

// Table returns the canonical table of the domain.
// Panics for a domain outside the fixed set.
func (d Domain) Table() *Table {
	t, err := defaultRegistry.TablesFor(d)
	if err != nil {
		panic(err)
	}
	return t
}

// WithTransitions adds edges to a domain table.
func WithTransitions(d Domain, trs ...Transition) Option {
	return func(c *registryConfig) error {
		if !d.Valid() {
			return NewUnknownDomainError(d.String())
		}
		c.add[d] = append(c.add[d], trs...)
		return nil
	}
}

// WithoutTransitions removes edges from a domain table. Removing an edge that
// does not exist is not an error.
func WithoutTransitions(d Domain, trs ...Transition) Option {
	return func(c *registryConfig) error {
		if !d.Valid() {
			return NewUnknownDomainError(d.String())
		}
		c.remove[d] = append(c.remove[d], trs...)
		return nil
	}
}

// WithoutRecoveryTransitions drops the unverified volume edges that lead from
// an error state straight back to available.
func WithoutRecoveryTransitions() Option {
	return WithoutTransitions(DomainVolume, RecoveryTransitions()...)
}

// WithOverrides applies a parsed override document.
func WithOverrides(o Overrides) Option {
	return func(c *registryConfig) error {
		for name, ov := range o {
			d, err := ParseDomain(name)
			if err != nil {
				return err
			}
			c.add[d] = append(c.add[d], ov.Add...)
			c.remove[d] = append(c.remove[d], ov.Remove...)
		}
		return nil
	}
}

// WithLogger sets the logger that receives quiet-mode diagnostics.
// A nil logger falls back to slog.Default at call time.
func WithLogger(l *slog.Logger) Option {
	return func(c *registryConfig) error {
		c.log = l
		return nil
	}
}
