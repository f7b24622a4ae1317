package email

import (
	"fmt"
	"sync"

	"github.com/neomnia/content-mania-sub004/internal/config"
	"github.com/neomnia/content-mania-sub004/internal/provider"
)

// Registry holds the configured delivery providers and the ordered fallback
// chain. It is constructed explicitly and injected into the router; it is
// never a package global.
type Registry struct {
	providers map[string]provider.Provider
	chain     []string
}

// NewRegistry builds a registry over the given providers. chain lists
// provider names in fallback order, primary first; names not present in
// providers are dropped.
func NewRegistry(chain []string, providers ...provider.Provider) *Registry {
	byName := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	ordered := make([]string, 0, len(chain))
	for _, name := range chain {
		if _, ok := byName[name]; ok {
			ordered = append(ordered, name)
		}
	}

	return &Registry{providers: byName, chain: ordered}
}

// Get resolves a provider by name.
func (r *Registry) Get(name string) (provider.Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Chain returns the providers in fallback order.
func (r *Registry) Chain() []provider.Provider {
	out := make([]provider.Provider, 0, len(r.chain))
	for _, name := range r.chain {
		out = append(out, r.providers[name])
	}
	return out
}

// Names returns the configured provider names in fallback order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.chain...)
}

// BuildRegistry constructs the registry from config. Providers with no
// configuration block are simply absent.
func BuildRegistry(cfg config.EmailConfig) (*Registry, error) {
	var providers []provider.Provider
	if cfg.SMTP != nil {
		providers = append(providers, provider.NewSMTPProvider(*cfg.SMTP))
	}
	if cfg.HTTP != nil {
		providers = append(providers, provider.NewHTTPProvider(*cfg.HTTP))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no email providers configured")
	}

	chain := cfg.Chain
	if len(chain) == 0 {
		for _, p := range providers {
			chain = append(chain, p.Name())
		}
	}
	return NewRegistry(chain, providers...), nil
}

// LazyRegistry defers registry construction until first use with
// initialize-once semantics: concurrent callers all observe the same
// fully-built registry, and the initializer runs exactly once.
type LazyRegistry struct {
	once  sync.Once
	build func() (*Registry, error)
	reg   *Registry
	err   error
}

func NewLazyRegistry(build func() (*Registry, error)) *LazyRegistry {
	return &LazyRegistry{build: build}
}

// Get returns the registry, building it on first call.
func (l *LazyRegistry) Get() (*Registry, error) {
	l.once.Do(func() {
		l.reg, l.err = l.build()
	})
	return l.reg, l.err
}
