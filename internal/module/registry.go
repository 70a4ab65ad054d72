// Package module is the host-facing plugin surface: a capability descriptor
// plus a single scrape entry point per module, dispatched through an
// explicit registration table rather than reflective discovery.
package module

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// Module is the interface every scraper module implements.
type Module interface {
	// Name identifies the module.
	Name() string

	// Version reports the module version.
	Version() string

	// Sites lists the site URL prefixes the module supports. A target URL
	// matches when it starts with one of these.
	Sites() []string

	// Contents lists the content kinds the module can deliver.
	Contents() []types.ContentKind

	// Scrape runs one scrape. A nil error means success, even when the
	// result is empty; any error means total failure with no output.
	Scrape(ctx context.Context, params *types.ScrapeParameters) (*types.ModuleData, error)
}

// Registry routes scrape requests to a capable module.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	order   []string
	logger  *slog.Logger
}

// NewRegistry creates an empty module registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		modules: make(map[string]Module),
		logger:  logger.With("component", "module_registry"),
	}
}

// Register adds a module to the registry. Registration order is the
// dispatch tie-break when several modules match a URL.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}
	r.modules[name] = m
	r.order = append(r.order, name)

	r.logger.Info("module registered",
		"name", name,
		"version", m.Version(),
		"sites", m.Sites(),
	)
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// ModuleFor finds the first registered module that supports the URL and
// every requested content kind.
func (r *Registry) ModuleFor(url string, kinds []types.ContentKind) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		m := r.modules[name]
		if !siteMatches(m, url) {
			continue
		}
		if !supportsAll(m, kinds) {
			return nil, fmt.Errorf("%w: module %q matched %s", types.ErrUnsupportedKind, name, url)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedSite, url)
}

// Dispatch routes the scrape to the matching module and runs it.
func (r *Registry) Dispatch(ctx context.Context, params *types.ScrapeParameters) (*types.ModuleData, error) {
	m, err := r.ModuleFor(params.URL, params.RequestedContent)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("dispatching scrape", "module", m.Name(), "url", params.URL)
	return m.Scrape(ctx, params)
}

// List returns summary information about the registered modules.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		m := r.modules[name]
		infos = append(infos, Info{
			Name:     m.Name(),
			Version:  m.Version(),
			Sites:    m.Sites(),
			Contents: m.Contents(),
		})
	}
	return infos
}

// Info holds summary information about a module.
type Info struct {
	Name     string              `json:"name"`
	Version  string              `json:"version"`
	Sites    []string            `json:"sites"`
	Contents []types.ContentKind `json:"contents"`
}

func siteMatches(m Module, url string) bool {
	for _, site := range m.Sites() {
		if strings.HasPrefix(url, site) {
			return true
		}
	}
	return false
}

func supportsAll(m Module, kinds []types.ContentKind) bool {
	supported := make(map[types.ContentKind]bool, len(m.Contents()))
	for _, k := range m.Contents() {
		supported[k] = true
	}
	for _, k := range kinds {
		if !supported[k] {
			return false
		}
	}
	return true
}
