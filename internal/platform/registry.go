package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the catalog sources known to the process.
type Registry struct {
	mu        sync.RWMutex
	catalogs  map[string]Catalog
	searchers map[string]TermSearcher
}

func NewRegistry() *Registry {
	return &Registry{
		catalogs:  make(map[string]Catalog),
		searchers: make(map[string]TermSearcher),
	}
}

func (r *Registry) RegisterCatalog(c Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs[c.Name()] = c
}

func (r *Registry) RegisterSearcher(s TermSearcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchers[s.Name()] = s
}

func (r *Registry) Catalog(name string) (Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.catalogs[name]
	if !ok {
		return nil, fmt.Errorf("catalog %q not registered (available: %s)", name, strings.Join(r.catalogNamesLocked(), ", "))
	}
	return c, nil
}

func (r *Registry) Searcher(name string) (TermSearcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.searchers[name]
	if !ok {
		return nil, fmt.Errorf("search source %q not registered", name)
	}
	return s, nil
}

func (r *Registry) catalogNamesLocked() []string {
	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
