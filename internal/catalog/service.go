// Package catalog ties the catalog sources, the filter engine and the
// favorites store together behind the operations the front ends expose.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lukman83/skinscout/internal/favorites"
	"github.com/lukman83/skinscout/internal/filter"
	"github.com/lukman83/skinscout/internal/models"
	"github.com/lukman83/skinscout/internal/platform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultSearchTimeout = 30 * time.Second

// DefaultFallbackBrands are queried one by one when the full catalog cannot
// be loaded.
var DefaultFallbackBrands = []string{"clinique", "maybelline", "revlon", "l'oreal", "nyx"}

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrBlankBrand     = errors.New("brand must not be blank")
	ErrNoSearcher     = errors.New("no term search source configured")
)

type Options struct {
	SearchTimeout  time.Duration
	MaxConcurrent  int
	FallbackBrands []string
	// Searcher is optional; SearchTerms fails with ErrNoSearcher without it.
	Searcher platform.TermSearcher
}

// Service runs catalog searches and favorite toggles.
type Service struct {
	catalog  platform.Catalog
	searcher platform.TermSearcher
	engine   *filter.Engine
	store    *favorites.Store
	logger   *zap.Logger

	timeout        time.Duration
	maxConcurrent  int
	fallbackBrands []string

	mu    sync.RWMutex
	last  []*models.Product
	index map[string]*models.Product
}

func NewService(cat platform.Catalog, engine *filter.Engine, store *favorites.Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = favorites.NewStore(nil)
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = DefaultSearchTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 3
	}
	if opts.FallbackBrands == nil {
		opts.FallbackBrands = DefaultFallbackBrands
	}
	return &Service{
		catalog:        cat,
		searcher:       opts.Searcher,
		engine:         engine,
		store:          store,
		logger:         logger,
		timeout:        opts.SearchTimeout,
		maxConcurrent:  opts.MaxConcurrent,
		fallbackBrands: opts.FallbackBrands,
		index:          make(map[string]*models.Product),
	}
}

// Search fetches the full catalog and returns the records matching c.
func (s *Service) Search(ctx context.Context, c filter.Criteria) ([]*models.Product, error) {
	platform.ReportProgress(ctx, "Fetching catalog...")
	all, err := s.fetch(ctx, s.catalog.AllProducts)
	if err != nil {
		return nil, err
	}
	platform.ReportProgress(ctx, fmt.Sprintf("Received %d products, filtering...", len(all)))

	results := s.engine.Filter(all, c)
	s.logger.Debug("search finished",
		zap.String("query", c.Query),
		zap.String("category", c.Category),
		zap.Int("received", len(all)),
		zap.Int("matched", len(results)))

	s.remember(results)
	return results, nil
}

// ByBrand returns the in-domain records of one brand.
func (s *Service) ByBrand(ctx context.Context, brand string) ([]*models.Product, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil, ErrBlankBrand
	}
	platform.ReportProgress(ctx, fmt.Sprintf("Fetching brand %s...", brand))
	products, err := s.fetch(ctx, func(ctx context.Context) ([]*models.Product, error) {
		return s.catalog.ProductsByBrand(ctx, brand)
	})
	if err != nil {
		return nil, fmt.Errorf("brand %s: %w", brand, err)
	}
	results := s.engine.SkincareOnly(products)
	s.remember(results)
	return results, nil
}

// LoadResult describes an initial catalog load.
type LoadResult struct {
	Products []*models.Product
	// Fallback is set when the brand-by-brand path produced Products.
	Fallback bool
	// PrimaryErr is the error of the full catalog fetch, if any.
	PrimaryErr  error
	BrandErrors map[string]error
}

// LoadInitial loads the unfiltered skincare view. When the full catalog
// fetch fails or yields nothing, each fallback brand is queried and every
// brand that succeeds contributes its records. The load fails only when
// nothing could be fetched at all.
func (s *Service) LoadInitial(ctx context.Context) (*LoadResult, error) {
	res := &LoadResult{BrandErrors: make(map[string]error)}

	products, err := s.Search(ctx, filter.Criteria{})
	if err == nil && len(products) > 0 {
		res.Products = products
		return res, nil
	}
	if err != nil {
		res.PrimaryErr = err
		s.logger.Warn("catalog load failed, trying specific brands", zap.Error(err))
	} else {
		s.logger.Info("catalog load returned no skincare products, trying specific brands")
	}
	platform.ReportProgress(ctx, "Trying specific brands...")

	res.Fallback = true
	perBrand := make([][]*models.Product, len(s.fallbackBrands))
	brandErrs := make([]error, len(s.fallbackBrands))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, brand := range s.fallbackBrands {
		g.Go(func() error {
			found, err := s.ByBrand(ctx, brand)
			if err != nil {
				brandErrs[i] = err
				return nil
			}
			perBrand[i] = found
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	for i, brand := range s.fallbackBrands {
		if brandErrs[i] != nil {
			res.BrandErrors[brand] = brandErrs[i]
			s.logger.Warn("error loading brand", zap.String("brand", brand), zap.Error(brandErrs[i]))
			continue
		}
		for _, p := range perBrand[i] {
			if _, dup := seen[p.ID()]; dup {
				continue
			}
			seen[p.ID()] = struct{}{}
			res.Products = append(res.Products, p)
		}
	}
	if res.Products == nil {
		res.Products = []*models.Product{}
	}
	s.remember(res.Products)

	if res.PrimaryErr != nil && len(res.BrandErrors) == len(s.fallbackBrands) {
		errs := []error{res.PrimaryErr}
		for _, brand := range s.fallbackBrands {
			errs = append(errs, res.BrandErrors[brand])
		}
		return res, fmt.Errorf("initial load: %w", errors.Join(errs...))
	}
	return res, nil
}

// FilterByConcerns narrows the most recent results to records tagged with
// every concern. Without previous results the full catalog is searched first.
func (s *Service) FilterByConcerns(ctx context.Context, concerns []string) ([]*models.Product, error) {
	records := s.LastResults()
	if len(records) == 0 {
		var err error
		records, err = s.Search(ctx, filter.Criteria{})
		if err != nil {
			return nil, err
		}
	}
	return filter.FilterByConcerns(records, concerns), nil
}

// SearchTerms queries the term search source. With skincareOnly set the page
// is narrowed by the classification heuristic and enriched.
func (s *Service) SearchTerms(ctx context.Context, terms string, page int, skincareOnly bool) (*platform.SearchPage, error) {
	if s.searcher == nil {
		return nil, ErrNoSearcher
	}
	platform.ReportProgress(ctx, fmt.Sprintf("Searching %s for %q...", s.searcher.Name(), terms))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	result, err := s.searcher.SearchTerms(ctx, terms, page)
	if err != nil {
		return nil, s.timeoutErr(ctx, err)
	}
	if skincareOnly {
		result.Products = s.engine.SkincareOnly(result.Products)
	}
	s.remember(result.Products)
	return result, nil
}

// TypeCount is the number of in-domain records of one product type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ProductTypes counts in-domain records per product type, most common first.
func (s *Service) ProductTypes(ctx context.Context) ([]TypeCount, error) {
	all, err := s.fetch(ctx, s.catalog.AllProducts)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, p := range all {
		if p == nil || !p.HasName() || !filter.IsInDomain(p) {
			continue
		}
		counts[p.Type()]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// Lookup finds a product by id in the last results or the favorites.
func (s *Service) Lookup(id string) (*models.Product, bool) {
	s.mu.RLock()
	p, ok := s.index[id]
	s.mu.RUnlock()
	if ok {
		return p, true
	}
	return s.store.Get(id)
}

// Resolve is Lookup that falls back to fetching the catalog.
func (s *Service) Resolve(ctx context.Context, id string) (*models.Product, error) {
	if p, ok := s.Lookup(id); ok {
		return p, nil
	}
	all, err := s.fetch(ctx, s.catalog.AllProducts)
	if err != nil {
		return nil, err
	}
	for _, p := range s.engine.SkincareOnly(all) {
		if p.ID() == id {
			s.markFavorites([]*models.Product{p})
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
}

// ToggleFavorite sets the favorite flag of the product with id.
func (s *Service) ToggleFavorite(ctx context.Context, id string, isFavorite bool) (*models.Product, error) {
	p, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store.Toggle(p, isFavorite)
	s.logger.Info("favorite toggled",
		zap.String("product_id", p.ID()),
		zap.String("name", p.Name()),
		zap.Bool("is_favorite", isFavorite))
	return p, nil
}

// Favorites lists favorited products in insertion order.
func (s *Service) Favorites() []*models.Product {
	return s.store.List()
}

// ClearFavorites unfavorites every product in the store.
func (s *Service) ClearFavorites() int {
	list := s.store.List()
	for _, p := range list {
		s.store.Toggle(p, false)
	}
	return len(list)
}

// LastResults returns a copy of the most recent result list.
func (s *Service) LastResults() []*models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, len(s.last))
	copy(out, s.last)
	return out
}

func (s *Service) fetch(ctx context.Context, fn func(context.Context) ([]*models.Product, error)) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	products, err := fn(ctx)
	if err != nil {
		return nil, s.timeoutErr(ctx, err)
	}
	return products, nil
}

// timeoutErr replaces errors caused by the search deadline with a
// descriptive timeout error.
func (s *Service) timeoutErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("search timed out after %s: %w", s.timeout, context.DeadlineExceeded)
	}
	return err
}

func (s *Service) markFavorites(products []*models.Product) {
	for _, p := range products {
		if p != nil && s.store.Contains(p.ID()) {
			p.SetFavorite(true)
		}
	}
}

func (s *Service) remember(products []*models.Product) {
	s.markFavorites(products)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = products
	s.index = make(map[string]*models.Product, len(products))
	for _, p := range products {
		if p != nil {
			s.index[p.ID()] = p
		}
	}
}
