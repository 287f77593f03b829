// internal/application/query/mall/catalog_query.go
package mall

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	catdom "storefront/internal/domain/catalog"
	"storefront/internal/domain/document"
)

const (
	categoriesLimit      = 100
	topCategoriesLimit   = 10
	productOfTheDayLimit = 10
	defaultJoinWorkers   = 4
)

// Collections names the catalog collections in the document store.
type Collections struct {
	Products        string
	Categories      string
	TopCategories   string
	ProductOfTheDay string
}

func DefaultCollections() Collections {
	return Collections{
		Products:        "products",
		Categories:      "categories",
		TopCategories:   "topCategories",
		ProductOfTheDay: "productOfTheDay",
	}
}

// ImageURLResolver rewrites stored image references (optional).
type ImageURLResolver interface {
	ResolveImageURL(ctx context.Context, stored string) string
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// CatalogQuery is the read-only catalog view.
//
// Remote failures never escape list reads: they are logged and an empty
// result is returned. Only caller mistakes (empty ids) are errors.
type CatalogQuery struct {
	Store  document.Store
	Cols   Collections
	Images ImageURLResolver
	Clock  Clock
	Log    *slog.Logger

	// JoinWorkers bounds concurrent reference lookups.
	JoinWorkers int
	// Location decides "today" for the product of the day.
	Location *time.Location
}

func NewCatalogQuery(store document.Store, cols Collections, logger *slog.Logger) *CatalogQuery {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogQuery{
		Store:       store,
		Cols:        cols,
		Clock:       systemClock{},
		Log:         logger.With("component", "catalog"),
		JoinWorkers: defaultJoinWorkers,
		Location:    time.UTC,
	}
}

// ==============================
// Products
// ==============================

// FetchFeatured returns products flagged as featured.
func (q *CatalogQuery) FetchFeatured(ctx context.Context) []catdom.Product {
	docs, err := q.Store.List(ctx, q.Cols.Products, document.BuildQuery(document.Equal("isFeatured", true)))
	if err != nil {
		q.Log.ErrorContext(ctx, "fetch featured failed", "err", err)
		return []catdom.Product{}
	}

	out := make([]catdom.Product, 0, len(docs))
	for _, d := range docs {
		p := q.product(ctx, d)
		if !p.IsFeatured {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FetchByID distinguishes "no such product" from "could not read".
func (q *CatalogQuery) FetchByID(ctx context.Context, id string) (catdom.ProductLookup, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return catdom.ProductLookup{}, ErrInvalidArgument
	}

	d, err := q.Store.Get(ctx, q.Cols.Products, id)
	switch {
	case errors.Is(err, document.ErrNotFound):
		return catdom.NotFound(), nil
	case err != nil:
		q.Log.WarnContext(ctx, "fetch product failed", "productId", id, "err", err)
		return catdom.Failed(err), nil
	}
	return catdom.Found(q.product(ctx, d)), nil
}

func (q *CatalogQuery) FetchByCategory(ctx context.Context, categoryID string) ([]catdom.Product, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, ErrInvalidArgument
	}

	docs, err := q.Store.List(ctx, q.Cols.Products, document.BuildQuery(document.Equal("categoryId", categoryID)))
	if err != nil {
		q.Log.ErrorContext(ctx, "fetch by category failed", "categoryId", categoryID, "err", err)
		return []catdom.Product{}, nil
	}

	out := make([]catdom.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, q.product(ctx, d))
	}
	return out, nil
}

// ==============================
// Categories
// ==============================

func (q *CatalogQuery) FetchCategories(ctx context.Context) []catdom.Category {
	docs, err := q.Store.List(ctx, q.Cols.Categories, document.BuildQuery(document.Limit(categoriesLimit)))
	if err != nil {
		q.Log.ErrorContext(ctx, "fetch categories failed", "err", err)
		return []catdom.Category{}
	}

	out := make([]catdom.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, q.category(ctx, d))
	}
	if len(out) > categoriesLimit {
		out = out[:categoriesLimit]
	}
	return out
}

// FetchTopCategories resolves the ranked top-category entries into
// categories. Entries whose category cannot be read are reported in
// Failures; the others are still returned, in rank order.
func (q *CatalogQuery) FetchTopCategories(ctx context.Context) catdom.TopCategories {
	docs, err := q.Store.List(ctx, q.Cols.TopCategories,
		document.BuildQuery(document.OrderAsc("rank"), document.Limit(topCategoriesLimit)))
	if err != nil {
		q.Log.ErrorContext(ctx, "fetch top categories failed", "err", err)
		return catdom.TopCategories{Categories: []catdom.Category{}}
	}

	entries := make([]catdom.TopCategory, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, topCategoryFromDocument(d))
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
	if len(entries) > topCategoriesLimit {
		entries = entries[:topCategoriesLimit]
	}

	refs := make([]joinRef, len(entries))
	for i, e := range entries {
		refs[i] = joinRef{SourceID: e.ID, Rank: e.Rank, ReferenceID: e.CategoryDocumentID}
	}

	resolved, failures := q.join(ctx, q.Cols.Categories, refs)

	out := catdom.TopCategories{Categories: make([]catdom.Category, 0, len(resolved)), Failures: failures}
	for i, d := range resolved {
		if d == nil {
			continue
		}
		c := q.category(ctx, *d)
		rank := entries[i].Rank
		c.Rank = &rank
		out.Categories = append(out.Categories, c)
	}
	if len(failures) > 0 {
		q.Log.WarnContext(ctx, "top categories partially resolved",
			"resolved", len(out.Categories), "failed", len(failures))
	}
	return out
}

// ==============================
// Product of the day
// ==============================

// FetchProductOfTheDay returns today's ranked picks joined to products.
func (q *CatalogQuery) FetchProductOfTheDay(ctx context.Context) catdom.ProductsOfTheDay {
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	today := q.Clock.Now().In(loc).Format(time.DateOnly)
	out := catdom.ProductsOfTheDay{Date: today, Products: []catdom.Product{}}

	docs, err := q.Store.List(ctx, q.Cols.ProductOfTheDay,
		document.BuildQuery(document.Equal("date", today), document.OrderAsc("rank"), document.Limit(productOfTheDayLimit)))
	if err != nil {
		q.Log.ErrorContext(ctx, "fetch product of the day failed", "date", today, "err", err)
		return out
	}

	picks := make([]catdom.ProductOfTheDay, 0, len(docs))
	for _, d := range docs {
		picks = append(picks, productOfTheDayFromDocument(d))
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Rank < picks[j].Rank })

	refs := make([]joinRef, len(picks))
	for i, p := range picks {
		refs[i] = joinRef{SourceID: p.ID, Rank: p.Rank, ReferenceID: p.ProductDocumentID}
	}

	resolved, failures := q.join(ctx, q.Cols.Products, refs)
	out.Failures = failures
	for _, d := range resolved {
		if d == nil {
			continue
		}
		out.Products = append(out.Products, q.product(ctx, *d))
	}
	return out
}

// ==============================
// join
// ==============================

type joinRef struct {
	SourceID    string
	Rank        int
	ReferenceID string
}

// join fetches each reference concurrently. The result slice is aligned
// with refs (nil where the lookup failed); one failure never cancels the
// others.
func (q *CatalogQuery) join(ctx context.Context, collection string, refs []joinRef) ([]*document.Document, []catdom.JoinFailure) {
	resolved := make([]*document.Document, len(refs))
	reasons := make([]string, len(refs))

	workers := q.JoinWorkers
	if workers <= 0 {
		workers = defaultJoinWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, ref := range refs {
		g.Go(func() error {
			id := strings.TrimSpace(ref.ReferenceID)
			if id == "" {
				reasons[i] = "missing reference"
				return nil
			}
			d, err := q.Store.Get(ctx, collection, id)
			switch {
			case errors.Is(err, document.ErrNotFound):
				reasons[i] = "not found"
			case err != nil:
				reasons[i] = err.Error()
			default:
				resolved[i] = &d
			}
			return nil
		})
	}
	_ = g.Wait()

	var failures []catdom.JoinFailure
	for i, reason := range reasons {
		if reason == "" {
			continue
		}
		failures = append(failures, catdom.JoinFailure{
			SourceID:    refs[i].SourceID,
			Rank:        refs[i].Rank,
			ReferenceID: refs[i].ReferenceID,
			Reason:      reason,
		})
		q.Log.WarnContext(ctx, "join lookup failed",
			"collection", collection,
			"source", refs[i].SourceID,
			"reference", refs[i].ReferenceID,
			"reason", reason,
		)
	}
	return resolved, failures
}

func (q *CatalogQuery) resolveImage(ctx context.Context, stored string) string {
	if q.Images == nil {
		return stored
	}
	return q.Images.ResolveImageURL(ctx, stored)
}
