// internal/domain/catalog/entity.go
package catalog

import "time"

// Product is a sellable item as shown in the storefront.
// ID is the document id; ProductID is the business identifier field.
type Product struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  string    `json:"categoryId"`
	ImageURL    string    `json:"imageUrl"`
	Unit        string    `json:"unit"`
	Price       float64   `json:"price"`
	MRP         float64   `json:"mrp"`
	Discount    float64   `json:"discount"`
	Stock       int       `json:"stock"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type Category struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl"`
	Rank       *int   `json:"rank,omitempty"`
}

// TopCategory is a ranked pointer into the categories collection.
type TopCategory struct {
	ID                 string `json:"id"`
	Rank               int    `json:"rank"`
	CategoryDocumentID string `json:"categoryDocumentId"`
}

// ==============================
// Lookup outcome
// ==============================

type LookupStatus string

const (
	LookupFound    LookupStatus = "found"
	LookupNotFound LookupStatus = "not_found"
	LookupFailed   LookupStatus = "failed"
)

// ProductLookup distinguishes a missing product from a failed read.
type ProductLookup struct {
	Status  LookupStatus
	Product *Product
	Err     error
}

func Found(p Product) ProductLookup { return ProductLookup{Status: LookupFound, Product: &p} }
func NotFound() ProductLookup       { return ProductLookup{Status: LookupNotFound} }
func Failed(err error) ProductLookup {
	return ProductLookup{Status: LookupFailed, Err: err}
}

// ==============================
// Join results
// ==============================

// JoinFailure records one reference that could not be resolved.
type JoinFailure struct {
	SourceID    string `json:"sourceId"`
	Rank        int    `json:"rank"`
	ReferenceID string `json:"referenceId"`
	Reason      string `json:"reason"`
}

// TopCategories holds the resolved categories in rank order plus the
// entries that could not be resolved.
type TopCategories struct {
	Categories []Category    `json:"categories"`
	Failures   []JoinFailure `json:"failures,omitempty"`
}

// ProductOfTheDay is one ranked daily pick.
type ProductOfTheDay struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	Rank              int    `json:"rank"`
	ProductDocumentID string `json:"productDocumentId"`
}

type ProductsOfTheDay struct {
	Date     string        `json:"date"`
	Products []Product     `json:"products"`
	Failures []JoinFailure `json:"failures,omitempty"`
}
