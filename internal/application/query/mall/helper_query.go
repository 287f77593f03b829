// internal/application/query/mall/helper_query.go
package mall

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	catdom "storefront/internal/domain/catalog"
	"storefront/internal/domain/document"
)

func (q *CatalogQuery) product(ctx context.Context, d document.Document) catdom.Product {
	p := catdom.Product{
		ID:          d.ID,
		ProductID:   asString(d.Field("productId")),
		Name:        asString(d.Field("name")),
		Description: asString(d.Field("description")),
		CategoryID:  asString(d.Field("categoryId")),
		ImageURL:    q.resolveImage(ctx, asString(d.Field("imageUrl"))),
		Unit:        asString(d.Field("unit")),
		Price:       asFloat(d.Field("price")),
		MRP:         asFloat(d.Field("mrp")),
		Discount:    asFloat(d.Field("discount")),
		Stock:       asInt(d.Field("stock")),
		IsFeatured:  asBool(d.Field("isFeatured")),
	}
	if t, ok := asTime(d.Field("createdAt")); ok {
		p.CreatedAt = t
	} else {
		p.CreatedAt = d.CreateTime
	}
	if t, ok := asTime(d.Field("updatedAt")); ok {
		p.UpdatedAt = t
	} else {
		p.UpdatedAt = d.UpdateTime
	}
	return p
}

func (q *CatalogQuery) category(ctx context.Context, d document.Document) catdom.Category {
	c := catdom.Category{
		ID:         d.ID,
		CategoryID: asString(d.Field("categoryId")),
		Name:       asString(d.Field("name")),
		ImageURL:   q.resolveImage(ctx, asString(d.Field("imageUrl"))),
	}
	if v := d.Field("rank"); v != nil {
		r := asInt(v)
		c.Rank = &r
	}
	return c
}

func topCategoryFromDocument(d document.Document) catdom.TopCategory {
	return catdom.TopCategory{
		ID:                 d.ID,
		Rank:               asInt(d.Field("rank")),
		CategoryDocumentID: asString(d.Field("categoryDocumentId")),
	}
}

func productOfTheDayFromDocument(d document.Document) catdom.ProductOfTheDay {
	return catdom.ProductOfTheDay{
		ID:                d.ID,
		Date:              asString(d.Field("date")),
		Rank:              asInt(d.Field("rank")),
		ProductDocumentID: asString(d.Field("productDocumentId")),
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func asInt(v any) int {
	if n, ok := document.AsInt64(v); ok {
		return int(n)
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	}
	return false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		tt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t))
		if err != nil {
			return time.Time{}, false
		}
		return tt, true
	}
	return time.Time{}, false
}
