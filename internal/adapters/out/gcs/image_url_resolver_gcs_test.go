package gcs

import (
	"context"
	"testing"
)

func TestImageURLResolverGCS_Public(t *testing.T) {
	r := NewImageURLResolverGCS(nil, "catalog-images", 0, "")
	ctx := context.Background()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  ", ""},
		{"absolute", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"gs url", "gs://other/products/a b.png", "https://storage.googleapis.com/other/products/a%20b.png"},
		{"object path", "/products/rice.jpg", "https://storage.googleapis.com/catalog-images/products/rice.jpg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.ResolveImageURL(ctx, tc.in); got != tc.want {
				t.Fatalf("ResolveImageURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestImageURLResolverGCS_NoBucket(t *testing.T) {
	r := NewImageURLResolverGCS(nil, "", 0, "")
	if got := r.ResolveImageURL(context.Background(), "products/a.png"); got != "products/a.png" {
		t.Fatalf("got %q", got)
	}
}

func TestParseGCSURL(t *testing.T) {
	if _, _, ok := ParseGCSURL("gs://bucket"); ok {
		t.Fatalf("bucket without object should not parse")
	}
	b, o, ok := ParseGCSURL("gs://b/x/y.png")
	if !ok || b != "b" || o != "x/y.png" {
		t.Fatalf("got %q %q %v", b, o, ok)
	}
}
