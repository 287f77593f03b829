// internal/adapters/out/gcs/image_url_resolver_gcs.go
package gcs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

// ImageURLResolverGCS turns stored image references into browser URLs.
//
// A stored value can be:
// - http(s)://... (returned as-is)
// - gs://bucket/object
// - objectPath (treated as object path within Bucket)
//
// With SignedTTL > 0 a V4 signed GET URL is issued (private buckets);
// signing failures fall back to the public URL.
type ImageURLResolverGCS struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
	SignedTTL     time.Duration
	SignerEmail   string

	now func() time.Time
}

func NewImageURLResolverGCS(client *storage.Client, bucket string, signedTTL time.Duration, signerEmail string) *ImageURLResolverGCS {
	return &ImageURLResolverGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: defaultPublicBaseURL,
		SignedTTL:     signedTTL,
		SignerEmail:   strings.TrimSpace(signerEmail),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (r *ImageURLResolverGCS) ResolveImageURL(ctx context.Context, stored string) string {
	p := strings.TrimSpace(stored)
	if p == "" || r == nil {
		return p
	}

	// already absolute URL
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}

	bucket, obj, ok := ParseGCSURL(p)
	if !ok {
		bucket = r.Bucket
		obj = strings.TrimLeft(p, "/")
	}
	if bucket == "" || obj == "" {
		return p
	}

	if r.SignedTTL > 0 && r.Client != nil {
		if u, err := r.signedURL(bucket, obj); err == nil {
			return u
		}
	}
	return PublicURL(r.PublicBaseURL, bucket, obj)
}

func (r *ImageURLResolverGCS) signedURL(bucket, obj string) (string, error) {
	ttl := r.SignedTTL
	if ttl > 7*24*time.Hour {
		ttl = 7 * 24 * time.Hour
	}
	now := time.Now().UTC()
	if r.now != nil {
		now = r.now()
	}
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		GoogleAccessID: r.SignerEmail,
		Expires:        now.Add(ttl),
	}
	return r.Client.Bucket(bucket).SignedURL(obj, opts)
}

// ParseGCSURL accepts gs://bucket/object.
func ParseGCSURL(s string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(s), "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// PublicURL encodes the object path but keeps "/" separators.
func PublicURL(base, bucket, objectPath string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = defaultPublicBaseURL
	}
	parts := strings.Split(objectPath, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.Join(parts, "/"))
}
