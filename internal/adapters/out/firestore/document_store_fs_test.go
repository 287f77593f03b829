package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/document"
)

func TestTranslateErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", status.Error(codes.NotFound, "x"), document.ErrNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "x"), document.ErrAlreadyExists},
		{"aborted", status.Error(codes.Aborted, "x"), document.ErrConflict},
		{"conflict passthrough", fmt.Errorf("tx: %w", document.ErrConflict), document.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateErr(tc.in)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	other := status.Error(codes.Unavailable, "down")
	if got := translateErr(other); got != other {
		t.Fatalf("unexpected translation of %v: %v", other, got)
	}
}

func TestToFirestoreUpdates(t *testing.T) {
	ups, err := toFirestoreUpdates([]document.FieldUpdate{
		document.DeleteField("items", "p1"),
		document.Increment(1, "version"),
		document.Set("x", "name"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ups) != 3 {
		t.Fatalf("len = %d", len(ups))
	}
	if ups[0].Value != firestore.Delete {
		t.Fatalf("expected firestore.Delete sentinel")
	}
	if len(ups[0].FieldPath) != 2 || ups[0].FieldPath[1] != "p1" {
		t.Fatalf("field path = %v", ups[0].FieldPath)
	}
	if ups[2].Value != "x" {
		t.Fatalf("value = %v", ups[2].Value)
	}

	if _, err := toFirestoreUpdates([]document.FieldUpdate{{}}); !errors.Is(err, document.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

// Runs only against the Firestore emulator.
func TestDocumentStoreFS_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := firestore.NewClient(ctx, "storefront-test")
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	defer client.Close()

	s := NewDocumentStoreFS(client)
	col := fmt.Sprintf("carts_%d", time.Now().UnixNano())

	if _, err := s.Get(ctx, col, "u1"); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, col, "u1", map[string]any{"version": 1, "items": map[string]any{"p1": map[string]any{"quantity": 1}}}, document.IfVersion("version", 0)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, col, "u1", map[string]any{"version": 2}, document.IfVersion("version", 0)); !errors.Is(err, document.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := s.Update(ctx, col, "u1", []document.FieldUpdate{document.DeleteField("items", "p1"), document.Increment(1, "version")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	d, err := s.Get(ctx, col, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, _ := document.AsInt64(d.Data["version"]); v != 2 {
		t.Fatalf("version = %v", d.Data["version"])
	}

	if _, err := s.Create(ctx, col, "", map[string]any{"rank": 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	docs, err := s.List(ctx, col, document.BuildQuery(document.OrderAsc("rank"), document.Limit(10)))
	if err != nil || len(docs) != 1 {
		t.Fatalf("List: %v %d", err, len(docs))
	}
}
