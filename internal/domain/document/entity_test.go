package document

import (
	"errors"
	"testing"
)

func TestApplyUpdates(t *testing.T) {
	t.Run("set nested creates parents", func(t *testing.T) {
		data := map[string]any{}
		if err := ApplyUpdates(data, []FieldUpdate{Set(3, "items", "p1", "quantity")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items, ok := data["items"].(map[string]any)
		if !ok {
			t.Fatalf("items not created: %#v", data)
		}
		p1, _ := items["p1"].(map[string]any)
		if p1["quantity"] != 3 {
			t.Fatalf("quantity = %v, want 3", p1["quantity"])
		}
	})

	t.Run("delete leaves siblings", func(t *testing.T) {
		data := map[string]any{
			"items": map[string]any{"p1": map[string]any{}, "p2": map[string]any{}},
		}
		if err := ApplyUpdates(data, []FieldUpdate{DeleteField("items", "p1")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items := data["items"].(map[string]any)
		if _, ok := items["p1"]; ok {
			t.Fatalf("p1 still present")
		}
		if _, ok := items["p2"]; !ok {
			t.Fatalf("p2 removed")
		}
	})

	t.Run("delete under missing parent is a no-op", func(t *testing.T) {
		data := map[string]any{}
		if err := ApplyUpdates(data, []FieldUpdate{DeleteField("items", "p1")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) != 0 {
			t.Fatalf("data changed: %#v", data)
		}
	})

	t.Run("increment from absent and float", func(t *testing.T) {
		data := map[string]any{"b": float64(2)}
		_ = ApplyUpdates(data, []FieldUpdate{Increment(1, "a"), Increment(3, "b")})
		if data["a"] != int64(1) || data["b"] != int64(5) {
			t.Fatalf("got a=%v b=%v", data["a"], data["b"])
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if err := ApplyUpdates(map[string]any{}, []FieldUpdate{{}}); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}
	})
}

func TestCheckAll(t *testing.T) {
	if err := CheckAll(nil, []Condition{IfVersion("version", 0)}); err != nil {
		t.Fatalf("absent doc should match version 0: %v", err)
	}
	if err := CheckAll(map[string]any{"version": int64(2)}, []Condition{IfVersion("version", 1)}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := CheckAll(map[string]any{"version": float64(2)}, []Condition{IfVersion("version", 2)}); err != nil {
		t.Fatalf("float version should match: %v", err)
	}
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(Equal("isFeatured", true), OrderAsc("rank"), Limit(10), Limit(0))
	if len(q.Filters) != 1 || q.Filters[0].Op != OpEqual {
		t.Fatalf("filters = %#v", q.Filters)
	}
	if len(q.OrderBy) != 1 || q.OrderBy[0].Field != "rank" {
		t.Fatalf("order = %#v", q.OrderBy)
	}
	if q.Limit != 10 {
		t.Fatalf("limit = %d", q.Limit)
	}
}
