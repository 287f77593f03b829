// internal/adapters/out/docstore/helper_docstore.go
package docstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/document"
)

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

func asInt(v any) int {
	if n, ok := document.AsInt64(v); ok {
		return int(n)
	}
	if s, ok := v.(string); ok {
		tt := strings.TrimSpace(s)
		if tt == "" {
			return 0
		}
		if n, err := strconv.Atoi(tt); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(tt, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func asInt64(v any) int64 {
	if n, ok := document.AsInt64(v); ok {
		return n
	}
	return int64(asInt(v))
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
	default:
		return 0
	}
}

// asTime returns (time, ok). RFC3339 strings are accepted for stores that
// keep timestamps as JSON.
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
	default:
		return time.Time{}, false
	}
}
