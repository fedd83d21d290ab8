// Package metric reads named numeric fields out of raw activity payloads.
//
// Activity schemas evolve independently of the scoring engine, so extraction
// is lenient: a missing path, a null, or a value of the wrong type is reported
// as absent instead of failing. Callers that need a number convert absent to 0
// with Value.
package metric

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Result is the outcome of reading one field.
type Result struct {
	Value   float64
	Present bool
}

// Extract walks a dot-separated path into payload. Numbers are returned as-is;
// strings ending in "%" yield their numeric prefix. Anything else is absent.
func Extract(payload []byte, path string) Result {
	if len(payload) == 0 || path == "" {
		return Result{}
	}

	r := gjson.GetBytes(payload, path)
	switch r.Type {
	case gjson.Number:
		v := r.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}
		}
		return Result{Value: v, Present: true}
	case gjson.String:
		return parsePercent(r.Str)
	default:
		return Result{}
	}
}

// Value is Extract with absent mapped to 0.
func Value(payload []byte, path string) float64 {
	return Extract(payload, path).Value
}

// FirstPositive returns the first strictly positive value found among paths.
func FirstPositive(payload []byte, paths ...string) (float64, bool) {
	for _, p := range paths {
		if r := Extract(payload, p); r.Present && r.Value > 0 {
			return r.Value, true
		}
	}
	return 0, false
}

// Timestamp reads a time from payload at path. RFC3339 strings and epoch
// milliseconds are accepted.
func Timestamp(payload []byte, path string) (time.Time, bool) {
	if len(payload) == 0 {
		return time.Time{}, false
	}

	r := gjson.GetBytes(payload, path)
	switch r.Type {
	case gjson.String:
		t, err := time.Parse(time.RFC3339, r.Str)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case gjson.Number:
		ms := r.Int()
		if ms <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	default:
		return time.Time{}, false
	}
}

func parsePercent(s string) Result {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return Result{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{}
	}
	return Result{Value: v, Present: true}
}
