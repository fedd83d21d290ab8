package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/api/validation"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies, activity payloads included.
const maxBodyBytes = 1 << 20

// userIDParam parses the {userId} path parameter, writing a 400 on failure.
func userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return uuid.Nil, false
	}
	return userID, true
}

// decodeBody decodes and validates a JSON body into dst, writing a 400 or 422
// on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return false
	}
	if fieldErrors := validation.Validate(dst); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// queryParams collects field errors while reading query parameters.
type queryParams struct {
	r      *http.Request
	errors []problem.FieldError
}

func (q *queryParams) time(name string) *time.Time {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		q.fail(name, "must be a valid RFC3339 timestamp")
		return nil
	}
	return &t
}

// intRange returns def when the parameter is absent.
func (q *queryParams) intRange(name string, def, min, max int, msg string) int {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		q.fail(name, msg)
		return def
	}
	return n
}

func (q *queryParams) fail(field, msg string) {
	q.errors = append(q.errors, problem.FieldError{Field: field, Message: msg})
}

// check writes a 422 when any parameter was invalid.
func (q *queryParams) check(w http.ResponseWriter) bool {
	if len(q.errors) == 0 {
		return true
	}
	problem.ValidationError("Invalid query parameters", q.errors).Write(w)
	return false
}
