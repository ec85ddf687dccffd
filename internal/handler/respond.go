// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file provides the shared request/response plumbing: JSON encoding,
// bounded request decoding, and path/query parsing helpers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/oleawatch/oleawatch/internal/domain"
)

// maxRequestBody caps JSON request bodies at 1 MB. Evidence uploads go
// through the multipart attachment endpoint and have their own limit.
const maxRequestBody = 1 << 20

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields,
// trailing data and oversized bodies.
func decodeJSON(r *http.Request, dst any) error {
	const op = "handler.decodeJSON"

	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return domain.Invalid(op, "request body too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "request body is empty")
		default:
			return domain.Invalid(op, fmt.Sprintf("malformed request body: %v", err))
		}
	}

	// A request body must contain exactly one JSON object.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return domain.Invalid(op, "request body must contain a single JSON object")
	}

	return nil
}

// pathUUID parses the named path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	const op = "handler.pathUUID"

	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid(op, fmt.Sprintf("invalid %s: must be a UUID", name))
	}
	return id, nil
}

// queryInt32 parses an optional integer query parameter, returning def when
// the parameter is absent.
func queryInt32(r *http.Request, name string, def int32) (int32, error) {
	const op = "handler.queryInt32"

	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 0 {
		return 0, domain.Invalid(op, fmt.Sprintf("invalid %s: must be a non-negative integer", name))
	}
	return int32(n), nil
}
