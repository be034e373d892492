package handlers

import (
	"net/http"
	"strconv"
)

// parsePagination reads skip/limit query parameters, ignoring garbage values
func parsePagination(r *http.Request) (skip, limit int) {
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			skip = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	return skip, limit
}

// parseUintParam parses a positive integer path or query value
func parseUintParam(raw string) (uint, bool) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
