package handlers

import (
	"strconv"
	"strings"

	"afrizone/internal/service"
)

// parsePaginationParams coerces untrusted page/limit query values. Anything
// non-numeric or below 1 falls back to the default; limit is capped.
func parsePaginationParams(pageStr, limitStr string) (int64, int64) {
	page := int64(service.DefaultPage)
	limit := int64(service.DefaultLimit)

	if p, err := strconv.ParseInt(strings.TrimSpace(pageStr), 10, 64); err == nil && p >= 1 {
		page = p
	}

	if l, err := strconv.ParseInt(strings.TrimSpace(limitStr), 10, 64); err == nil && l >= 1 {
		limit = l
	}
	if limit > service.MaxLimit {
		limit = service.MaxLimit
	}

	return page, limit
}
