// Package paging implements the link-based cursors of paged pull operations
// and the offset/limit headers of paged push responses.
package paging

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	HeaderTotalCount = "X-Total-Count"
	HeaderLimit      = "X-Limit"
)

// ParseNextLink extracts the absolute "next" URL from a Link response header.
// An empty result means the last page was reached.
func ParseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			return ""
		}
		return part[start+1 : end]
	}
	return ""
}

// NextLink computes the absolute "next" URL for a served page, or empty when
// the addressed window already covers the remainder.
func NextLink(requestUrl *url.URL, offset, limit, total int) string {
	if offset+limit >= total {
		return ""
	}
	next := *requestUrl
	query := next.Query()
	query.Set("offset", strconv.Itoa(offset+limit))
	query.Set("limit", strconv.Itoa(limit))
	next.RawQuery = query.Encode()
	return next.String()
}

// ParseWindow reads offset/limit query parameters, clamping the limit to the
// configured maximum page size.
func ParseWindow(r *http.Request, maxLimit int) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}

// WriteListHeaders sets the page headers and, when another page follows, the
// Link header carrying the "next" cursor.
func WriteListHeaders(w http.ResponseWriter, r *http.Request, offset, limit, total int) {
	w.Header().Set(HeaderTotalCount, strconv.Itoa(total))
	w.Header().Set(HeaderLimit, strconv.Itoa(limit))
	if next := NextLink(r.URL, offset, limit, total); next != "" {
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}
}

// Window slices [offset, offset+limit) out of a mapped result set.
func Window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
