package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
)

// parsePageParam reads the zero-based page query parameter.
func parsePageParam(c *echo.Context) int {
	page := 0
	if rawPage := strings.TrimSpace(c.QueryParam("page")); rawPage != "" {
		if parsed, err := strconv.Atoi(rawPage); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

// pageLinks returns the previous/next hrefs. An empty href disables the link.
func pageLinks(page int, hasPrev, hasNext bool, hrefFor func(int) string) (prev, next string) {
	if hasPrev && page > 0 {
		prev = hrefFor(page - 1)
	}
	if hasNext {
		next = hrefFor(page + 1)
	}
	return prev, next
}

func parseUintParam(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
