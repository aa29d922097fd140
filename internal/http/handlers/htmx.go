package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v5"
)

const (
	headerHXRequest  = "HX-Request"
	headerHXTarget   = "HX-Target"
	headerHXRedirect = "HX-Redirect"
)

// hxHeaders is what htmx tells us about a request.
type hxHeaders struct {
	Request bool
	Target  string
}

func hxFrom(c *echo.Context) hxHeaders {
	if c == nil || c.Request() == nil {
		return hxHeaders{}
	}
	header := c.Request().Header
	return hxHeaders{
		Request: strings.EqualFold(strings.TrimSpace(header.Get(headerHXRequest)), "true"),
		Target:  strings.TrimSpace(header.Get(headerHXTarget)),
	}
}

func isHX(c *echo.Context) bool {
	return hxFrom(c).Request
}

// isHXTarget reports an htmx request that swaps the element with id target.
func isHXTarget(c *echo.Context, target string) bool {
	hx := hxFrom(c)
	return hx.Request && strings.EqualFold(hx.Target, strings.TrimSpace(target))
}

func setHXRedirect(c *echo.Context, url string) {
	c.Response().Header().Set(headerHXRedirect, url)
}

// addVary merges values into the Vary header without duplicates. A wildcard
// Vary is left alone.
func addVary(c *echo.Context, values ...string) {
	if c == nil || len(values) == 0 {
		return
	}
	header := c.Response().Header()

	var tokens []string
	for _, line := range append(header.Values(echo.HeaderVary), values...) {
		for _, token := range strings.Split(line, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if token == "*" {
				header.Set(echo.HeaderVary, "*")
				return
			}
			token = http.CanonicalHeaderKey(token)
			if !slices.Contains(tokens, token) {
				tokens = append(tokens, token)
			}
		}
	}
	if len(tokens) > 0 {
		header.Set(echo.HeaderVary, strings.Join(tokens, ", "))
	}
}
