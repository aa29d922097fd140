// Package views renders pages as templ components.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

// htmlWriter accumulates the first write error so render functions can emit
// markup without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newHTMLWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// text writes escaped text content.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with the value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes a sanitized href attribute.
func (h *htmlWriter) href(value string) {
	h.attr("href", string(templ.URL(value)))
}

// boolAttr writes name when on is set.
func (h *htmlWriter) boolAttr(name string, on bool) {
	if on {
		h.raw(" ", name)
	}
}

// element writes <tag class="...">text</tag>.
func (h *htmlWriter) element(tag, class, content string) {
	h.raw("<", tag)
	if class != "" {
		h.attr("class", class)
	}
	h.raw(">")
	h.text(content)
	h.raw("</", tag, ">")
}

// component renders a nested component into the same writer.
func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// page renders body as the children of the layout.
func page(layout viewmodels.LayoutData, body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(layout).Render(templ.WithChildren(ctx, fragment(body)), w)
	})
}

// fragment renders body without the layout.
func fragment(body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		body(h)
		return h.err
	})
}
