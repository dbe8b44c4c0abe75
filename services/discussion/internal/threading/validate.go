package threading

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/example/discussion-platform/services/discussion/internal/store"
)

// Sanitizer cleans user text before it is validated and stored.
type Sanitizer interface {
	Title(s string) string
	Content(s string) string
}

// HTMLSanitizer strips all markup from titles and keeps safe user markup in content.
type HTMLSanitizer struct {
	title   *bluemonday.Policy
	content *bluemonday.Policy
}

func NewHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{
		title:   bluemonday.StrictPolicy(),
		content: bluemonday.UGCPolicy(),
	}
}

func (h *HTMLSanitizer) Title(s string) string {
	return strings.TrimSpace(h.title.Sanitize(s))
}

func (h *HTMLSanitizer) Content(s string) string {
	return strings.TrimSpace(h.content.Sanitize(s))
}

type checker struct {
	err store.ValidationError
}

func (c *checker) text(field, v string) {
	if v == "" {
		c.err.Add(field, "must not be blank")
	}
}

func (c *checker) id(field string, v int64) {
	if v <= 0 {
		c.err.Add(field, "is required")
	}
}

func (c *checker) result() error {
	return c.err.OrNil()
}
