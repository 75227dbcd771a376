// Package sanitize cleans model-generated HTML before it reaches a browser.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy is safe for concurrent use once built.
type Policy struct {
	p *bluemonday.Policy
}

// New returns a policy allowing user-generated-content markup
// (paragraphs, headings, lists, emphasis, links) and nothing executable.
func New() *Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return &Policy{p: p}
}

// HTML strips a surrounding markdown fence and removes disallowed markup.
func (p *Policy) HTML(s string) string {
	return strings.TrimSpace(p.p.Sanitize(StripFence(s)))
}

// Passthrough only strips the markdown fence.
type Passthrough struct{}

// HTML implements the sanitizer interface without filtering.
func (Passthrough) HTML(s string) string {
	return StripFence(s)
}

// StripFence removes a ```html ... ``` wrapper some models add.
func StripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		t = ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}
