package service

import (
	"strings"
	"testing"
)

func TestRenderMarkdownBasic(t *testing.T) {
	out := RenderMarkdown("# Heading\n\nSome *emphasis* here.")
	if !strings.Contains(out, "<h1") {
		t.Fatalf("expected a heading element, got %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Fatalf("expected emphasis markup, got %q", out)
	}
}

func TestRenderMarkdownSanitizesScripts(t *testing.T) {
	out := RenderMarkdown("hello <script>alert('xss')</script> world")
	if strings.Contains(out, "<script") {
		t.Fatalf("script tag survived sanitization: %q", out)
	}

	out = RenderMarkdown(`[click](javascript:alert(1))`)
	if strings.Contains(strings.ToLower(out), "javascript:") {
		t.Fatalf("javascript href survived sanitization: %q", out)
	}
}
