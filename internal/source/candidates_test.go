package source

import (
	"testing"
)

func TestAutoDetect(t *testing.T) {
	page := `<html><body>
<h2>Site Name</h2>
<div id="content" class="content">text</div>
<ul class="chapters"><li><a href="/c/1">1</a></li></ul>
</body></html>`

	cfg := AutoDetect(mustDoc(t, page), "https://site.example", DefaultCandidates())

	if cfg.ContentSelector != "div.content" {
		t.Errorf("Expected content selector 'div.content', got %q", cfg.ContentSelector)
	}
	if cfg.ChapterListSelector != "ul.chapters a" {
		t.Errorf("Expected chapter selector 'ul.chapters a', got %q", cfg.ChapterListSelector)
	}
	if cfg.TitleSelector != "h2" {
		t.Errorf("Expected title selector 'h2', got %q", cfg.TitleSelector)
	}
	if cfg.Enabled {
		t.Error("Detected source must not be enabled")
	}
	if cfg.ID != "" {
		t.Errorf("Expected empty id, got %q", cfg.ID)
	}
	if cfg.Name != "auto-detected" || cfg.BaseURL != "https://site.example" {
		t.Errorf("Unexpected name/base url %q/%q", cfg.Name, cfg.BaseURL)
	}
	if cfg.SearchPathPattern != "/search?q={keyword}" || cfg.BookURLSelector != "a@href" {
		t.Errorf("Unexpected fixed fields %+v", cfg)
	}
}

func TestAutoDetect_Defaults(t *testing.T) {
	cfg := AutoDetect(mustDoc(t, `<html><body><p>nothing</p></body></html>`), "https://site.example", DefaultCandidates())

	if cfg.ContentSelector != "div" || cfg.ChapterListSelector != "a" || cfg.TitleSelector != "h1" {
		t.Errorf("Expected fallback selectors, got %q %q %q", cfg.ContentSelector, cfg.ChapterListSelector, cfg.TitleSelector)
	}

	nilDoc := AutoDetect(nil, "", DefaultCandidates())
	if nilDoc.ContentSelector != "div" {
		t.Errorf("Expected fallback for nil document, got %q", nilDoc.ContentSelector)
	}
}

func TestAutoDetect_CustomCandidates(t *testing.T) {
	c := DefaultCandidates()
	c.Content = []string{"article.body"}
	c.DefaultContent = "main"

	cfg := AutoDetect(mustDoc(t, `<article class="body">x</article>`), "https://site.example", c)
	if cfg.ContentSelector != "article.body" {
		t.Errorf("Expected custom candidate, got %q", cfg.ContentSelector)
	}
}

func TestSplitAttr(t *testing.T) {
	tests := []struct {
		expr     string
		selector string
		attr     string
	}{
		{"a@href", "a", "href"},
		{"img.cover @ data-src", "img.cover @ data-src", "href"},
		{"img.cover@data-src", "img.cover", "data-src"},
		{"a", "a", "href"},
		{"a[href*='@']", "a[href*='@']", "href"},
		{"", "", "href"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			selector, attr := splitAttr(tt.expr)
			if selector != tt.selector || attr != tt.attr {
				t.Errorf("splitAttr(%q) = %q, %q; expected %q, %q", tt.expr, selector, attr, tt.selector, tt.attr)
			}
		})
	}
}
