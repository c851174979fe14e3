package types

// SourceConfig describes how to talk to one content site: URL templates plus CSS selectors.
// Empty selectors are never executed; their fields are reported as unknown.
type SourceConfig struct {
	ID                  string `yaml:"id" json:"id"`
	Name                string `yaml:"name" json:"name"`
	BaseURL             string `yaml:"base_url" json:"base_url"`
	SearchPathPattern   string `yaml:"search_path_pattern" json:"search_path_pattern"` // contains {keyword}
	ChapterListSelector string `yaml:"chapter_list_selector" json:"chapter_list_selector"`
	ContentSelector     string `yaml:"content_selector" json:"content_selector"`
	TitleSelector       string `yaml:"title_selector" json:"title_selector"`
	AuthorSelector      string `yaml:"author_selector" json:"author_selector"`
	BookURLSelector     string `yaml:"book_url_selector" json:"book_url_selector"` // "a" or "a@href"
	BookItemSelector    string `yaml:"book_item_selector" json:"book_item_selector"`
	Enabled             bool   `yaml:"enabled" json:"enabled"`
}

// SearchResult is one book found on a source's search page
type SearchResult struct {
	BookID      string `json:"book_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	SourceID    string `json:"source_id"`
	SourceName  string `json:"source_name"`
	BookURL     string `json:"book_url"`
}

// BookInfo holds book metadata scraped from a book page
type BookInfo struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// ChapterInfo is one entry of a scraped chapter list
type ChapterInfo struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
