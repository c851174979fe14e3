// Package segmenter splits unstructured book text into titled chapters by
// matching whole lines against heading patterns.
package segmenter

import (
	"regexp"
	"strings"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

const (
	// DefaultPrologueTitle names the text that precedes the first heading
	DefaultPrologueTitle = "prologue"
	// DefaultFallbackTitle names the single chapter emitted when nothing was segmented
	DefaultFallbackTitle = "body text"
)

// DefaultHeadingPatterns are tested in order against each trimmed line.
// A line is a heading only if a pattern matches it completely.
var DefaultHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^第[零一二三四五六七八九十百千0-9]+章\s*.+$`),
	regexp.MustCompile(`^Chapter\s*[0-9]+\s*.+$`),
	regexp.MustCompile(`^第\s*[0-9]+\s*章$`),
}

// Options overrides the segmentation defaults. Zero values select the defaults.
type Options struct {
	PrologueTitle   string
	FallbackTitle   string
	HeadingPatterns []*regexp.Regexp
}

func (o Options) withDefaults() Options {
	if o.PrologueTitle == "" {
		o.PrologueTitle = DefaultPrologueTitle
	}
	if o.FallbackTitle == "" {
		o.FallbackTitle = DefaultFallbackTitle
	}
	if len(o.HeadingPatterns) == 0 {
		o.HeadingPatterns = DefaultHeadingPatterns
	}
	return o
}

// Segment splits text into chapters using the default options
func Segment(text string) []types.Chapter {
	return Options{}.Segment(text)
}

// IsHeading reports whether a line is a chapter heading under the default patterns
func IsHeading(line string) bool {
	return Options{}.withDefaults().isHeading(strings.TrimSpace(line))
}

// Segment splits text into an ordered, contiguously indexed list of chapters.
//
// A heading line closes the chapter being accumulated and becomes the title of
// the next one. A heading seen while nothing has been accumulated yet does not
// open an empty chapter: the line is kept as body text and the pending title is
// unchanged. The result always holds at least one chapter.
func (o Options) Segment(text string) []types.Chapter {
	o = o.withDefaults()

	chapters := make([]types.Chapter, 0)
	title := o.PrologueTitle
	var body strings.Builder

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if o.isHeading(trimmed) && body.Len() > 0 {
			chapters = append(chapters, types.Chapter{
				Index:   len(chapters),
				Title:   title,
				Content: strings.TrimSpace(body.String()),
			})
			body.Reset()
			title = trimmed
			continue
		}

		body.WriteString(line)
		body.WriteByte('\n')
	}

	// A blank tail still closes the last titled chapter, but blank input alone
	// goes to the fallback below.
	if body.Len() > 0 && (len(chapters) > 0 || strings.TrimSpace(body.String()) != "") {
		chapters = append(chapters, types.Chapter{
			Index:   len(chapters),
			Title:   title,
			Content: strings.TrimSpace(body.String()),
		})
	}

	if len(chapters) == 0 {
		chapters = append(chapters, types.Chapter{
			Index:   0,
			Title:   o.FallbackTitle,
			Content: text,
		})
	}

	return chapters
}

func (o Options) isHeading(line string) bool {
	if line == "" {
		return false
	}
	for _, p := range o.HeadingPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
