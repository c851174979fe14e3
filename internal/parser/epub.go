package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/unalkalkan/NovelReader/internal/segmenter"
	"github.com/unalkalkan/NovelReader/internal/textutil"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// UnreadableContent is the body of the placeholder chapter of an EPUB with an
// empty spine
const UnreadableContent = "unable to read chapter content"

const ncxMediaType = "application/x-dtbncx+xml"

// EPUBParser parses ePUB files. Each spine document becomes one chapter,
// titled from the NCX table of contents when it has an entry. Documents
// without text are kept with empty content.
type EPUBParser struct{}

// NewEPUBParser creates a new ePUB parser
func NewEPUBParser() *EPUBParser {
	return &EPUBParser{}
}

// Parse extracts chapters and metadata from an ePUB file
func (p *EPUBParser) Parse(ctx context.Context, name string, data []byte) (*types.BookContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(r.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	book := r.Rootfiles[0]

	content := &types.BookContent{
		Title:  strings.TrimSpace(book.Title),
		Author: strings.TrimSpace(book.Creator),
	}
	if content.Title == "" {
		content.Title = titleFromName(name)
	}
	if content.Author == "" {
		content.Author = UnknownAuthor
	}

	titles := tocTitles(data, book)

	for i, ref := range book.Spine.Itemrefs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Unreadable or blank documents stay as empty chapters so that
		// indices follow the spine.
		title := fmt.Sprintf("Chapter %d", i+1)
		text := ""
		if ref.Item != nil {
			if t, err := readItemText(ref.Item); err == nil {
				text = t
			}
			if t, ok := titles[ref.Item.HREF]; ok {
				title = t
			} else if t, ok := titles[path.Base(ref.Item.HREF)]; ok {
				title = t
			}
		}

		content.Chapters = append(content.Chapters, types.Chapter{
			Index:   i,
			Title:   title,
			Content: text,
		})
	}

	if len(content.Chapters) == 0 {
		content.Chapters = []types.Chapter{{
			Index:   0,
			Title:   segmenter.DefaultFallbackTitle,
			Content: UnreadableContent,
		}}
	}

	return content, nil
}

func readItemText(item *epub.Item) (string, error) {
	rc, err := item.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return textutil.HTMLBlockText(textutil.Decode(raw)), nil
}

// NCX structures, only the parts needed to map documents to titles
type ncx struct {
	NavMap struct {
		NavPoints []navPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type navPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

// tocTitles maps spine document paths to their first NCX title. Keys are
// stored both as archive paths and as base names. Missing or malformed NCX
// data yields an empty map.
func tocTitles(data []byte, book *epub.Rootfile) map[string]string {
	titles := make(map[string]string)

	ncxPath := ""
	for _, item := range book.Manifest.Items {
		if item.MediaType == ncxMediaType {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		return titles
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return titles
	}
	var raw []byte
	for _, f := range zr.File {
		if f.Name == ncxPath || path.Base(f.Name) == path.Base(ncxPath) {
			if raw, err = readZipFile(f); err != nil {
				return titles
			}
			break
		}
	}
	if raw == nil {
		return titles
	}

	var toc ncx
	if err := xml.Unmarshal(raw, &toc); err != nil {
		return titles
	}

	dir := path.Dir(ncxPath)
	add := func(key, title string) {
		if _, exists := titles[key]; !exists {
			titles[key] = title
		}
	}
	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			title := strings.TrimSpace(np.Label.Text)
			src := np.Content.Src
			if i := strings.Index(src, "#"); i >= 0 {
				src = src[:i]
			}
			if title != "" && src != "" {
				add(path.Join(dir, src), title)
				add(path.Base(src), title)
			}
			walk(np.Children)
		}
	}
	walk(toc.NavMap.NavPoints)

	return titles
}

// SupportedFormats returns the formats this parser supports
func (p *EPUBParser) SupportedFormats() []types.FileType {
	return []types.FileType{types.FileTypeEPUB}
}
