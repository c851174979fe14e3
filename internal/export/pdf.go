package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

const pdfFontFamily = "body"

// PDFRenderer lays the book out on A4 pages, one chapter per page
type PDFRenderer struct {
	FontPath string
}

func (r *PDFRenderer) Render(w io.Writer, book *types.BookContent) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(book.Title, true)
	pdf.SetAuthor(book.Author, true)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.FontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", r.FontPath)
		pdf.AddUTF8Font(pdfFontFamily, "B", r.FontPath)
		family = pdfFontFamily
		tr = func(s string) string { return s }
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 22)
	pdf.MultiCell(0, 10, tr(book.Title), "", "C", false)
	if book.Author != "" {
		pdf.Ln(4)
		pdf.SetFont(family, "", 13)
		pdf.MultiCell(0, 7, tr(book.Author), "", "C", false)
	}

	for _, ch := range book.Chapters {
		pdf.AddPage()
		pdf.SetFont(family, "B", 15)
		pdf.MultiCell(0, 8, tr(ch.Title), "", "L", false)
		pdf.Ln(3)

		pdf.SetFont(family, "", 11)
		for _, para := range paragraphs(ch.Content) {
			pdf.MultiCell(0, 5.5, tr(para), "", "L", false)
			pdf.Ln(2)
		}
	}

	return pdf.Output(w)
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Extension() string { return ".pdf" }
