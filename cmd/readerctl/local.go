package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/NovelReader/internal/export"
	"github.com/unalkalkan/NovelReader/internal/parser"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

var (
	flagFormat   string
	flagOutput   string
	flagFontPath string
	flagNoSave   bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Parse a TXT, EPUB or MOBI file and add it to the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Parse a book file and write it as Markdown, JSON or PDF",
	Example: `  readerctl export novel.txt --format md
  readerctl export novel.epub --format pdf --output novel.pdf --font NotoSansSC.ttf`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().BoolVar(&flagNoSave, "dry-run", false, "Print the chapters without saving the book")

	exportCmd.Flags().StringVar(&flagFormat, "format", "md", "Output format: md, json or pdf")
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default: stdout, or <title>.pdf for PDF)")
	exportCmd.Flags().StringVar(&flagFontPath, "font", "", "TrueType font for PDF output")
}

func parseLocalFile(cmd *cobra.Command, path string) (*types.BookContent, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	content, err := parser.ParseFile(cmd.Context(), parser.NewFactory(), filepath.Base(path), data)
	if err != nil {
		return nil, nil, err
	}
	return content, data, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	content, data, err := parseLocalFile(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s by %s (%d chapters)\n", content.Title, content.Author, len(content.Chapters))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, ch := range content.Chapters {
		fmt.Fprintf(tw, "%d\t%s\t%d chars\n", ch.Index, ch.Title, len([]rune(ch.Content)))
	}
	tw.Flush()

	if flagNoSave {
		return nil
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	format, _ := types.FileTypeFromName(args[0])
	now := time.Now()
	book := &types.Book{
		ID:            fmt.Sprintf("book_%d", now.UnixNano()),
		Title:         content.Title,
		Author:        content.Author,
		FilePath:      args[0],
		FileType:      format,
		TotalChapters: len(content.Chapters),
		AddedAt:       now,
		LastReadAt:    now,
	}

	ctx := cmd.Context()
	if err := e.repo.SaveRawFile(ctx, book.ID, data, format); err != nil {
		return err
	}
	if err := e.repo.SaveChapters(ctx, book.ID, content.Chapters); err != nil {
		return err
	}
	if err := e.repo.SaveBook(ctx, book); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved as %s\n", book.ID)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	renderer, err := export.NewRenderer(format, export.Options{FontPath: flagFontPath})
	if err != nil {
		return err
	}

	content, _, err := parseLocalFile(cmd, args[0])
	if err != nil {
		return err
	}

	output := flagOutput
	if output == "" && format == export.FormatPDF {
		output = export.FileName(content, renderer)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := renderer.Render(w, content); err != nil {
		return fmt.Errorf("failed to render %s: %w", strings.TrimPrefix(renderer.Extension(), "."), err)
	}
	if output != "" && output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
	}
	return nil
}
