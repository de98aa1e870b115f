package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func writeTable(w io.Writer, doc *Document) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", doc.Title, header(doc)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(doc.Columns, "\t")+"\t")
	for _, row := range doc.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

func header(doc *Document) string {
	parts := []string{"run " + doc.RunID.Short()}
	if doc.Source != "" {
		parts = append(parts, "source "+doc.Source)
	}
	parts = append(parts, doc.Notes...)
	return strings.Join(parts, " | ")
}

// Markdown renders doc as a heading, metadata line and pipe table
func Markdown(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", doc.Title)
	fmt.Fprintf(&b, "_%s_\n\n", escapeMarkdown(header(doc)))

	b.WriteString("|")
	for _, c := range doc.Columns {
		b.WriteString(" " + escapeMarkdown(c) + " |")
	}
	b.WriteString("\n|")
	for range doc.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range doc.Rows {
		b.WriteString("|")
		for _, v := range row {
			b.WriteString(" " + escapeMarkdown(formatCell(v)) + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown form of doc as a standalone page
func HTML(doc *Document) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: doc.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(doc)), p, renderer)
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "_", "\\_", "*", "\\*")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
