package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/swagsync/swagsync/endpoints"
	"github.com/swagsync/swagsync/merge"
	"github.com/swagsync/swagsync/spec"
)

// Formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatXML      = "xml"
)

// Summary is one scan's coverage accounting. Ignored routes are excluded
// from the endpoint count and therefore from the coverage denominator.
type Summary struct {
	XMLName xml.Name `json:"-" xml:"coverage"`

	Endpoints  int `json:"endpoints" xml:"endpoints"`
	Documented int `json:"documented" xml:"documented"`
	Ignored    int `json:"ignored" xml:"ignored"`
	Components int `json:"components" xml:"components"`

	OrphanOperations []string `json:"orphanOperations,omitempty" xml:"orphanOperations>operation,omitempty"`
	OrphanComponents []string `json:"orphanComponents,omitempty" xml:"orphanComponents>component,omitempty"`

	// Percent is documented/endpoints as a percentage, rounded to one
	// decimal. An empty scan counts as fully covered.
	Percent float64 `json:"percent" xml:"percent"`
}

// Build computes the coverage summary for a document against scan results.
// An endpoint counts as documented when the document carries an operation at
// its path and method.
func Build(doc *spec.Document, scan *endpoints.Result, components map[string]*spec.Schema) Summary {
	s := Summary{
		Endpoints:  len(scan.Endpoints),
		Ignored:    len(scan.Ignored),
		Components: len(components),
	}
	for _, ep := range scan.Endpoints {
		if doc.Operation(ep.Path, ep.Method) != nil {
			s.Documented++
		}
	}

	orphanPaths, orphanComponents := merge.DetectOrphans(doc, scan.Endpoints, components)
	for _, o := range orphanPaths {
		s.OrphanOperations = append(s.OrphanOperations, strings.ToUpper(o.Method)+" "+o.Path)
	}
	s.OrphanComponents = orphanComponents

	if s.Endpoints == 0 {
		s.Percent = 100
	} else {
		s.Percent = math.Round(float64(s.Documented)/float64(s.Endpoints)*1000) / 10
	}
	return s
}

// Render writes the summary in the requested format.
func Render(w io.Writer, format string, s Summary) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, s)
	case FormatText:
		return RenderText(w, s)
	case FormatMarkdown:
		return RenderMarkdown(w, s)
	case FormatXML:
		return RenderXML(w, s)
	default:
		return fmt.Errorf("unknown report format: %q", format)
	}
}

// RenderJSON writes the summary as indented JSON.
func RenderJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// RenderXML writes the summary as an XML document.
func RenderXML(w io.Writer, s Summary) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

var titleCaser = cases.Title(language.English)

// RenderText writes a human-readable summary.
func RenderText(w io.Writer, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Coverage: %.1f%% (%d/%d endpoints documented)\n", s.Percent, s.Documented, s.Endpoints)
	fmt.Fprintf(&b, "Ignored routes: %d\n", s.Ignored)
	fmt.Fprintf(&b, "Components: %d\n", s.Components)
	writeTextSection(&b, "orphan operations", s.OrphanOperations)
	writeTextSection(&b, "orphan components", s.OrphanComponents)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", titleCaser.String(title))
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// RenderMarkdown writes the summary as a markdown fragment suitable for a
// pull-request comment or docs page.
func RenderMarkdown(w io.Writer, s Summary) error {
	var b strings.Builder
	b.WriteString("## API Documentation Coverage\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %.1f%% |\n", titleCaser.String("coverage"), s.Percent)
	fmt.Fprintf(&b, "| %s | %d/%d |\n", titleCaser.String("documented endpoints"), s.Documented, s.Endpoints)
	fmt.Fprintf(&b, "| %s | %d |\n", titleCaser.String("ignored routes"), s.Ignored)
	fmt.Fprintf(&b, "| %s | %d |\n", titleCaser.String("components"), s.Components)
	writeMarkdownSection(&b, "orphan operations", s.OrphanOperations)
	writeMarkdownSection(&b, "orphan components", s.OrphanComponents)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", titleCaser.String(title))
	for _, item := range items {
		fmt.Fprintf(b, "- `%s`\n", item)
	}
}
