// Command parsecli parses a clinical note from a file or stdin and prints
// the parsed structure and/or a rendered template to stdout. It is a thin
// wrapper around internal/parser for local use and scripting, independent
// of the HTTP and MCP hosts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/parser"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("parsecli", flag.ContinueOnError)

	refDir := fs.String("data-dir", "data", "directory holding the reference JSON tables")
	inputPath := fs.String("in", "", "path to the note text (defaults to stdin)")
	templateID := fs.String("template", string(domain.TemplateCIS), "render template: CIS, Consult, or Progress")
	localeUnits := fs.String("locale-units", string(domain.LocaleUS), "unit system for rendering: US or SI")
	smartPhrase := fs.Bool("smartphrase", false, "expand the .vitals smart phrase when rendering")
	includeUnmapped := fs.Bool("include-unmapped", true, "keep unrecognized lines as unmapped content")
	renderOnly := fs.Bool("render-only", false, "print only the rendered note text, not the parsed JSON")
	jsonOnly := fs.Bool("json-only", false, "print only the parsed note JSON, skip rendering")

	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := readInput(*inputPath, stdin)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	tables, err := reference.Load(*refDir)
	if err != nil {
		return fmt.Errorf("loading reference tables: %w", err)
	}
	p := parser.New(tables)

	opts, err := domain.Options{
		TemplateID:      domain.TemplateID(*templateID),
		LocaleUnits:     domain.LocaleUnits(*localeUnits),
		SmartPhrase:     *smartPhrase,
		IncludeUnmapped: *includeUnmapped,
	}.Normalize()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	ctx := context.Background()

	if *jsonOnly {
		parsed, err := p.ParseNote(ctx, text, opts)
		if err != nil {
			return fmt.Errorf("parsing note: %w", err)
		}
		return writeJSON(stdout, parsed)
	}

	parsed, rendered, err := p.ParseAndRender(ctx, text, opts)
	if err != nil {
		return fmt.Errorf("parsing note: %w", err)
	}

	if *renderOnly {
		fmt.Fprintln(stdout, rendered.Text)
		return nil
	}

	return writeJSON(stdout, struct {
		Parsed   domain.ParsedNote   `json:"parsed_note"`
		Rendered domain.RenderedNote `json:"rendered_note"`
	}{parsed, rendered})
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
