package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/protocol"
)

// NoteParser is the subset of *parser.Parser the clinical MCP tools depend
// on. It is satisfied directly by *parser.Parser and also by
// *cache.CachedParser, so the lite server can hand tools a memoizing parser
// without this package importing the cache package.
type NoteParser interface {
	ParseNote(ctx context.Context, text string, opts domain.Options) (domain.ParsedNote, error)
	ParseAndRender(ctx context.Context, text string, opts domain.Options) (domain.ParsedNote, domain.RenderedNote, error)
}

// ParseClinicalNoteTool implements the parse_clinical_note MCP tool.
type ParseClinicalNoteTool struct {
	logger *logrus.Logger
	parser NoteParser
}

// ParseClinicalNoteParams defines parameters for parse_clinical_note.
type ParseClinicalNoteParams struct {
	Text            string `json:"text" validate:"required"`
	Locale          string `json:"locale_units,omitempty"`
	IncludeUnmapped bool   `json:"include_unmapped,omitempty"`
}

// NewParseClinicalNoteTool creates a new parse_clinical_note tool.
func NewParseClinicalNoteTool(logger *logrus.Logger, p NoteParser) *ParseClinicalNoteTool {
	return &ParseClinicalNoteTool{logger: logger, parser: p}
}

func (t *ParseClinicalNoteTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	start := time.Now()

	var params ParseClinicalNoteParams
	if err := ParseParams(req.Params, &params); err != nil || params.Text == "" {
		return &protocol.JSONRPC2Response{Error: &protocol.RPCError{
			Code: protocol.InvalidParams, Message: "Invalid parameters", Data: errString(err, "text is required"),
		}}
	}

	opts := domain.DefaultOptions()
	if params.Locale == "si" {
		opts.LocaleUnits = domain.LocaleSI
	}
	opts.IncludeUnmapped = params.IncludeUnmapped

	parsed, err := t.parser.ParseNote(ctx, params.Text, opts)
	if err != nil {
		return &protocol.JSONRPC2Response{Error: &protocol.RPCError{
			Code: protocol.MCPToolError, Message: "Parse failed", Data: err.Error(),
		}}
	}

	t.logger.WithFields(logrus.Fields{
		"diagnoses":       len(parsed.Diagnoses),
		"warnings":        len(parsed.SafetyWarnings),
		"processing_time": time.Since(start).String(),
	}).Info("parse_clinical_note completed")

	return &protocol.JSONRPC2Response{Result: map[string]interface{}{"parsed_note": parsed}}
}

func (t *ParseClinicalNoteTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "parse_clinical_note",
		Description: "Parse a free-text cardiology clinical note into structured sections, vitals, labs, medications, allergies, and diagnoses with safety validation",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw clinical note text",
				},
				"locale_units": map[string]interface{}{
					"type":        "string",
					"description": "Unit locale for vitals rendering",
					"enum":        []string{"us", "si"},
				},
				"include_unmapped": map[string]interface{}{
					"type":        "boolean",
					"description": "Include an appendix of text that did not map to a known section",
					"default":     false,
				},
			},
			"required": []string{"text"},
		},
	}
}

func (t *ParseClinicalNoteTool) ValidateParams(params interface{}) error {
	var p ParseClinicalNoteParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.Text == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// RenderNoteTool implements the render_note MCP tool.
type RenderNoteTool struct {
	logger *logrus.Logger
	parser NoteParser
}

// RenderNoteParams defines parameters for render_note. The caller supplies the
// text again (render is stateless across calls) along with a template choice.
type RenderNoteParams struct {
	Text       string `json:"text" validate:"required"`
	TemplateID string `json:"template_id,omitempty"`
}

func NewRenderNoteTool(logger *logrus.Logger, p NoteParser) *RenderNoteTool {
	return &RenderNoteTool{logger: logger, parser: p}
}

func (t *RenderNoteTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params RenderNoteParams
	if err := ParseParams(req.Params, &params); err != nil || params.Text == "" {
		return &protocol.JSONRPC2Response{Error: &protocol.RPCError{
			Code: protocol.InvalidParams, Message: "Invalid parameters", Data: errString(err, "text is required"),
		}}
	}

	opts := domain.DefaultOptions()
	switch params.TemplateID {
	case "consult":
		opts.TemplateID = domain.TemplateConsult
	case "progress":
		opts.TemplateID = domain.TemplateProgress
	default:
		opts.TemplateID = domain.TemplateCIS
	}

	_, rendered, err := t.parser.ParseAndRender(ctx, params.Text, opts)
	if err != nil {
		return &protocol.JSONRPC2Response{Error: &protocol.RPCError{
			Code: protocol.MCPToolError, Message: "Render failed", Data: err.Error(),
		}}
	}

	return &protocol.JSONRPC2Response{Result: map[string]interface{}{"rendered_note": rendered}}
}

func (t *RenderNoteTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "render_note",
		Description: "Parse a clinical note and render it into a CIS, Consult, or Progress note template",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text":        map[string]interface{}{"type": "string", "description": "Raw clinical note text"},
				"template_id": map[string]interface{}{"type": "string", "enum": []string{"cis", "consult", "progress"}},
			},
			"required": []string{"text"},
		},
	}
}

func (t *RenderNoteTool) ValidateParams(params interface{}) error {
	var p RenderNoteParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.Text == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

func errString(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
