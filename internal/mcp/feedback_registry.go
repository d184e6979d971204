// Package mcp provides the MCP server implementation.
// This file contains shared feedback tool registration logic.
package mcp

import (
	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/feedback"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/protocol"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/tools"
)

// registerFeedbackTools registers feedback-related MCP tools.
func registerFeedbackTools(registry *tools.ToolRegistry, logger *logrus.Logger, store feedback.Store, exportDir string) error {
	feedbackTools := map[string]protocol.ToolHandler{
		"submit_feedback": tools.NewSubmitFeedbackTool(logger, store),
		"query_feedback":  tools.NewQueryFeedbackTool(logger, store),
		"list_feedback":   tools.NewListFeedbackTool(logger, store),
		"export_feedback": tools.NewExportFeedbackTool(logger, store, exportDir),
		"import_feedback": tools.NewImportFeedbackTool(logger, store),
	}

	for name, tool := range feedbackTools {
		registry.Router().RegisterToolHandler(name, tool)
		logger.WithField("tool_name", name).Debug("Registered feedback tool")
	}

	return nil
}
