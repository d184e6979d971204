package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/mcp/logging"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/protocol"
)

// ToolRegistry manages registration of all MCP tools
type ToolRegistry struct {
	logger    *logrus.Logger
	router    *protocol.MessageRouter
	parser    NoteParser
	opLogger  *logging.MCPLogger
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry(logger *logrus.Logger, router *protocol.MessageRouter, p NoteParser) *ToolRegistry {
	return &ToolRegistry{
		logger: logger,
		router: router,
		parser: p,
		opLogger: logging.NewMCPLogger(logging.MCPLoggingConfig{
			Level:             logger.GetLevel().String(),
			Format:            "json",
			EnableCorrelation: true,
			EnablePrivacyMode: true,
		}),
	}
}

// RegisterAllTools registers the clinical note parsing tools with the MCP router
func (tr *ToolRegistry) RegisterAllTools() error {
	tr.logger.Info("Registering clinical note parsing tools")

	tr.router.RegisterToolHandler("parse_clinical_note", NewParseClinicalNoteTool(tr.logger, tr.parser))
	tr.logger.Debug("Registered parse_clinical_note tool")

	tr.router.RegisterToolHandler("render_note", NewRenderNoteTool(tr.logger, tr.parser))
	tr.logger.Debug("Registered render_note tool")

	tr.logger.Info("Successfully registered all clinical note tools")
	return nil
}

// ExecuteTool looks up the handler registered under req.Method and invokes it.
// It is the entry point used by the MCP SDK transport bridge, which only
// knows about JSON-RPC2 shaped requests and has no visibility into how tools
// are registered.
func (tr *ToolRegistry) ExecuteTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	params, _ := req.Params.(map[string]interface{})
	ctx, opID := tr.opLogger.StartOperation(ctx, logging.OperationToolCall, req.Method, params)

	handler, ok := tr.router.GetToolHandler(req.Method)
	if !ok {
		err := fmt.Errorf("unknown tool: %s", req.Method)
		tr.opLogger.EndOperation(ctx, opID, false, 0, err)
		return &protocol.JSONRPC2Response{
			Error: &protocol.RPCError{
				Code:    protocol.MethodNotFound,
				Message: err.Error(),
			},
		}
	}

	if err := handler.ValidateParams(req.Params); err != nil {
		tr.opLogger.EndOperation(ctx, opID, false, 0, err)
		return &protocol.JSONRPC2Response{
			Error: &protocol.RPCError{
				Code:    protocol.InvalidParams,
				Message: err.Error(),
			},
		}
	}

	resp := handler.HandleTool(ctx, req)
	if resp.Error != nil {
		tr.opLogger.EndOperation(ctx, opID, false, 0, fmt.Errorf("%s", resp.Error.Message))
	} else {
		tr.opLogger.EndOperation(ctx, opID, true, estimateResultSize(resp.Result), nil)
	}
	return resp
}

func estimateResultSize(result interface{}) int {
	if s, ok := result.(string); ok {
		return len(s)
	}
	if result == nil {
		return 0
	}
	return len(fmt.Sprintf("%v", result))
}

// Router returns the underlying message router so other registration helpers
// (e.g. feedback tools) can register additional handlers on the same registry.
func (tr *ToolRegistry) Router() *protocol.MessageRouter {
	return tr.router
}

// GetRegisteredToolsInfo returns information about all registered tools
func (tr *ToolRegistry) GetRegisteredToolsInfo() []protocol.ToolInfo {
	toolHandlers := tr.router.GetToolHandlers()
	toolsInfo := make([]protocol.ToolInfo, 0, len(toolHandlers))

	for _, handler := range toolHandlers {
		toolsInfo = append(toolsInfo, handler.GetToolInfo())
	}

	return toolsInfo
}

// ValidateAllTools validates all registered tools can handle their schemas
func (tr *ToolRegistry) ValidateAllTools() error {
	tr.logger.Info("Validating all registered tools")

	toolHandlers := tr.router.GetToolHandlers()
	
	for name, handler := range toolHandlers {
		tr.logger.WithField("tool", name).Debug("Validating tool")
		
		// Basic validation - check if tool info is complete
		toolInfo := handler.GetToolInfo()
		if toolInfo.Name == "" {
			tr.logger.WithField("tool", name).Error("Tool missing name")
			continue
		}
		
		if toolInfo.Description == "" {
			tr.logger.WithField("tool", name).Warn("Tool missing description")
		}
		
		if toolInfo.InputSchema == nil {
			tr.logger.WithField("tool", name).Warn("Tool missing input schema")
		}
		
		tr.logger.WithField("tool", name).Debug("Tool validation completed")
	}

	tr.logger.Info("Tool validation completed")
	return nil
}