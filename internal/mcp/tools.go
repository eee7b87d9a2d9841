package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters or rejected field values
	ErrorCodeInternalError = -32603 // Storage failure or unexpected error
	ErrorCodeNotFound      = -32001 // Referenced project, point or row does not exist
	ErrorCodeDuplicate     = -32002 // Identifier already taken in its scope
	ErrorCodeProtected     = -32003 // Soil stratum owned by a sample or permeability test
	ErrorCodeIDExhausted   = -32004 // No free identifier after every retry
)

// handleListProjects handles the list_projects tool invocation
func (s *Server) handleListProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.engine.ListProjects(ctx)
	if err != nil {
		return nil, s.toolError("list_projects", err)
	}
	return mcp.NewToolResultText(formatJSON(projects)), nil
}

// handleRenameProject handles the rename_project tool invocation
func (s *Server) handleRenameProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	from, err := requireString(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := requireString(args, "to")
	if err != nil {
		return nil, err
	}

	res, err := s.engine.RenameProject(ctx, cascade.RenameProject{From: from, To: to})
	if err != nil {
		return nil, s.toolError("rename_project", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

// handleRenamePoint handles the rename_point tool invocation
func (s *Server) handleRenamePoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	projectID, err := requireString(args, "project_id")
	if err != nil {
		return nil, err
	}
	from, err := requireString(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := requireString(args, "to")
	if err != nil {
		return nil, err
	}

	res, err := s.engine.RenamePoint(ctx, cascade.RenamePoint{ProjectID: projectID, From: from, To: to})
	if err != nil {
		return nil, s.toolError("rename_point", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

// handleMarkSynced handles the mark_synced tool invocation. Without
// point_id the whole project is flagged.
func (s *Server) handleMarkSynced(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	projectID, err := requireString(args, "project_id")
	if err != nil {
		return nil, err
	}

	res, err := s.engine.MarkSynced(ctx, cascade.MarkSynced{
		ProjectID: projectID,
		PointID:   getStringDefault(args, "point_id", ""),
	})
	if err != nil {
		return nil, s.toolError("mark_synced", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

// handleDirtySummary handles the dirty_summary tool invocation
func (s *Server) handleDirtySummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.engine.DirtySummary(ctx)
	if err != nil {
		return nil, s.toolError("dirty_summary", err)
	}
	return mcp.NewToolResultText(formatJSON(res)), nil
}

// withRecord decodes the "record" argument into T and returns the result of fn
func withRecord[T, R any](s *Server, tool string, fn func(context.Context, T) (R, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := arguments(request)
		if err != nil {
			return nil, err
		}
		var in T
		if err := decodeRecord(args, &in); err != nil {
			return nil, err
		}
		out, err := fn(ctx, in)
		if err != nil {
			return nil, s.toolError(tool, err)
		}
		return mcp.NewToolResultText(formatJSON(out)), nil
	}
}

// withString calls fn with one required string argument
func withString[R any](s *Server, tool, key string, fn func(context.Context, string) (R, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := arguments(request)
		if err != nil {
			return nil, err
		}
		value, err := requireString(args, key)
		if err != nil {
			return nil, err
		}
		out, err := fn(ctx, value)
		if err != nil {
			return nil, s.toolError(tool, err)
		}
		return mcp.NewToolResultText(formatJSON(out)), nil
	}
}

// withPoint calls fn with the project_id and point_id arguments
func withPoint[R any](s *Server, tool string, fn func(context.Context, string, string) (R, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := arguments(request)
		if err != nil {
			return nil, err
		}
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		pointID, err := requireString(args, "point_id")
		if err != nil {
			return nil, err
		}
		out, err := fn(ctx, projectID, pointID)
		if err != nil {
			return nil, s.toolError(tool, err)
		}
		return mcp.NewToolResultText(formatJSON(out)), nil
	}
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// codeFor maps the error taxonomy to an MCP error code
func codeFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInterval), errors.Is(err, types.ErrInvalidValue):
		return ErrorCodeInvalidParams
	case errors.Is(err, types.ErrRecordNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, types.ErrDuplicateIdentifier):
		return ErrorCodeDuplicate
	case errors.Is(err, types.ErrLinkedRecordProtected):
		return ErrorCodeProtected
	case errors.Is(err, types.ErrIdGenerationExhausted):
		return ErrorCodeIDExhausted
	default:
		return ErrorCodeInternalError
	}
}

// toolError converts an engine error into an MCP error carrying the
// offending field or the protecting owner
func (s *Server) toolError(tool string, err error) error {
	code := codeFor(err)
	data := map[string]interface{}{}

	var verr *types.ValidationError
	if errors.As(err, &verr) {
		data["field"] = verr.Field
		data["reason"] = verr.Reason
	}
	var perr *types.ProtectedError
	if errors.As(err, &perr) {
		data["soil_id"] = perr.SoilID
		data["owner_kind"] = perr.OwnerKind
		data["owner_id"] = perr.OwnerID
	}

	if code == ErrorCodeInternalError {
		s.log.Error("tool failed", "tool", tool, "error", err)
		data["error"] = err.Error()
		return newMCPError(code, tool+" failed", data)
	}
	s.log.Debug("tool rejected", "tool", tool, "code", code, "error", err)
	return newMCPError(code, err.Error(), data)
}

// arguments extracts the argument object of a tool call
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// requireString extracts a non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return val, nil
}

// decodeRecord converts the "record" argument into v. Clients may send the
// row as an object or as a JSON string.
func decodeRecord(args map[string]interface{}, v interface{}) error {
	raw, ok := args["record"]
	if !ok || raw == nil {
		return newMCPError(ErrorCodeInvalidParams, "record parameter is required", map[string]interface{}{
			"param":  "record",
			"reason": "missing",
		})
	}

	var data []byte
	if text, ok := raw.(string); ok {
		data = []byte(text)
	} else {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return newMCPError(ErrorCodeInvalidParams, "record is not valid JSON", nil)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newMCPError(ErrorCodeInvalidParams, "record does not match the row shape", map[string]interface{}{
			"param":  "record",
			"reason": err.Error(),
		})
	}
	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
