package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// TabletCreateRequest represents the arguments for tablet_create.
type TabletCreateRequest struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	Name    string   `json:"name,omitempty"`
	Author  string   `json:"author,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// TabletAddEntryRequest represents the arguments for tablet_add_entry.
type TabletAddEntryRequest struct {
	Target string `json:"target"`
	Path   string `json:"path"`
	Diff   string `json:"diff,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// CapsuleCreateRequest represents the arguments for capsule_create.
type CapsuleCreateRequest struct {
	Project   string `json:"project"`
	Summary   string `json:"summary,omitempty"`
	Name      string `json:"name,omitempty"`
	Author    string `json:"author,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Objective string `json:"objective,omitempty"`
}

// CapsuleSetSectionRequest represents the arguments for capsule_set_section.
type CapsuleSetSectionRequest struct {
	Target  string `json:"target"`
	Name    string `json:"name"`
	Kind    string `json:"kind,omitempty"`
	Content string `json:"content,omitempty"`
	Append  bool   `json:"append,omitempty"`
}

// CapsuleExportRequest represents the arguments for capsule_export.
type CapsuleExportRequest struct {
	Target string `json:"target"`
	Name   string `json:"name,omitempty"`
	Delete bool   `json:"delete,omitempty"`
}

// SessionFetchRequest represents the arguments for session_fetch.
type SessionFetchRequest struct {
	Target string `json:"target"`
}

// SessionListRequest represents the arguments for session_list.
type SessionListRequest struct {
	Kind   string `json:"kind,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// SessionHealthRequest represents the arguments for session_health.
type SessionHealthRequest struct {
	Target string `json:"target"`
}

// SessionCleanupRequest represents the arguments for session_cleanup.
type SessionCleanupRequest struct {
	DryRun bool `json:"dry_run,omitempty"`
}

// SessionDeleteRequest represents the arguments for session_delete.
type SessionDeleteRequest struct {
	Target string `json:"target"`
}

// MemoryDigestRequest represents the arguments for memory_digest.
type MemoryDigestRequest struct {
	MaxTablets int `json:"max_tablets,omitempty"`
}

// HandleTabletCreate handles the tablet_create tool.
func (h *Handlers) HandleTabletCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TabletCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateTablet(h.db, h.cfg, ops.CreateTabletInput{
		Dir:     h.cfg.SessionsDir,
		Name:    input.Name,
		Title:   input.Title,
		Summary: input.Summary,
		Author:  input.Author,
		Tags:    input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTabletAddEntry handles the tablet_add_entry tool.
func (h *Handlers) HandleTabletAddEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TabletAddEntryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddEntry(h.db, h.cfg, ops.AddEntryInput{
		Target: input.Target,
		Path:   input.Path,
		Diff:   input.Diff,
		Notes:  input.Notes,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCapsuleCreate handles the capsule_create tool.
func (h *Handlers) HandleCapsuleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CapsuleCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateCapsule(h.db, h.cfg, ops.CreateCapsuleInput{
		Dir:       h.cfg.SessionsDir,
		Name:      input.Name,
		Project:   input.Project,
		Summary:   input.Summary,
		Author:    input.Author,
		Branch:    input.Branch,
		Objective: input.Objective,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCapsuleSetSection handles the capsule_set_section tool.
func (h *Handlers) HandleCapsuleSetSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CapsuleSetSectionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetSection(h.db, h.cfg, ops.SetSectionInput{
		Target:  input.Target,
		Name:    input.Name,
		Kind:    input.Kind,
		Content: input.Content,
		Append:  input.Append,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCapsuleExport handles the capsule_export tool.
func (h *Handlers) HandleCapsuleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CapsuleExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ExportCapsule(h.db, h.cfg, ops.ExportCapsuleInput{
		Target: input.Target,
		Dir:    h.cfg.SessionsDir,
		Name:   input.Name,
		Delete: input.Delete,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionFetch handles the session_fetch tool.
func (h *Handlers) HandleSessionFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionFetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.InspectTarget(h.db, input.Target)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionList handles the session_list tool.
func (h *Handlers) HandleSessionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.db, ops.ListInput{
		Kind:   input.Kind,
		Tag:    input.Tag,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionHealth handles the session_health tool.
func (h *Handlers) HandleSessionHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionHealthRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Health(h.db, h.cfg, input.Target)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionCleanup handles the session_cleanup tool.
func (h *Handlers) HandleSessionCleanup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionCleanupRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Cleanup(h.db, h.cfg, input.DryRun)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionDelete handles the session_delete tool.
func (h *Handlers) HandleSessionDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := ops.Delete(h.db, input.Target); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": true})
}

// HandleMemoryDigest handles the memory_digest tool.
func (h *Handlers) HandleMemoryDigest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MemoryDigestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Digest(h.db, h.cfg, input.MaxTablets)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error into a structured MCP error payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if auraErr, ok := err.(*errors.AuraError); ok {
		errorObj := map[string]any{
			"code":    auraErr.Code,
			"message": auraErr.Message,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if auraErr.Code != errors.ErrInternal && auraErr.Details != nil {
			errorObj["details"] = auraErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult wraps handler output as a JSON tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
