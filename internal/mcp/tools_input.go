package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"blockeditor/internal/domain"
	"blockeditor/internal/input"
	"blockeditor/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerInputTools() {
	keyArgs := []mcp.ToolOption{
		mcp.WithString("key",
			mcp.Description(`Key value as the host reports it, e.g. "Enter", "Backspace", "b"`),
			mcp.Required(),
		),
		mcp.WithString("targetId",
			mcp.Description("ID of the block or span that received the key"),
			mcp.Required(),
		),
		mcp.WithString("modifiers", mcp.Description(`Comma-separated held modifiers: ctrl, alt, shift, meta`)),
		mcp.WithString("text",
			mcp.Description("Text the target holds on its own after the key; send an empty string for an empty target"),
			mcp.Required(),
		),
		mcp.WithNumber("selectionStart", mcp.Description("Caret or selection start offset, in characters")),
		mcp.WithString("selectionText", mcp.Description("Selected text; empty for a caret")),
	}

	// ── key_down ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("key_down",
		append([]mcp.ToolOption{
			mcp.WithDescription("Report a key press. If the result says handled, suppress the host's default action for this key."),
		}, keyArgs...)...,
	), s.handleKeyDown)

	// ── key_up ─────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("key_up",
		append([]mcp.ToolOption{
			mcp.WithDescription("Report a key release; commits the target's text for ordinary keys"),
		}, keyArgs...)...,
	), s.handleKeyUp)

	// ── pointer_down / pointer_up ──────────────────────
	s.mcp.AddTool(mcp.NewTool("pointer_down",
		mcp.WithDescription("Report a pointer press; starts or commits a range selection"),
	), s.handlePointerDown)
	s.mcp.AddTool(mcp.NewTool("pointer_up",
		mcp.WithDescription("Report a pointer release; captures the live selection, or asks for a saved one to be restored"),
	), s.handlePointerUp)

	// ── selection_change ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("selection_change",
		mcp.WithDescription("Report the host's current selection"),
		mcp.WithString("anchorId", mcp.Description("Block or span the selection starts in"), mcp.Required()),
		mcp.WithNumber("startOffset", mcp.Description("Start offset in characters")),
		mcp.WithString("text", mcp.Description("Selected text; empty for a collapsed caret")),
	), s.handleSelectionChange)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleKeyDown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ev, err := keyEventFromRequest(req)
	if err != nil {
		return nil, err
	}
	return jsonResult(s.editor.KeyDown(ctx, ev))
}

func (s *Server) handleKeyUp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ev, err := keyEventFromRequest(req)
	if err != nil {
		return nil, err
	}
	return jsonResult(s.editor.KeyUp(ctx, ev))
}

func (s *Server) handlePointerDown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.PointerDown(ctx))
}

func (s *Server) handlePointerUp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.PointerUp(ctx))
}

func (s *Server) handleSelectionChange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	anchorID := req.GetString("anchorId", "")
	if anchorID == "" {
		return nil, fmt.Errorf("anchorId is required")
	}
	sel := selection(anchorID, req.GetInt("startOffset", 0), req.GetString("text", ""))
	s.editor.SelectionChange(sel)
	return textResult("ok"), nil
}

// keyEventFromRequest builds a service.KeyEvent from tool arguments.
func keyEventFromRequest(req mcp.CallToolRequest) (service.KeyEvent, error) {
	key := req.GetString("key", "")
	if key == "" {
		return service.KeyEvent{}, fmt.Errorf("key is required")
	}
	targetID := req.GetString("targetId", "")
	if targetID == "" {
		return service.KeyEvent{}, fmt.Errorf("targetId is required")
	}
	mods, err := input.ParseModifiers(strings.Split(req.GetString("modifiers", ""), ","))
	if err != nil {
		return service.KeyEvent{}, err
	}
	text, err := req.RequireString("text")
	if err != nil {
		return service.KeyEvent{}, err
	}
	return service.KeyEvent{
		Key:       key,
		Modifiers: mods,
		Text:      text,
		TargetID:  targetID,
		Selection: selection(targetID, req.GetInt("selectionStart", 0), req.GetString("selectionText", "")),
	}, nil
}

func selection(anchorID string, start int, text string) domain.Selection {
	return domain.Selection{
		Collapsed:   text == "",
		StartOffset: start,
		AnchorID:    anchorID,
		Text:        text,
	}
}
