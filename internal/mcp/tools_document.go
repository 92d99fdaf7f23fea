package mcpserver

import (
	"context"
	"fmt"

	"blockeditor/internal/document"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── get_document ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Get the whole document as a render instruction: blocks in display order with their segments"),
	), s.handleGetDocument)

	// ── get_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_block",
		mcp.WithDescription("Get one block or inline span by ID, including its composed text"),
		mcp.WithString("blockId", mcp.Description("ID of the block or span"), mcp.Required()),
	), s.handleGetBlock)
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.Snapshot())
}

func (s *Server) handleGetBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("blockId", "")
	if id == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	b, err := s.editor.Block(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(blockSummary{
		ID:           b.ID,
		Type:         string(b.Type),
		DisplayIndex: b.DisplayIndex,
		ParentID:     b.ParentID,
		Value:        b.Value,
		Text:         document.Text(b),
		Spans:        len(b.Descendants),
	})
}

// blockSummary is the get_block payload.
type blockSummary struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	DisplayIndex int    `json:"displayIndex"`
	ParentID     string `json:"parentId,omitempty"`
	Value        string `json:"value"`
	Text         string `json:"text"`
	Spans        int    `json:"spans"`
}
