package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	documentURI   = "editor://document"
	blockURIPrefx = "editor://block/"
)

func (s *Server) registerResources() {
	// ── editor://document ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		documentURI,
		"Current Document",
		mcp.WithResourceDescription("Every top-level block in display order, with composed segments"),
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentResource)

	// ── editor://block/{blockId} ───────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			blockURIPrefx+"{blockId}",
			"Block or Span",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleBlockResource,
	)
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := marshalJSON(s.editor.Snapshot())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      documentURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBlockResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	blockID := extractBlockIDFromURI(uri)
	if blockID == "" {
		return nil, fmt.Errorf("could not extract blockId from URI: %s", uri)
	}

	b, err := s.editor.Block(blockID)
	if err != nil {
		return nil, err
	}
	data, err := marshalJSON(b)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractBlockIDFromURI parses "editor://block/{blockId}".
func extractBlockIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, blockURIPrefx)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
