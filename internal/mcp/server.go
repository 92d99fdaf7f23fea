package mcpserver

import (
	"context"
	"log"

	"blockeditor/internal/config"
	"blockeditor/internal/service"

	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for the block editor.
// It lets an MCP client play the rendering host: every input event is a tool,
// the document is a resource, and render instructions come back both as tool
// results and as notifications.
type Server struct {
	mcp      *server.MCPServer
	editor   *service.EditorService
	notifier *Notifier
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Identity config.ServerConfig
	Editor   *service.EditorService
	Notifier *Notifier // the emitter the editor was built with; may be nil
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		editor:   deps.Editor,
		notifier: deps.Notifier,
	}

	s.mcp = server.NewMCPServer(
		deps.Identity.Name,
		deps.Identity.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)
	if s.notifier != nil {
		s.notifier.bind(s.mcp)
	}

	s.registerInputTools()
	s.registerDocumentTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Notifier ───────────────────────────────────────────────

// Notifier is a service.EventEmitter that forwards editor events to every
// connected MCP client as notifications. Events emitted before the server
// exists are dropped.
type Notifier struct {
	srv *server.MCPServer
}

func (n *Notifier) bind(srv *server.MCPServer) {
	n.srv = srv
}

func (n *Notifier) Emit(_ context.Context, event string, data any) {
	if n.srv == nil {
		return
	}
	params, err := toParams(data)
	if err != nil {
		log.Printf("[MCP] notify %s: %v", event, err)
		return
	}
	n.srv.SendNotificationToAllClients("notifications/"+event, params)
}
