package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"blockeditor/internal/config"
	mcpserver "blockeditor/internal/mcp"
	"blockeditor/internal/service"
)

// ServeMCP runs the editor as a standalone MCP server on stdin/stdout.
// It loads the config, watches it for keymap changes, and serves until
// interrupted.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	keymap, err := cfg.Compile()
	if err != nil {
		log.Fatalf("Invalid keymap: %v", err)
	}

	notifier := &mcpserver.Notifier{}
	editor := service.NewEditorService(keymap, notifier)

	// Hot-reload key bindings. A missing config directory just means no reload.
	if w, err := config.Watch(ctx, cfgPath, func(c *config.Config) {
		km, err := c.Compile()
		if err != nil {
			log.Printf("[MCP] Ignoring config reload: %v", err)
			return
		}
		editor.SetKeymap(km)
		log.Println("[MCP] Keymap reloaded")
	}); err != nil {
		log.Printf("[MCP] Config watch disabled: %v", err)
	} else {
		defer w.Close()
	}

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Identity: cfg.Server,
		Editor:   editor,
		Notifier: notifier,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
