package service

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples the editor from its rendering host
// ─────────────────────────────────────────────────────────────

// Events emitted by EditorService.
const (
	EventRender = "document:render"
)

// EventEmitter pushes events to the rendering collaborator. The MCP server
// implements it with client notifications; tests use MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Last returns the most recent emission, or false if there is none.
func (m *MockEmitter) Last() (EmittedEvent, bool) {
	if len(m.Events) == 0 {
		return EmittedEvent{}, false
	}
	return m.Events[len(m.Events)-1], true
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, string, any) {}
