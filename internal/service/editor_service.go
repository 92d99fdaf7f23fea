package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"blockeditor/internal/config"
	"blockeditor/internal/cursor"
	"blockeditor/internal/document"
	"blockeditor/internal/domain"
	"blockeditor/internal/input"
)

// ─────────────────────────────────────────────────────────────
// Editor Service — input dispatch for one document
// ─────────────────────────────────────────────────────────────

// KeyEvent is a key press or release reported by the rendering collaborator.
// Text is the text the target region holds on its own (span text excluded),
// and Selection is the host's selection at the moment of the event.
type KeyEvent struct {
	Key       string           `json:"key"`
	Modifiers input.Modifier   `json:"modifiers"`
	Text      string           `json:"text"`
	TargetID  string           `json:"targetId"`
	Selection domain.Selection `json:"selection"`
}

// Result tells the host what to do after an event. Handled means the host
// must suppress its own default handling of the key.
type Result struct {
	Handled bool                      `json:"handled"`
	Render  *domain.RenderInstruction `json:"render,omitempty"`
}

// EditorService owns a document and its cursor controller. Every event runs
// to completion under one lock, including the emission of its render
// instruction.
type EditorService struct {
	mu      sync.Mutex
	store   *document.Store
	cursor  *cursor.Controller
	keymap  *config.Keymap
	live    domain.Selection
	emitter EventEmitter
}

// NewEditorService creates a service over a fresh single-paragraph document.
func NewEditorService(keymap *config.Keymap, emitter EventEmitter, opts ...document.Option) *EditorService {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	if keymap == nil {
		keymap, _ = config.Default().Compile()
	}
	store := document.NewStore(opts...)
	first, _ := store.FindByDisplayIndex(0)
	return &EditorService{
		store:   store,
		cursor:  cursor.New(first.ID),
		keymap:  keymap,
		live:    domain.Selection{Collapsed: true, AnchorID: first.ID},
		emitter: emitter,
	}
}

// SetKeymap swaps the key bindings, e.g. after a config reload.
func (s *EditorService) SetKeymap(km *config.Keymap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keymap = km
}

// Snapshot returns the current document as a render instruction with no
// cursor move.
func (s *EditorService) Snapshot() *domain.RenderInstruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(nil, nil)
}

// Block returns a copy of a block or span by id.
func (s *EditorService) Block(id string) (*domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FindByID(id)
}

// KeyDown handles structural keys. The format chord is checked first so the
// host's native command for the same chord never runs.
func (s *EditorService) KeyDown(ctx context.Context, ev KeyEvent) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.keyDown(ev)
	s.publish(ctx, res)
	return res
}

func (s *EditorService) keyDown(ev KeyEvent) Result {
	if kind, ok := s.keymap.Format(ev.Key, ev.Modifiers); ok {
		return Result{Handled: true, Render: s.applyFormat(ev, kind)}
	}
	if kind, ok := s.keymap.Block(ev.Key, ev.Modifiers); ok {
		return Result{Handled: true, Render: s.changeType(ev, kind)}
	}
	if s.keymap.Split.Matches(ev.Key, ev.Modifiers) {
		return Result{Handled: true, Render: s.split(ev)}
	}
	if s.keymap.Merge.Matches(ev.Key, ev.Modifiers) {
		// Only a merge overrides the host; otherwise the key deletes a character.
		if r := s.merge(ev); r != nil {
			return Result{Handled: true, Render: r}
		}
	}
	return Result{}
}

// KeyUp commits the target's text after any key that did not restructure
// the document. The merge key counts as text input here: when it did not
// merge, the host deleted a character.
func (s *EditorService) KeyUp(ctx context.Context, ev KeyEvent) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.keyUp(ev)
	s.publish(ctx, res)
	return res
}

func (s *EditorService) keyUp(ev KeyEvent) Result {
	if s.structural(ev) {
		return Result{}
	}
	if s.cursor.SelectionModeOn() {
		return Result{}
	}
	if err := s.store.UpdateText(ev.TargetID, ev.Text); err != nil {
		s.decline("update text", err)
		return Result{}
	}
	return Result{Render: s.render(nil, nil)}
}

// PointerDown starts or commits a selection gesture.
func (s *EditorService) PointerDown(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.PointerDown(s.live)
	res := Result{Render: s.render(nil, nil)}
	s.publish(ctx, res)
	return res
}

// PointerUp captures the live selection, or ends selection mode and asks the
// host to put the saved range back.
func (s *EditorService) PointerUp(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	restore := s.cursor.PointerUp(s.live)
	res := Result{Render: s.render(nil, restore)}
	s.publish(ctx, res)
	return res
}

// SelectionChange records the host's latest selection snapshot.
func (s *EditorService) SelectionChange(sel domain.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = sel
}

// ── operations ─────────────────────────────────────────────

func (s *EditorService) applyFormat(ev KeyEvent, kind domain.ElementType) *domain.RenderInstruction {
	sel := ev.Selection
	if !sel.Active() {
		if saved, ok := s.cursor.SavedSelection(); ok {
			sel = saved
		}
	}
	dir, err := s.store.ApplyInlineFormat(sel, kind)
	if err != nil {
		s.decline("format", err)
		return nil
	}
	s.cursor.ClearSelection()
	s.cursor.Apply(dir)
	return s.render(dir, nil)
}

func (s *EditorService) changeType(ev KeyEvent, kind domain.ElementType) *domain.RenderInstruction {
	owner, err := s.store.Owner(ev.TargetID)
	if err != nil {
		s.decline("change type", err)
		return nil
	}
	if err := s.store.ChangeBlockType(owner.ID, kind); err != nil {
		s.decline("change type", err)
		return nil
	}
	// The host rebuilds the element for the new kind; put the caret back.
	dir := domain.FocusAt(ev.TargetID, ev.Selection.StartOffset)
	s.cursor.Apply(dir)
	return s.render(dir, nil)
}

func (s *EditorService) split(ev KeyEvent) *domain.RenderInstruction {
	if s.cursor.SelectionModeOn() {
		s.decline("split", errSelecting)
		return nil
	}
	if err := s.store.UpdateText(ev.TargetID, ev.Text); err != nil {
		s.decline("split", err)
		return nil
	}
	owner, err := s.store.Owner(ev.TargetID)
	if err != nil {
		s.decline("split", err)
		return nil
	}
	start, err := s.store.ComposedStart(ev.TargetID)
	if err != nil {
		s.decline("split", err)
		return nil
	}
	dir, err := s.store.SplitBlock(owner.ID, start+ev.Selection.StartOffset, document.Text(owner))
	if err != nil {
		s.decline("split", err)
		return nil
	}
	s.cursor.Apply(dir)
	return s.render(dir, nil)
}

func (s *EditorService) merge(ev KeyEvent) *domain.RenderInstruction {
	if s.cursor.SelectionModeOn() {
		s.decline("delete", errSelecting)
		return nil
	}
	start, err := s.store.ComposedStart(ev.TargetID)
	if err != nil {
		s.decline("delete", err)
		return nil
	}
	atStart := ev.Selection.Collapsed && ev.Selection.StartOffset == 0 && start == 0
	dir, err := s.store.DeleteAndMergeBlock(ev.TargetID, atStart)
	if err != nil {
		if !errors.Is(err, document.ErrBoundary) {
			s.decline("delete", err)
		}
		return nil
	}
	s.cursor.Apply(dir)
	return s.render(dir, nil)
}

var errSelecting = errors.New("selection mode on")

func (s *EditorService) structural(ev KeyEvent) bool {
	if _, ok := s.keymap.Format(ev.Key, ev.Modifiers); ok {
		return true
	}
	if _, ok := s.keymap.Block(ev.Key, ev.Modifiers); ok {
		return true
	}
	return s.keymap.Split.Matches(ev.Key, ev.Modifiers)
}

func (s *EditorService) decline(op string, err error) {
	log.Printf("editor: %s declined: %v", op, err)
}

// ── rendering ──────────────────────────────────────────────

func (s *EditorService) render(dir *domain.CursorDirective, restore *domain.Selection) *domain.RenderInstruction {
	blocks := s.store.Blocks()
	out := &domain.RenderInstruction{
		Blocks:           make([]domain.RenderedBlock, len(blocks)),
		Cursor:           dir,
		FocusID:          s.cursor.Focus(),
		SelectionModeOn:  s.cursor.SelectionModeOn(),
		RestoreSelection: restore,
	}
	for i, b := range blocks {
		out.Blocks[i] = domain.RenderedBlock{
			ID:           b.ID,
			Type:         b.Type,
			DisplayIndex: b.DisplayIndex,
			Editable:     !out.SelectionModeOn,
			Segments:     document.Compose(b),
		}
	}
	if dir != nil {
		if _, err := s.store.FindByID(dir.TargetID); err != nil {
			panic(fmt.Sprintf("editor: cursor directive targets missing block: %v", err))
		}
	}
	return out
}

// publish runs under s.mu so clients see render instructions in mutation
// order. Emitters must not call back into the service.
func (s *EditorService) publish(ctx context.Context, res Result) {
	if res.Render != nil {
		s.emitter.Emit(ctx, EventRender, res.Render)
	}
}
