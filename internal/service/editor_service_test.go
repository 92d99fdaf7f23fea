package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"blockeditor/internal/config"
	"blockeditor/internal/document"
	"blockeditor/internal/domain"
	"blockeditor/internal/input"
	"blockeditor/internal/service"
)

// ─────────────────────────────────────────────────────────────
// EditorService tests
// Drive the editor the way a rendering host would.
// ─────────────────────────────────────────────────────────────

func newEditor(t *testing.T) (*service.EditorService, *service.MockEmitter) {
	t.Helper()
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
	emitter := &service.MockEmitter{}
	km, err := config.Default().Compile()
	if err != nil {
		t.Fatal(err)
	}
	return service.NewEditorService(km, emitter, document.WithIDGenerator(ids)), emitter
}

func caret(id string, offset int) domain.Selection {
	return domain.Selection{Collapsed: true, AnchorID: id, StartOffset: offset}
}

func typeText(t *testing.T, svc *service.EditorService, id, text string) {
	t.Helper()
	ev := service.KeyEvent{Key: "o", Text: text, TargetID: id, Selection: caret(id, len([]rune(text)))}
	if res := svc.KeyDown(context.Background(), ev); res.Handled {
		t.Fatalf("plain key should not be handled on key-down")
	}
	if res := svc.KeyUp(context.Background(), ev); res.Render == nil {
		t.Fatalf("key-up should re-render after a text update")
	}
}

func values(r *domain.RenderInstruction) []string {
	var out []string
	for _, b := range r.Blocks {
		text := ""
		for _, seg := range b.Segments {
			text += seg.Text
		}
		out = append(out, fmt.Sprintf("%s:%d:%s", b.ID, b.DisplayIndex, text))
	}
	return out
}

func TestEditor_TypeSplitDelete(t *testing.T) {
	svc, emitter := newEditor(t)
	ctx := context.Background()

	// Scenario: type "hello" into the initial paragraph.
	typeText(t, svc, "b1", "hello")
	b, _ := svc.Block("b1")
	if b.Value != "hello" {
		t.Fatalf("expected %q, got %q", "hello", b.Value)
	}

	// Scenario: Enter after "hel".
	res := svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyEnter, Text: "hello", TargetID: "b1", Selection: caret("b1", 3)})
	if !res.Handled || res.Render == nil {
		t.Fatalf("Enter should be handled and render, got %+v", res)
	}
	if diff := cmp.Diff([]string{"b1:0:hel", "b2:1:lo"}, values(res.Render)); diff != "" {
		t.Errorf("after split (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(domain.FocusStart("b2"), res.Render.Cursor); diff != "" {
		t.Errorf("cursor (-want +got):\n%s", diff)
	}
	if res.Render.FocusID != "b2" {
		t.Errorf("focus = %q", res.Render.FocusID)
	}

	// Enter's key-up must not touch the text again.
	if up := svc.KeyUp(ctx, service.KeyEvent{Key: input.KeyEnter, Text: "hello", TargetID: "b1"}); up.Render != nil {
		t.Errorf("Enter key-up should be ignored")
	}

	// Scenario: Backspace at the start of "lo".
	res = svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyBackspace, Text: "lo", TargetID: "b2", Selection: caret("b2", 0)})
	if !res.Handled {
		t.Fatal("merge should override the host's Backspace")
	}
	if diff := cmp.Diff([]string{"b1:0:hel"}, values(res.Render)); diff != "" {
		t.Errorf("after delete (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(domain.FocusEnd("b1"), res.Render.Cursor); diff != "" {
		t.Errorf("cursor (-want +got):\n%s", diff)
	}

	last, ok := emitter.Last()
	if !ok || last.Event != service.EventRender || last.Data != res.Render {
		t.Errorf("expected the render instruction to be emitted, got %+v", last)
	}
}

func TestEditor_BackspaceMidTextIsTextInput(t *testing.T) {
	svc, _ := newEditor(t)
	ctx := context.Background()
	typeText(t, svc, "b1", "hello")
	svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyEnter, Text: "hello", TargetID: "b1", Selection: caret("b1", 3)})

	ev := service.KeyEvent{Key: input.KeyBackspace, Text: "o", TargetID: "b2", Selection: caret("b2", 1)}
	if res := svc.KeyDown(ctx, ev); res.Handled {
		t.Fatal("Backspace away from the block start belongs to the host")
	}
	ev.Selection = caret("b2", 0)
	if res := svc.KeyUp(ctx, ev); res.Render == nil {
		t.Fatal("Backspace key-up should commit the text")
	}
	b, _ := svc.Block("b2")
	if b.Value != "o" {
		t.Errorf("expected %q, got %q", "o", b.Value)
	}
}

func TestEditor_BackspaceOnFirstBlockIsIgnored(t *testing.T) {
	svc, emitter := newEditor(t)
	res := svc.KeyDown(context.Background(), service.KeyEvent{Key: input.KeyBackspace, TargetID: "b1", Selection: caret("b1", 0)})
	if res.Handled || res.Render != nil {
		t.Errorf("expected nothing to happen, got %+v", res)
	}
	if len(emitter.Events) != 0 {
		t.Errorf("expected no emissions, got %d", len(emitter.Events))
	}
}

func TestEditor_FormatWithLiveSelection(t *testing.T) {
	svc, _ := newEditor(t)
	typeText(t, svc, "b1", "hello world")

	sel := domain.Selection{AnchorID: "b1", StartOffset: 6, Text: "world"}
	res := svc.KeyDown(context.Background(), service.KeyEvent{Key: "b", Modifiers: input.ModCtrl, TargetID: "b1", Text: "hello world", Selection: sel})
	if !res.Handled || res.Render == nil {
		t.Fatalf("format chord should be handled, got %+v", res)
	}

	want := []domain.Segment{
		{BlockID: "b1", Type: domain.ElementParagraph, Text: "hello "},
		{BlockID: "b2", Type: domain.ElementBold, Text: "world"},
	}
	if diff := cmp.Diff(want, res.Render.Blocks[0].Segments); diff != "" {
		t.Errorf("segments (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(domain.FocusEnd("b2"), res.Render.Cursor); diff != "" {
		t.Errorf("cursor (-want +got):\n%s", diff)
	}
	b, _ := svc.Block("b1")
	if b.Value != "hello " {
		t.Errorf("parent value = %q", b.Value)
	}
}

func TestEditor_FormatChordWithoutSelectionIsSwallowed(t *testing.T) {
	svc, _ := newEditor(t)
	typeText(t, svc, "b1", "hello")
	res := svc.KeyDown(context.Background(), service.KeyEvent{Key: "b", Modifiers: input.ModCtrl, TargetID: "b1", Text: "hello", Selection: caret("b1", 2)})
	if !res.Handled {
		t.Error("format chord must always be intercepted")
	}
	if res.Render != nil {
		t.Errorf("no selection, no change; got %+v", res.Render)
	}
	if up := svc.KeyUp(context.Background(), service.KeyEvent{Key: "b", Modifiers: input.ModCtrl, TargetID: "b1", Text: "hello"}); up.Render != nil {
		t.Error("format chord key-up should be ignored")
	}
}

func TestEditor_SelectionGestureThenFormat(t *testing.T) {
	svc, _ := newEditor(t)
	ctx := context.Background()
	typeText(t, svc, "b1", "hello world")

	// Scenario: pointer-down with nothing saved turns selection mode on.
	res := svc.PointerDown(ctx)
	if !res.Render.SelectionModeOn || res.Render.Blocks[0].Editable {
		t.Fatalf("expected selection mode on and blocks read-only, got %+v", res.Render)
	}

	sel := domain.Selection{AnchorID: "b1", StartOffset: 0, Text: "hello"}
	svc.SelectionChange(sel)
	res = svc.PointerUp(ctx)
	if !res.Render.SelectionModeOn {
		t.Error("selection mode should stay on after the range is captured")
	}

	// Typing is suspended while selecting.
	svc.KeyUp(ctx, service.KeyEvent{Key: "x", TargetID: "b1", Text: "x"})
	if b, _ := svc.Block("b1"); b.Value != "hello world" {
		t.Errorf("text changed during selection mode: %q", b.Value)
	}

	// The host reports a collapsed caret with the chord; the saved range is used.
	res = svc.KeyDown(ctx, service.KeyEvent{Key: "B", Modifiers: input.ModCtrl, TargetID: "b1", Selection: caret("b1", 5)})
	if res.Render == nil {
		t.Fatal("expected format to use the saved selection")
	}
	if res.Render.SelectionModeOn {
		t.Error("consuming the selection should end selection mode")
	}
	b, _ := svc.Block("b1")
	if b.Value != " world" || len(b.Descendants) != 1 || b.Descendants[0].Value != "hello" {
		t.Errorf("unexpected block %+v", b)
	}
}

func TestEditor_PointerUpRestoresSelection(t *testing.T) {
	svc, _ := newEditor(t)
	ctx := context.Background()
	typeText(t, svc, "b1", "hello world")

	sel := domain.Selection{AnchorID: "b1", StartOffset: 6, Text: "world"}
	svc.PointerDown(ctx)
	svc.SelectionChange(sel)
	svc.PointerUp(ctx)

	svc.SelectionChange(caret("b1", 3))
	svc.PointerDown(ctx)
	res := svc.PointerUp(ctx)
	if res.Render.SelectionModeOn {
		t.Error("selection mode should be off")
	}
	if diff := cmp.Diff(&sel, res.Render.RestoreSelection); diff != "" {
		t.Errorf("restore (-want +got):\n%s", diff)
	}
}

func TestEditor_BlockTypeChord(t *testing.T) {
	svc, _ := newEditor(t)
	typeText(t, svc, "b1", "Title")
	res := svc.KeyDown(context.Background(), service.KeyEvent{Key: "1", Modifiers: input.ModCtrl | input.ModAlt, TargetID: "b1", Text: "Title", Selection: caret("b1", 3)})
	if !res.Handled || res.Render == nil {
		t.Fatalf("block chord should be handled, got %+v", res)
	}
	if res.Render.Blocks[0].Type != domain.ElementH1 {
		t.Errorf("type = %s", res.Render.Blocks[0].Type)
	}
	if diff := cmp.Diff(domain.FocusAt("b1", 3), res.Render.Cursor); diff != "" {
		t.Errorf("caret should stay where it was (-want +got):\n%s", diff)
	}
}

func TestEditor_SplitInsideSpan(t *testing.T) {
	svc, _ := newEditor(t)
	ctx := context.Background()
	typeText(t, svc, "b1", "hello world")
	svc.KeyDown(ctx, service.KeyEvent{Key: "b", Modifiers: input.ModCtrl, TargetID: "b1", Selection: domain.Selection{AnchorID: "b1", StartOffset: 6, Text: "world"}})

	// Caret after "wo" inside the bold span b2.
	res := svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyEnter, TargetID: "b2", Text: "world", Selection: caret("b2", 2)})
	if res.Render == nil {
		t.Fatal("expected split")
	}
	if diff := cmp.Diff([]string{"b1:0:hello wo", "b3:1:rld"}, values(res.Render)); diff != "" {
		t.Errorf("after split (-want +got):\n%s", diff)
	}
}

func TestEditor_UnknownTargetIsIgnored(t *testing.T) {
	svc, emitter := newEditor(t)
	ctx := context.Background()
	if res := svc.KeyUp(ctx, service.KeyEvent{Key: "a", TargetID: "gone", Text: "a"}); res.Render != nil {
		t.Error("update on a missing block should do nothing")
	}
	if res := svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyEnter, TargetID: "gone"}); res.Render != nil {
		t.Error("split on a missing block should do nothing")
	}
	if len(emitter.Events) != 0 {
		t.Errorf("expected no emissions, got %d", len(emitter.Events))
	}
}

func TestEditor_SetKeymap(t *testing.T) {
	svc, _ := newEditor(t)
	cfg := config.Default()
	cfg.Keymap.Split = "Ctrl+Enter"
	km, err := cfg.Compile()
	if err != nil {
		t.Fatal(err)
	}
	svc.SetKeymap(km)

	ctx := context.Background()
	if res := svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyEnter, TargetID: "b1", Selection: caret("b1", 0)}); res.Handled {
		t.Error("plain Enter should no longer split")
	}
	if res := svc.KeyDown(ctx, service.KeyEvent{Key: input.KeyEnter, Modifiers: input.ModCtrl, TargetID: "b1", Selection: caret("b1", 0)}); !res.Handled {
		t.Error("Ctrl+Enter should split")
	}
	if n := len(svc.Snapshot().Blocks); n != 2 {
		t.Errorf("expected 2 blocks, got %d", n)
	}
}

func TestEditor_ConcurrentEventsEmitInOrder(t *testing.T) {
	svc, emitter := newEditor(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("edit %d", i)
			svc.KeyUp(ctx, service.KeyEvent{Key: "x", TargetID: "b1", Text: text, Selection: caret("b1", 0)})
		}(i)
	}
	wg.Wait()

	if len(emitter.Events) != 50 {
		t.Fatalf("expected 50 emissions, got %d", len(emitter.Events))
	}
	last, _ := emitter.Last()
	got, ok := last.Data.(*domain.RenderInstruction)
	if !ok {
		t.Fatalf("unexpected payload %T", last.Data)
	}
	if diff := cmp.Diff(values(svc.Snapshot()), values(got)); diff != "" {
		t.Errorf("last emission is stale (-want +got):\n%s", diff)
	}
}
