package document

import (
	"fmt"

	"blockeditor/internal/domain"
)

// SplitBlock divides the top-level block containing id at cursorOffset of
// fullText, its composed text. Everything before the caret stays; everything
// after it moves to a new paragraph placed right after the block.
func (s *Store) SplitBlock(id string, cursorOffset int, fullText string) (*domain.CursorDirective, error) {
	owner, err := s.owner(id)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	full := []rune(fullText)
	k := min(max(cursorOffset, 0), len(full))
	clamp := func(i int) int { return min(max(i, 0), len(full)) }

	next := &domain.Block{
		ID:   s.newID(),
		Type: domain.ElementParagraph,
	}

	var left, right []rune
	var leftSpans, rightSpans []*domain.Block
	pos := 0
	emit := func(to int) {
		for ; pos < to; pos++ {
			if pos < k {
				left = append(left, full[pos])
			} else {
				right = append(right, full[pos])
			}
		}
	}
	for _, p := range placements(owner) {
		start := max(clamp(p.start), pos)
		end := max(clamp(p.end), start)
		emit(start)
		switch {
		case end <= k:
			p.span.Value = string(full[start:end])
			p.span.OffsetToParent = len(left)
			leftSpans = append(leftSpans, p.span)
		case start >= k:
			p.span.Value = string(full[start:end])
			p.span.OffsetToParent = len(right)
			p.span.ParentID = next.ID
			rightSpans = append(rightSpans, p.span)
		default:
			// The caret sits inside the span: keep its head, carry the tail as plain text.
			p.span.Value = string(full[start:k])
			p.span.OffsetToParent = len(left)
			leftSpans = append(leftSpans, p.span)
			right = append(right, full[k:end]...)
		}
		pos = end
	}
	emit(len(full))

	owner.Value = string(left)
	owner.Descendants = leftSpans
	next.Value = string(right)
	next.Descendants = rightSpans
	s.insertAt(owner.DisplayIndex+1, next)

	return domain.FocusStart(next.ID), nil
}

// DeleteAndMergeBlock removes the top-level block containing id when the caret
// is at its start, and moves focus to the end of the block before it. The
// removed block's text is discarded.
func (s *Store) DeleteAndMergeBlock(id string, cursorAtStart bool) (*domain.CursorDirective, error) {
	owner, err := s.owner(id)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if !cursorAtStart {
		return nil, fmt.Errorf("delete %s: caret not at start: %w", owner.ID, ErrBoundary)
	}
	if owner.DisplayIndex == 0 {
		return nil, fmt.Errorf("delete %s: first block: %w", owner.ID, ErrBoundary)
	}
	removed := owner.DisplayIndex
	s.removeAt(removed)
	return domain.FocusEnd(s.blocks[removed-1].ID), nil
}

// UpdateText replaces the text owned directly by the block or span id.
func (s *Store) UpdateText(id, text string) error {
	b, err := s.lookup(id)
	if err != nil {
		return fmt.Errorf("update text: %w", err)
	}
	shiftSpans(b, []rune(b.Value), []rune(text))
	b.Value = text
	return nil
}

// shiftSpans moves span offsets of b across an edit of its own text from old
// to text. Spans before the edited range keep their offset, spans after it
// move by the length change, and spans inside a deleted range collapse to
// its start.
func shiftSpans(b *domain.Block, old, text []rune) {
	if len(b.Descendants) == 0 {
		return
	}
	p := 0
	for p < len(old) && p < len(text) && old[p] == text[p] {
		p++
	}
	q := 0
	for q < len(old)-p && q < len(text)-p && old[len(old)-1-q] == text[len(text)-1-q] {
		q++
	}
	oldEnd := len(old) - q
	delta := len(text) - len(old)
	for _, d := range b.Descendants {
		off := min(max(d.OffsetToParent, 0), len(old))
		switch {
		case off >= oldEnd:
			off += delta
		case off > p:
			off = p
		}
		d.OffsetToParent = min(max(off, 0), len(text))
	}
}

// ApplyInlineFormat cuts the selected text out of its top-level block and
// nests it back as a single span of the given kind. Any earlier span is first
// folded back into the block's text, so one formatted range is active per
// block at a time.
func (s *Store) ApplyInlineFormat(sel domain.Selection, kind domain.ElementType) (*domain.CursorDirective, error) {
	if !sel.Active() {
		return nil, fmt.Errorf("format: %w", ErrNoSelection)
	}
	if !kind.Valid() || !kind.IsInline() {
		return nil, fmt.Errorf("format as %q: %w", kind, ErrInvalidType)
	}
	owner, err := s.owner(sel.AnchorID)
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	base := 0
	if owner.ID != sel.AnchorID {
		var ok bool
		if base, ok = composedStart(owner, sel.AnchorID); !ok {
			return nil, fmt.Errorf("format: span %s: %w", sel.AnchorID, ErrNotFound)
		}
	}

	flat := []rune(Text(owner))
	selected := []rune(sel.Text)
	start := base + sel.StartOffset
	end := start + len(selected)
	if start < 0 || end > len(flat) || string(flat[start:end]) != sel.Text {
		return nil, fmt.Errorf("format: selection %q at %d does not match block %s: %w",
			sel.Text, start, owner.ID, ErrNoSelection)
	}

	span := &domain.Block{
		ID:             s.newID(),
		Type:           kind,
		DisplayIndex:   domain.NoDisplayIndex,
		Value:          sel.Text,
		ParentID:       owner.ID,
		OffsetToParent: start,
	}
	for _, d := range owner.Descendants {
		s.unregister(d)
	}
	owner.Value = string(flat[:start]) + string(flat[end:])
	owner.Descendants = []*domain.Block{span}
	s.register(span)

	return domain.FocusEnd(span.ID), nil
}

// ChangeBlockType sets the element kind of a top-level block.
func (s *Store) ChangeBlockType(id string, kind domain.ElementType) error {
	b, err := s.lookup(id)
	if err != nil {
		return fmt.Errorf("change type: %w", err)
	}
	if !b.IsTopLevel() {
		return fmt.Errorf("change type: %s is a span: %w", id, ErrInvalidType)
	}
	if !kind.Valid() || kind.IsInline() {
		return fmt.Errorf("change type to %q: %w", kind, ErrInvalidType)
	}
	b.Type = kind
	return nil
}
