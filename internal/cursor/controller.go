// Package cursor decides which block holds input focus after each edit and
// arbitrates selection mode, during which blocks stop accepting direct text
// input so a native range selection can complete.
package cursor

import "blockeditor/internal/domain"

// Controller is the focus and selection-mode state machine. It is not safe
// for concurrent use; the owning service serializes access.
type Controller struct {
	focus         string
	previous      string
	selectionMode bool
	saved         *domain.Selection
}

// New returns a controller focused on the given block, selection mode off.
func New(initialFocus string) *Controller {
	return &Controller{focus: initialFocus}
}

// Focus returns the id of the block or span that has input focus.
func (c *Controller) Focus() string { return c.focus }

// Previous returns the focus target before the last move.
func (c *Controller) Previous() string { return c.previous }

// SelectionModeOn reports whether direct editing is suspended.
func (c *Controller) SelectionModeOn() bool { return c.selectionMode }

// SavedSelection returns the captured selection, if any.
func (c *Controller) SavedSelection() (domain.Selection, bool) {
	if c.saved == nil {
		return domain.Selection{}, false
	}
	return *c.saved, true
}

// Apply moves focus to the directive's target. A nil directive leaves focus
// where it is.
func (c *Controller) Apply(d *domain.CursorDirective) {
	if d == nil || d.TargetID == "" {
		return
	}
	c.previous = c.focus
	c.focus = d.TargetID
}

// PointerDown starts a selection gesture, or commits a pending one. With no
// saved selection, or a collapsed live one, selection mode turns on. With a
// saved range and a live range still showing, the saved range is dropped and
// selection mode turns off.
func (c *Controller) PointerDown(live domain.Selection) {
	if c.saved == nil || live.Collapsed {
		c.selectionMode = true
		return
	}
	c.saved = nil
	c.selectionMode = false
}

// PointerUp captures a non-collapsed live selection. Otherwise selection mode
// turns off, and the returned selection (if non-nil) must be put back onto the
// rendering surface.
func (c *Controller) PointerUp(live domain.Selection) *domain.Selection {
	if !live.Collapsed {
		snap := live
		c.saved = &snap
		return nil
	}
	return c.stopSelecting()
}

// ClearSelection forgets the saved selection without restoring it. Used once
// the selected text has been consumed by an edit.
func (c *Controller) ClearSelection() {
	c.saved = nil
	c.selectionMode = false
}

func (c *Controller) stopSelecting() *domain.Selection {
	was := c.selectionMode
	c.selectionMode = false
	if !was || c.saved == nil {
		return nil
	}
	restore := *c.saved
	return &restore
}
