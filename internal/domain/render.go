package domain

// Segment is a run of text owned by a single block, in display order.
type Segment struct {
	BlockID string      `json:"blockId"`
	Type    ElementType `json:"type"`
	Text    string      `json:"text"`
}

// RenderedBlock is a top-level block ready for display.
type RenderedBlock struct {
	ID           string      `json:"id"`
	Type         ElementType `json:"type"`
	DisplayIndex int         `json:"displayIndex"`
	Editable     bool        `json:"editable"`
	Segments     []Segment   `json:"segments"`
}

// RenderInstruction is everything the rendering collaborator needs after an
// event: the full document, where the caret goes, and whether a saved
// selection must be put back on the surface.
type RenderInstruction struct {
	Blocks           []RenderedBlock  `json:"blocks"`
	Cursor           *CursorDirective `json:"cursor,omitempty"`
	FocusID          string           `json:"focusId"`
	SelectionModeOn  bool             `json:"selectionModeOn"`
	RestoreSelection *Selection       `json:"restoreSelection,omitempty"`
}
