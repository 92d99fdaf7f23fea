package domain

// CaretKind says where inside the target the caret lands.
type CaretKind string

const (
	CaretStart  CaretKind = "start"
	CaretOffset CaretKind = "offset"
	CaretEnd    CaretKind = "end"
)

// Caret is a position inside a block's text.
type Caret struct {
	Kind   CaretKind `json:"kind"`
	Offset int       `json:"offset,omitempty"`
}

// CursorDirective tells the rendering collaborator which block gets input
// focus next and where its caret goes.
type CursorDirective struct {
	TargetID string `json:"targetId"`
	Caret    Caret  `json:"caret"`
}

// FocusStart places the caret before the first character of id.
func FocusStart(id string) *CursorDirective {
	return &CursorDirective{TargetID: id, Caret: Caret{Kind: CaretStart}}
}

// FocusEnd places the caret after the last character of id.
func FocusEnd(id string) *CursorDirective {
	return &CursorDirective{TargetID: id, Caret: Caret{Kind: CaretEnd}}
}

// FocusAt places the caret at a character offset inside id.
func FocusAt(id string, offset int) *CursorDirective {
	return &CursorDirective{TargetID: id, Caret: Caret{Kind: CaretOffset, Offset: offset}}
}

// Selection is an immutable snapshot of the host's native selection.
// StartOffset and Text are in characters (runes) of the anchor block.
type Selection struct {
	Collapsed   bool   `json:"collapsed"`
	StartOffset int    `json:"startOffset"`
	AnchorID    string `json:"anchorId"`
	Text        string `json:"text,omitempty"`
}

// Active reports whether the snapshot spans at least one character.
func (s Selection) Active() bool {
	return !s.Collapsed && s.Text != ""
}
