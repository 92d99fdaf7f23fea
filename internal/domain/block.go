package domain

// ElementType is the kind of element a block renders as.
type ElementType string

const (
	ElementParagraph ElementType = "paragraph"
	ElementBold      ElementType = "bold"
	ElementH1        ElementType = "h1"
	ElementH2        ElementType = "h2"
	ElementH3        ElementType = "h3"
)

// NoDisplayIndex marks a block that lives inside another block's text.
const NoDisplayIndex = -1

// IsInline reports whether the kind only appears nested inside another block.
func (t ElementType) IsInline() bool {
	return t == ElementBold
}

// Valid reports whether t belongs to the closed element set.
func (t ElementType) Valid() bool {
	switch t {
	case ElementParagraph, ElementBold, ElementH1, ElementH2, ElementH3:
		return true
	}
	return false
}

// Block is a paragraph-level unit of the document, or a formatted span nested
// inside one. Top-level blocks carry a DisplayIndex; spans carry ParentID and
// OffsetToParent instead.
type Block struct {
	ID             string      `json:"id"`
	Type           ElementType `json:"type"`
	DisplayIndex   int         `json:"displayIndex"`
	Value          string      `json:"value"`
	ParentID       string      `json:"parentId,omitempty"`
	OffsetToParent int         `json:"offsetToParent,omitempty"`
	Descendants    []*Block    `json:"descendants,omitempty"`
}

// IsTopLevel reports whether b sits in the document's top-level sequence.
func (b *Block) IsTopLevel() bool {
	return b.ParentID == ""
}

// Clone returns a deep copy of b and its descendants.
func (b *Block) Clone() *Block {
	c := *b
	if b.Descendants != nil {
		c.Descendants = make([]*Block, len(b.Descendants))
		for i, d := range b.Descendants {
			c.Descendants[i] = d.Clone()
		}
	}
	return &c
}
