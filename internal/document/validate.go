package document

import (
	"fmt"

	"blockeditor/internal/domain"
)

// Validate checks the structural invariants of the store: display indexes are
// exactly 0..N-1 in sequence order, ids are unique, the id index matches the
// tree, and every span points back at its parent.
func (s *Store) Validate() error {
	seen := make(map[string]bool, len(s.index))
	for i, b := range s.blocks {
		if b.DisplayIndex != i {
			return fmt.Errorf("block %s at position %d has display index %d", b.ID, i, b.DisplayIndex)
		}
		if !b.IsTopLevel() {
			return fmt.Errorf("block %s at position %d has parent %s", b.ID, i, b.ParentID)
		}
		if b.Type.IsInline() {
			return fmt.Errorf("block %s at position %d is inline kind %q", b.ID, i, b.Type)
		}
		if err := s.validateNode(b, seen); err != nil {
			return err
		}
	}
	if len(seen) != len(s.index) {
		return fmt.Errorf("id index holds %d entries, tree holds %d", len(s.index), len(seen))
	}
	return nil
}

func (s *Store) validateNode(b *domain.Block, seen map[string]bool) error {
	if b.ID == "" {
		return fmt.Errorf("block with empty id")
	}
	if seen[b.ID] {
		return fmt.Errorf("duplicate id %s", b.ID)
	}
	seen[b.ID] = true
	if s.index[b.ID] != b {
		return fmt.Errorf("id index entry for %s does not match the tree", b.ID)
	}
	n := len([]rune(b.Value))
	for _, d := range b.Descendants {
		if d.ParentID != b.ID {
			return fmt.Errorf("span %s under %s points at parent %q", d.ID, b.ID, d.ParentID)
		}
		if d.OffsetToParent < 0 || d.OffsetToParent > n {
			return fmt.Errorf("span %s offset %d outside parent %s of length %d", d.ID, d.OffsetToParent, b.ID, n)
		}
		if err := s.validateNode(d, seen); err != nil {
			return err
		}
	}
	return nil
}
