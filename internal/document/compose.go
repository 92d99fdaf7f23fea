package document

import (
	"slices"
	"strings"

	"blockeditor/internal/domain"
)

// Compose walks a block and its spans in display order and returns the runs
// of text each one contributes. A span is emitted at its offset into the
// parent's own text; a span anchored at 0 comes before any parent text.
func Compose(b *domain.Block) []domain.Segment {
	var segs []domain.Segment
	compose(b, &segs)
	return segs
}

func compose(b *domain.Block, segs *[]domain.Segment) {
	own := []rune(b.Value)
	consumed := 0
	for _, d := range sortedDescendants(b) {
		off := spanOffset(d, len(own), consumed)
		if off > consumed {
			*segs = append(*segs, domain.Segment{BlockID: b.ID, Type: b.Type, Text: string(own[consumed:off])})
		}
		compose(d, segs)
		consumed = off
	}
	if consumed < len(own) {
		*segs = append(*segs, domain.Segment{BlockID: b.ID, Type: b.Type, Text: string(own[consumed:])})
	}
}

// Text returns the visible text of a block, spans included.
func Text(b *domain.Block) string {
	var sb strings.Builder
	for _, seg := range Compose(b) {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// composedStart finds where span id begins in the composed text of b.
func composedStart(b *domain.Block, id string) (int, bool) {
	pos := 0
	var walk func(*domain.Block) bool
	walk = func(p *domain.Block) bool {
		own := []rune(p.Value)
		consumed := 0
		for _, d := range sortedDescendants(p) {
			off := spanOffset(d, len(own), consumed)
			pos += off - consumed
			consumed = off
			if d.ID == id {
				return true
			}
			if walk(d) {
				return true
			}
		}
		pos += len(own) - consumed
		return false
	}
	found := walk(b)
	return pos, found
}

// placement is a direct span's range in its parent's composed text.
type placement struct {
	span       *domain.Block
	start, end int
}

func placements(b *domain.Block) []placement {
	own := []rune(b.Value)
	var out []placement
	pos, consumed := 0, 0
	for _, d := range sortedDescendants(b) {
		off := spanOffset(d, len(own), consumed)
		pos += off - consumed
		consumed = off
		n := len([]rune(Text(d)))
		out = append(out, placement{span: d, start: pos, end: pos + n})
		pos += n
	}
	return out
}

func sortedDescendants(b *domain.Block) []*domain.Block {
	if len(b.Descendants) == 0 {
		return nil
	}
	ds := slices.Clone(b.Descendants)
	slices.SortStableFunc(ds, func(x, y *domain.Block) int {
		return max(x.OffsetToParent, 0) - max(y.OffsetToParent, 0)
	})
	return ds
}

// spanOffset clamps a span's anchor into [consumed, n].
func spanOffset(d *domain.Block, n, consumed int) int {
	off := min(max(d.OffsetToParent, 0), n)
	return max(off, consumed)
}
