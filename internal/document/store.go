package document

import (
	"fmt"

	"github.com/google/uuid"

	"blockeditor/internal/domain"
)

// Store holds the document: top-level blocks in display order, and a flat
// index from id to every block and nested span.
type Store struct {
	blocks []*domain.Block
	index  map[string]*domain.Block
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator used for new blocks.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore creates a document holding a single empty paragraph.
func NewStore(opts ...Option) *Store {
	s := &Store{
		index: make(map[string]*domain.Block),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	first := &domain.Block{
		ID:           s.newID(),
		Type:         domain.ElementParagraph,
		DisplayIndex: 0,
	}
	s.blocks = []*domain.Block{first}
	s.index[first.ID] = first
	return s
}

// Len returns the number of top-level blocks.
func (s *Store) Len() int {
	return len(s.blocks)
}

// Blocks returns a deep copy of the top-level blocks in display order.
func (s *Store) Blocks() []*domain.Block {
	out := make([]*domain.Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b.Clone()
	}
	return out
}

// FindByDisplayIndex returns a copy of the top-level block at position i.
func (s *Store) FindByDisplayIndex(i int) (*domain.Block, error) {
	if i < 0 || i >= len(s.blocks) {
		return nil, fmt.Errorf("display index %d: %w", i, ErrNotFound)
	}
	return s.blocks[i].Clone(), nil
}

// FindByID returns a copy of the block or nested span with the given id.
func (s *Store) FindByID(id string) (*domain.Block, error) {
	b, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// Owner returns a copy of the top-level block that contains id. For a
// top-level id that is the block itself.
func (s *Store) Owner(id string) (*domain.Block, error) {
	b, err := s.owner(id)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// ComposedStart returns the offset at which id's own text begins inside the
// composed text of its top-level block.
func (s *Store) ComposedStart(id string) (int, error) {
	owner, err := s.owner(id)
	if err != nil {
		return 0, err
	}
	if owner.ID == id {
		return 0, nil
	}
	start, ok := composedStart(owner, id)
	if !ok {
		return 0, fmt.Errorf("span %s: %w", id, ErrNotFound)
	}
	return start, nil
}

func (s *Store) lookup(id string) (*domain.Block, error) {
	b, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (s *Store) owner(id string) (*domain.Block, error) {
	b, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	for !b.IsTopLevel() {
		if b, err = s.lookup(b.ParentID); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// insertAt places b at display position pos and shifts everything after it.
func (s *Store) insertAt(pos int, b *domain.Block) {
	s.blocks = append(s.blocks, nil)
	copy(s.blocks[pos+1:], s.blocks[pos:])
	s.blocks[pos] = b
	s.register(b)
	s.reindex(pos)
}

// removeAt drops the block at pos, with its spans, and closes the gap.
func (s *Store) removeAt(pos int) *domain.Block {
	b := s.blocks[pos]
	copy(s.blocks[pos:], s.blocks[pos+1:])
	s.blocks[len(s.blocks)-1] = nil
	s.blocks = s.blocks[:len(s.blocks)-1]
	s.unregister(b)
	s.reindex(pos)
	return b
}

func (s *Store) reindex(from int) {
	for i := from; i < len(s.blocks); i++ {
		s.blocks[i].DisplayIndex = i
	}
}

func (s *Store) register(b *domain.Block) {
	s.index[b.ID] = b
	for _, d := range b.Descendants {
		s.register(d)
	}
}

func (s *Store) unregister(b *domain.Block) {
	delete(s.index, b.ID)
	for _, d := range b.Descendants {
		s.unregister(d)
	}
}
