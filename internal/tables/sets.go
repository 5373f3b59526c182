// Package tables manages the named timetables a user is assembling.
//
// Sets is an immutable value: every operation returns a new Sets and leaves
// the receiver untouched, so holders of an older value keep a consistent
// snapshot. Unknown table ids yield ErrInvalidTable and the unchanged Sets.
//
// Keeping at least one table is the caller's job. Remove will happily delete
// the last table.
package tables

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuitable/internal/model"
)

// ErrInvalidTable is returned for a table id that is not in the Sets.
var ErrInvalidTable = errors.New("invalid table")

// DefaultTableID is the id of the table a fresh Sets starts with.
const DefaultTableID = "schedule-1"

// NewTableID generates keys for tables created by Duplicate and Create.
var NewTableID = func() string {
	return "schedule-" + uuid.NewString()
}

// Sets maps table ids to their placed blocks, in table creation order.
type Sets struct {
	order  []string
	blocks map[string][]model.ScheduleBlock
}

// New returns Sets holding empty tables with the given ids, or a single
// DefaultTableID table when none are given. Duplicate ids are kept once.
func New(ids ...string) Sets {
	if len(ids) == 0 {
		ids = []string{DefaultTableID}
	}
	s := Sets{blocks: make(map[string][]model.ScheduleBlock, len(ids))}
	for _, id := range ids {
		if _, ok := s.blocks[id]; ok {
			continue
		}
		s.order = append(s.order, id)
		s.blocks[id] = nil
	}
	return s
}

// Len returns the number of tables.
func (s Sets) Len() int { return len(s.order) }

// IDs returns the table ids in creation order.
func (s Sets) IDs() []string { return append([]string(nil), s.order...) }

// Has reports whether the table exists.
func (s Sets) Has(id string) bool {
	_, ok := s.blocks[id]
	return ok
}

// Blocks returns a copy of the blocks placed on a table.
func (s Sets) Blocks(id string) ([]model.ScheduleBlock, bool) {
	blocks, ok := s.blocks[id]
	if !ok {
		return nil, false
	}
	return cloneBlocks(blocks), true
}

// BlockAt returns the first block on the table covering day and slot.
func (s Sets) BlockAt(id string, day model.Day, slot int) (model.ScheduleBlock, bool) {
	for _, b := range s.blocks[id] {
		if b.Day == day && b.Contains(slot) {
			return b, true
		}
	}
	return model.ScheduleBlock{}, false
}

// AddEntries appends blocks to a table.
func (s Sets) AddEntries(id string, entries []model.ScheduleBlock) (Sets, error) {
	current, ok := s.blocks[id]
	if !ok {
		return s, invalid(id)
	}
	next := make([]model.ScheduleBlock, 0, len(current)+len(entries))
	next = append(next, current...)
	next = append(next, cloneBlocks(entries)...)
	return s.with(id, next), nil
}

// Create adds a new empty table and returns its id.
func (s Sets) Create() (Sets, string) {
	id := s.freshID()
	out := s.clone()
	out.order = append(out.order, id)
	out.blocks[id] = nil
	return out, id
}

// Duplicate adds a new table holding a copy of the source table's blocks and
// returns the new id. The copy shares no storage with the source.
func (s Sets) Duplicate(id string) (Sets, string, error) {
	current, ok := s.blocks[id]
	if !ok {
		return s, "", invalid(id)
	}
	newID := s.freshID()
	out := s.clone()
	out.order = append(out.order, newID)
	out.blocks[newID] = cloneBlocks(current)
	return out, newID, nil
}

// Remove deletes a table. Callers must make sure another table remains.
func (s Sets) Remove(id string) (Sets, error) {
	if _, ok := s.blocks[id]; !ok {
		return s, invalid(id)
	}
	out := Sets{
		order:  make([]string, 0, len(s.order)-1),
		blocks: make(map[string][]model.ScheduleBlock, len(s.blocks)-1),
	}
	for _, key := range s.order {
		if key == id {
			continue
		}
		out.order = append(out.order, key)
		out.blocks[key] = s.blocks[key]
	}
	return out, nil
}

// DeleteBlock removes every block on the table that falls on day and covers
// slot, so clicking any cell of a multi-slot block removes the whole block.
func (s Sets) DeleteBlock(id string, day model.Day, slot int) (Sets, error) {
	current, ok := s.blocks[id]
	if !ok {
		return s, invalid(id)
	}
	next := make([]model.ScheduleBlock, 0, len(current))
	for _, b := range current {
		if b.Day == day && b.Contains(slot) {
			continue
		}
		next = append(next, b)
	}
	return s.with(id, next), nil
}

func (s Sets) with(id string, blocks []model.ScheduleBlock) Sets {
	out := s.clone()
	out.blocks[id] = blocks
	return out
}

// clone copies the order and the map. Block slices are shared: they are never
// modified after being stored.
func (s Sets) clone() Sets {
	out := Sets{
		order:  append(make([]string, 0, len(s.order)+1), s.order...),
		blocks: make(map[string][]model.ScheduleBlock, len(s.blocks)+1),
	}
	for k, v := range s.blocks {
		out.blocks[k] = v
	}
	return out
}

func (s Sets) freshID() string {
	for {
		id := NewTableID()
		if _, taken := s.blocks[id]; !taken {
			return id
		}
	}
}

func cloneBlocks(blocks []model.ScheduleBlock) []model.ScheduleBlock {
	if blocks == nil {
		return nil
	}
	out := make([]model.ScheduleBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

func invalid(id string) error {
	return fmt.Errorf("%w: %q", ErrInvalidTable, id)
}
