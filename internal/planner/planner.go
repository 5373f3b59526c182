// Package planner ties the catalog, the search dialog and the timetables
// together. A Planner is owned by a single goroutine (the UI loop); only the
// catalog it wraps is safe for concurrent use.
package planner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/search"
	"github.com/verte-zerg/tuitable/internal/tables"
)

var (
	// ErrLastTable is returned when removing the only remaining table.
	ErrLastTable = errors.New("cannot remove the last table")
	// ErrCatalogNotLoaded is returned when searching before the catalog is loaded.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
	// ErrNoSearch is returned when adding a lecture with no search open.
	ErrNoSearch = errors.New("no search open")
)

// Planner holds the user's timetables and the search session feeding them.
type Planner struct {
	catalog  *catalog.Catalog
	logger   *zap.Logger
	pageSize int

	sets    tables.Sets
	active  string
	session *search.Session
}

// New returns a Planner with a single empty table.
func New(cat *catalog.Catalog, pageSize int, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		catalog:  cat,
		logger:   logger,
		pageSize: pageSize,
		sets:     tables.New(),
		active:   tables.DefaultTableID,
	}
}

// Load fetches the catalog if it is not loaded yet.
func (p *Planner) Load(ctx context.Context) error {
	if _, err := p.catalog.Load(ctx); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	return nil
}

// CatalogState reports the catalog lifecycle stage.
func (p *Planner) CatalogState() catalog.State { return p.catalog.State() }

// Majors returns the distinct majors of the loaded catalog.
func (p *Planner) Majors() []string { return p.catalog.Majors() }

// Tables returns the current timetables.
func (p *Planner) Tables() tables.Sets { return p.sets }

// Active returns the id of the table shown in the grid.
func (p *Planner) Active() string { return p.active }

// SetActive switches the table shown in the grid.
func (p *Planner) SetActive(id string) error {
	if !p.sets.Has(id) {
		return fmt.Errorf("%w: %q", tables.ErrInvalidTable, id)
	}
	p.active = id
	return nil
}

// CycleActive moves the active table by delta positions, wrapping around.
func (p *Planner) CycleActive(delta int) string {
	ids := p.sets.IDs()
	if len(ids) == 0 {
		return p.active
	}
	cur := 0
	for i, id := range ids {
		if id == p.active {
			cur = i
			break
		}
	}
	next := ((cur+delta)%len(ids) + len(ids)) % len(ids)
	p.active = ids[next]
	return p.active
}

// OpenSearch opens the search dialog for a table cell. The catalog must be
// loaded; the session is created on first use and reused afterwards so the
// query, grade, major and credit filters carry over between openings.
func (p *Planner) OpenSearch(seed model.CellSeed) (*search.Session, error) {
	if p.catalog.State() != catalog.StateLoaded {
		return nil, ErrCatalogNotLoaded
	}
	if !p.sets.Has(seed.TableID) {
		return nil, fmt.Errorf("%w: %q", tables.ErrInvalidTable, seed.TableID)
	}
	if p.session == nil {
		entries, err := p.catalog.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		p.session = search.NewSession(entries, p.pageSize)
	}
	p.session.Open(seed)
	p.logger.Debug("search opened", zap.String("table", seed.TableID))
	return p.session, nil
}

// Session returns the search session, or nil before the first OpenSearch.
func (p *Planner) Session() *search.Session { return p.session }

// AddLecture places every block of entry on the search session's table.
func (p *Planner) AddLecture(entry model.CatalogEntry) error {
	if p.session == nil {
		return ErrNoSearch
	}
	sets, err := p.session.AddTo(p.sets, entry)
	if err != nil {
		return err
	}
	p.sets = sets
	p.logger.Info("lecture added",
		zap.String("table", p.session.TableID()),
		zap.String("lecture", entry.ID),
		zap.Int("blocks", len(entry.Blocks)),
	)
	return nil
}

// NewTable adds an empty table and makes it active.
func (p *Planner) NewTable() string {
	sets, id := p.sets.Create()
	p.sets = sets
	p.active = id
	p.logger.Info("table created", zap.String("table", id))
	return id
}

// DuplicateTable copies a table and makes the copy active.
func (p *Planner) DuplicateTable(id string) (string, error) {
	sets, newID, err := p.sets.Duplicate(id)
	if err != nil {
		return "", err
	}
	p.sets = sets
	p.active = newID
	p.logger.Info("table duplicated", zap.String("from", id), zap.String("table", newID))
	return newID, nil
}

// CanRemove reports whether a table may be removed.
func (p *Planner) CanRemove() bool { return p.sets.Len() > 1 }

// RemoveTable deletes a table. The last remaining table cannot be removed.
func (p *Planner) RemoveTable(id string) error {
	if !p.sets.Has(id) {
		return fmt.Errorf("%w: %q", tables.ErrInvalidTable, id)
	}
	if !p.CanRemove() {
		return ErrLastTable
	}
	ids := p.sets.IDs()
	sets, err := p.sets.Remove(id)
	if err != nil {
		return err
	}
	p.sets = sets
	if p.active == id {
		p.active = neighbour(ids, id)
	}
	p.logger.Info("table removed", zap.String("table", id))
	return nil
}

// DeleteBlock removes the block covering a cell of a table.
func (p *Planner) DeleteBlock(id string, day model.Day, slot int) error {
	sets, err := p.sets.DeleteBlock(id, day, slot)
	if err != nil {
		return err
	}
	p.sets = sets
	return nil
}

// neighbour picks the table shown after id is removed: the previous one, or
// the next one when id was first.
func neighbour(ids []string, id string) string {
	for i, cur := range ids {
		if cur != id {
			continue
		}
		if i > 0 {
			return ids[i-1]
		}
		if len(ids) > 1 {
			return ids[1]
		}
	}
	return ""
}
