package search

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/tables"
)

const defaultMemoSize = 32

// Session is one open search dialog bound to a target table. It owns the
// criteria, the filtered results and the pagination over them.
//
// Every criteria change runs in two steps: the results are recomputed, then
// the paginator is reset to page 1 and the scroll hook fires. Observers never
// see new results paired with an old page.
type Session struct {
	entries  []model.CatalogEntry
	criteria model.SearchCriteria
	filtered []model.CatalogEntry
	pager    *Paginator
	tableID  string

	memo    *lru.Cache[string, []model.CatalogEntry]
	onReset func()
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	memoSize int
	onReset  func()
}

// WithScrollReset registers a hook called after every page reset, used by the
// result list to scroll back to the top.
func WithScrollReset(fn func()) Option {
	return func(o *sessionOptions) { o.onReset = fn }
}

// WithMemoSize bounds the number of filter results kept for reuse. Zero or
// less disables the memo.
func WithMemoSize(n int) Option {
	return func(o *sessionOptions) { o.memoSize = n }
}

// NewSession returns a Session over the loaded catalog entries with empty
// criteria and no target table.
func NewSession(entries []model.CatalogEntry, pageSize int, opts ...Option) *Session {
	o := sessionOptions{memoSize: defaultMemoSize}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		entries: entries,
		pager:   NewPaginator(pageSize),
		onReset: o.onReset,
	}
	if o.memoSize > 0 {
		memo, err := lru.New[string, []model.CatalogEntry](o.memoSize)
		if err == nil {
			s.memo = memo
		}
	}
	s.apply(model.SearchCriteria{})
	return s
}

// SetScrollReset replaces the scroll hook.
func (s *Session) SetScrollReset(fn func()) { s.onReset = fn }

// Open rebinds the session to a table. Query, grades, majors and credits are
// kept from the previous search; days and times are replaced by the clicked
// cell, or cleared when the seed has none.
func (s *Session) Open(seed model.CellSeed) {
	s.tableID = seed.TableID
	next := s.criteria.Clone()
	next.Days = nil
	next.Times = nil
	if seed.Day != nil {
		next.Days = []model.Day{*seed.Day}
	}
	if seed.Time != nil {
		next.Times = []int{*seed.Time}
	}
	s.apply(next)
}

// TableID returns the table lectures are added to.
func (s *Session) TableID() string { return s.tableID }

// Criteria returns a copy of the current criteria.
func (s *Session) Criteria() model.SearchCriteria { return s.criteria.Clone() }

// SetCriteria replaces all criteria at once.
func (s *Session) SetCriteria(c model.SearchCriteria) { s.apply(c.Clone()) }

// SetQuery updates the free-text query.
func (s *Session) SetQuery(q string) {
	if q == s.criteria.Query {
		return
	}
	next := s.criteria.Clone()
	next.Query = q
	s.apply(next)
}

// SetCredits updates the credit filter. Nil clears it.
func (s *Session) SetCredits(credits *int) {
	next := s.criteria.Clone()
	next.Credits = nil
	if credits != nil {
		v := *credits
		next.Credits = &v
	}
	s.apply(next)
}

// SetGrades replaces the grade set.
func (s *Session) SetGrades(grades []int) {
	next := s.criteria.Clone()
	next.Grades = append([]int(nil), grades...)
	s.apply(next)
}

// SetDays replaces the day set.
func (s *Session) SetDays(days []model.Day) {
	next := s.criteria.Clone()
	next.Days = append([]model.Day(nil), days...)
	s.apply(next)
}

// SetTimes replaces the time-slot set.
func (s *Session) SetTimes(times []int) {
	next := s.criteria.Clone()
	next.Times = append([]int(nil), times...)
	s.apply(next)
}

// SetMajors replaces the major set.
func (s *Session) SetMajors(majors []string) {
	next := s.criteria.Clone()
	next.Majors = append([]string(nil), majors...)
	s.apply(next)
}

// ToggleGrade adds or removes one grade.
func (s *Session) ToggleGrade(g int) {
	next := s.criteria.Clone()
	next.Grades = toggle(next.Grades, g)
	s.apply(next)
}

// ToggleDay adds or removes one day.
func (s *Session) ToggleDay(d model.Day) {
	next := s.criteria.Clone()
	next.Days = toggle(next.Days, d)
	s.apply(next)
}

// ToggleTime adds or removes one time slot.
func (s *Session) ToggleTime(slot int) {
	next := s.criteria.Clone()
	next.Times = toggle(next.Times, slot)
	s.apply(next)
}

// ToggleMajor adds or removes one major.
func (s *Session) ToggleMajor(major string) {
	next := s.criteria.Clone()
	next.Majors = toggle(next.Majors, major)
	s.apply(next)
}

// Results returns every entry matching the criteria.
func (s *Session) Results() []model.CatalogEntry { return s.filtered }

// Count returns the number of matching entries.
func (s *Session) Count() int { return len(s.filtered) }

// Visible returns the revealed prefix of the results.
func (s *Session) Visible() []model.CatalogEntry {
	return Visible(s.filtered, s.pager.Page(), s.pager.Size())
}

// Page returns the current page.
func (s *Session) Page() int { return s.pager.Page() }

// LastPage returns the last page for the current results.
func (s *Session) LastPage() int { return s.pager.LastPage() }

// Observe forwards the sentinel visibility signal and reports whether more
// rows were revealed.
func (s *Session) Observe(intersecting bool) bool { return s.pager.Observe(intersecting) }

// AddTo places every block of the entry on the session's table.
func (s *Session) AddTo(sets tables.Sets, entry model.CatalogEntry) (tables.Sets, error) {
	out, err := sets.AddEntries(s.tableID, entry.Blocks)
	if err != nil {
		return sets, fmt.Errorf("failed to add %s: %w", entry.ID, err)
	}
	return out, nil
}

func (s *Session) apply(next model.SearchCriteria) {
	s.criteria = next
	s.filtered = s.filter(next)

	s.pager.Reset(len(s.filtered))
	if s.onReset != nil {
		s.onReset()
	}
}

func (s *Session) filter(c model.SearchCriteria) []model.CatalogEntry {
	if s.memo == nil {
		return Filter(s.entries, c)
	}
	key := fingerprint(c)
	if hit, ok := s.memo.Get(key); ok {
		return hit
	}
	out := Filter(s.entries, c)
	s.memo.Add(key, out)
	return out
}

// fingerprint is an order-independent key for a set of criteria.
func fingerprint(c model.SearchCriteria) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(c.Query))
	b.WriteByte(0)
	writeInts(&b, c.Grades)
	days := make([]int, len(c.Days))
	for i, d := range c.Days {
		days[i] = int(d)
	}
	writeInts(&b, days)
	writeInts(&b, c.Times)
	majors := slices.Clone(c.Majors)
	slices.Sort(majors)
	majors = slices.Compact(majors)
	b.WriteString(strings.Join(majors, "\x1f"))
	b.WriteByte(0)
	if c.Credits != nil && *c.Credits > 0 {
		b.WriteString(strconv.Itoa(*c.Credits))
	}
	return b.String()
}

func writeInts(b *strings.Builder, values []int) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	for i, v := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(0)
}

func toggle[T comparable](values []T, v T) []T {
	if i := slices.Index(values, v); i >= 0 {
		return slices.Delete(values, i, i+1)
	}
	return append(values, v)
}
