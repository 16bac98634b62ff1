package section

import (
	"sort"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/utils"
)

// Sections is the ordered, name-unique, non-overlapping collection of
// Section values belonging to one module.
type Sections struct {
	items  []Section
	byName map[string]int
}

// NewSections returns an empty collection.
func NewSections() *Sections {
	return &Sections{byName: make(map[string]int)}
}

// Add inserts section, rejecting duplicate names and overlaps.
func (s *Sections) Add(sec Section) error {
	if _, exists := s.byName[sec.Name]; exists {
		return nitroerr.Newf(nitroerr.SectionInvariant, "section %q already exists", sec.Name)
	}
	for _, other := range s.items {
		if sec.OverlapsWith(other) {
			return nitroerr.Newf(nitroerr.SectionInvariant, "section %q overlaps with %q", sec.Name, other.Name)
		}
	}
	s.byName[sec.Name] = len(s.items)
	s.items = append(s.items, sec)
	return nil
}

// Len returns the number of sections.
func (s *Sections) Len() int { return len(s.items) }

// ByName looks up a section by name.
func (s *Sections) ByName(name string) (Section, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Section{}, false
	}
	return s.items[i], true
}

// All returns sections in insertion order. The returned slice must not be
// mutated.
func (s *Sections) All() []Section {
	return s.items
}

// SortedByAddress returns a new slice of sections ordered by ascending
// start address.
func (s *Sections) SortedByAddress() []Section {
	sorted := make([]Section, len(s.items))
	copy(sorted, s.items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}

// ByContainedAddress returns the section whose range contains addr. The
// non-overlap invariant makes the match unique.
func (s *Sections) ByContainedAddress(addr uint32) (Section, bool) {
	for _, sec := range s.items {
		if sec.Contains(addr) {
			return sec, true
		}
	}
	return Section{}, false
}

// BaseAddress returns the lowest start address among all sections.
func (s *Sections) BaseAddress() (uint32, bool) {
	if len(s.items) == 0 {
		return 0, false
	}
	starts := utils.Map(s.items, func(sec Section) uint32 { return sec.Start })
	return utils.Min(starts), true
}

// BssRange returns the union-hull [min_start, max_end) across bss
// sections only.
func (s *Sections) BssRange() (start, end uint32, ok bool) {
	var bss []Section
	for _, sec := range s.items {
		if sec.Kind == Bss {
			bss = append(bss, sec)
		}
	}
	if len(bss) == 0 {
		return 0, 0, false
	}
	start = utils.Min(utils.Map(bss, func(sec Section) uint32 { return sec.Start }))
	end = utils.Max(utils.Map(bss, func(sec Section) uint32 { return sec.End }))
	return start, end, true
}
