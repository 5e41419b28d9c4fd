package layout

import (
	"fmt"
	"sort"
)

// PriorityPosition breaks ties when more candidates match a rule than its
// MaxOccurrences allows: the candidates closest to that page edge win.
type PriorityPosition string

const (
	PriorityNone   PriorityPosition = ""
	PriorityTop    PriorityPosition = "TOP"
	PriorityBottom PriorityPosition = "BOTTOM"
	PriorityLeft   PriorityPosition = "LEFT"
	PriorityRight  PriorityPosition = "RIGHT"
)

// Unlimited disables the MaxOccurrences limit of a rule.
const Unlimited = -1

// PointList is a named polygon. Relative point lists hold page fractions.
type PointList struct {
	ID       string
	Type     RegionType
	Points   []Point
	Relative bool
}

// Clone returns a deep copy.
func (pl PointList) Clone() PointList {
	c := pl
	c.Points = append([]Point(nil), pl.Points...)
	return c
}

// RegionRule decides which detected areas become regions of a type.
type RegionRule struct {
	Type           RegionType
	MinSize        int
	MaxOccurrences int
	Priority       PriorityPosition

	// Positions restrict where on the page the type may occur.
	Positions []PointList
}

// Clone returns a deep copy.
func (r *RegionRule) Clone() *RegionRule {
	c := *r
	c.Positions = make([]PointList, len(r.Positions))
	for i, pl := range r.Positions {
		c.Positions[i] = pl.Clone()
	}
	return &c
}

// PointListManager holds the manual edits of one page.
type PointListManager struct {
	// Segments are fixed regions the engine keeps verbatim.
	Segments map[string]PointList

	// Cuts are polylines separating touching content.
	Cuts map[string]PointList
}

// NewPointListManager returns an empty manager.
func NewPointListManager() *PointListManager {
	return &PointListManager{
		Segments: make(map[string]PointList),
		Cuts:     make(map[string]PointList),
	}
}

// Clone returns a deep copy.
func (m *PointListManager) Clone() *PointListManager {
	c := NewPointListManager()
	for id, pl := range m.Segments {
		c.Segments[id] = pl.Clone()
	}
	for id, pl := range m.Cuts {
		c.Cuts[id] = pl.Clone()
	}
	return c
}

// RegionManager owns the region rules of a book and the manual point lists
// of its pages.
type RegionManager struct {
	rules      map[RegionType]*RegionRule
	pointLists map[int]*PointListManager
}

// NewRegionManager returns a manager seeded with the default rules.
func NewRegionManager() *RegionManager {
	rm := NewEmptyRegionManager()
	for _, r := range defaultRules() {
		rm.SetRule(r)
	}
	return rm
}

// NewEmptyRegionManager returns a manager without rules.
func NewEmptyRegionManager() *RegionManager {
	return &RegionManager{
		rules:      make(map[RegionType]*RegionRule),
		pointLists: make(map[int]*PointListManager),
	}
}

// Rule returns the rule of a type, or nil.
func (rm *RegionManager) Rule(t RegionType) *RegionRule {
	return rm.rules[t]
}

// SetRule adds or replaces the rule of r.Type.
func (rm *RegionManager) SetRule(r *RegionRule) {
	rm.rules[r.Type] = r
}

// RemoveRule deletes the rule of a type.
func (rm *RegionManager) RemoveRule(t RegionType) {
	delete(rm.rules, t)
}

// Rules returns all rules sorted by type.
func (rm *RegionManager) Rules() []*RegionRule {
	rules := make([]*RegionRule, 0, len(rm.rules))
	for _, r := range rm.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Type < rules[j].Type
	})
	return rules
}

// PointLists returns the manual point lists of a page, or nil.
func (rm *RegionManager) PointLists(page int) *PointListManager {
	return rm.pointLists[page]
}

// SetPointLists installs the manual point lists of a page.
func (rm *RegionManager) SetPointLists(page int, m *PointListManager) {
	if m == nil {
		delete(rm.pointLists, page)
		return
	}
	rm.pointLists[page] = m
}

// Pages returns the page indices with manual point lists, ascending.
func (rm *RegionManager) Pages() []int {
	pages := make([]int, 0, len(rm.pointLists))
	for p := range rm.pointLists {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Clone returns a deep copy.
func (rm *RegionManager) Clone() *RegionManager {
	c := NewEmptyRegionManager()
	for t, r := range rm.rules {
		c.rules[t] = r.Clone()
	}
	for p, m := range rm.pointLists {
		c.pointLists[p] = m.Clone()
	}
	return c
}

func defaultRules() []*RegionRule {
	whole := func(t RegionType) []PointList {
		return []PointList{relativeRect(t, 0, 0, 1, 1, 0)}
	}
	return []*RegionRule{
		{Type: TypeImage, MinSize: 1100, MaxOccurrences: Unlimited, Positions: whole(TypeImage)},
		{Type: TypeParagraph, MinSize: 0, MaxOccurrences: Unlimited, Positions: whole(TypeParagraph)},
		{
			Type: TypeMarginalia, MinSize: 1100, MaxOccurrences: Unlimited,
			Positions: []PointList{
				relativeRect(TypeMarginalia, 0, 0, 0.25, 1, 0),
				relativeRect(TypeMarginalia, 0.75, 0, 1, 1, 1),
			},
		},
		{
			Type: TypePageNumber, MinSize: 1100, MaxOccurrences: 1, Priority: PriorityTop,
			Positions: []PointList{relativeRect(TypePageNumber, 0, 0, 1, 0.2, 0)},
		},
		{Type: TypeIgnore, MinSize: 0, MaxOccurrences: Unlimited},
	}
}

func relativeRect(t RegionType, x1, y1, x2, y2 float64, n int) PointList {
	return PointList{
		ID:       fmt.Sprintf("%s-%d", t, n),
		Type:     t,
		Relative: true,
		Points:   []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}},
	}
}
