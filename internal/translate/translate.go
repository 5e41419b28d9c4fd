// Package translate maps between the caller-facing model and the
// engine-facing layout representation.
//
// All functions are pure: inputs are never modified and outputs never share
// slices or maps with their inputs. Settings survive a round trip through
// Parameters without loss, which is what lets a client download settings,
// edit them and upload them again.
package translate

import (
	"sort"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
)

// PointsToLayout converts caller points to engine points.
func PointsToLayout(points []model.Point) []layout.Point {
	out := make([]layout.Point, len(points))
	for i, p := range points {
		out[i] = layout.Point{X: p.X, Y: p.Y}
	}
	return out
}

// PointsToModel converts engine points to caller points.
func PointsToModel(points []layout.Point) []model.Point {
	out := make([]model.Point, len(points))
	for i, p := range points {
		out[i] = model.Point{X: p.X, Y: p.Y}
	}
	return out
}

// PolygonToRegion converts a caller polygon into a region.
func PolygonToRegion(p model.Polygon) layout.Region {
	return layout.Region{
		ID:     p.ID,
		Type:   layout.RegionType(p.Type),
		Points: PointsToLayout(p.Points),
	}
}

// RegionToPolygon converts a region into an absolute caller polygon.
func RegionToPolygon(r layout.Region) model.Polygon {
	return model.Polygon{
		ID:     r.ID,
		Type:   string(r.Type),
		Points: PointsToModel(r.Points),
	}
}

// PolygonToPointList converts a caller polygon into a named point list.
func PolygonToPointList(p model.Polygon) layout.PointList {
	return layout.PointList{
		ID:       p.ID,
		Type:     layout.RegionType(p.Type),
		Points:   PointsToLayout(p.Points),
		Relative: p.IsRelative,
	}
}

// PointListToPolygon converts a named point list into a caller polygon.
func PointListToPolygon(pl layout.PointList) model.Polygon {
	return model.Polygon{
		ID:         pl.ID,
		Type:       string(pl.Type),
		Points:     PointsToModel(pl.Points),
		IsRelative: pl.Relative,
	}
}

// RegionsToSegmentation maps regions by id and attaches the page id.
func RegionsToSegmentation(regions []layout.Region, pageID int) *model.PageSegmentation {
	seg := model.NewPageSegmentation(pageID, model.StatusSuccess)
	for _, r := range regions {
		seg.Segments[r.ID] = RegionToPolygon(r)
	}
	return seg
}

// ResultToSegmentation converts a result, including its reading order.
func ResultToSegmentation(result *layout.Result, pageID int, status model.SegmentationStatus) *model.PageSegmentation {
	seg := RegionsToSegmentation(result.Regions, pageID)
	seg.Status = status
	seg.ReadingOrder = append(seg.ReadingOrder, result.ReadingOrder...)
	return seg
}

// SegmentationToResult converts a caller segmentation into a result.
//
// Regions follow the reading order first; segments outside it come after,
// sorted by id, so the output does not depend on map iteration order.
func SegmentationToResult(seg *model.PageSegmentation) *layout.Result {
	result := &layout.Result{
		Regions:      make([]layout.Region, 0, len(seg.Segments)),
		ReadingOrder: make([]string, 0, len(seg.ReadingOrder)),
	}

	placed := make(map[string]bool, len(seg.Segments))
	for _, id := range seg.ReadingOrder {
		p, ok := seg.Segments[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		result.Regions = append(result.Regions, PolygonToRegion(p))
		result.ReadingOrder = append(result.ReadingOrder, id)
	}

	rest := make([]string, 0, len(seg.Segments)-len(placed))
	for id := range seg.Segments {
		if !placed[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		result.Regions = append(result.Regions, PolygonToRegion(seg.Segments[id]))
	}
	return result
}

// SettingsToPointListManager builds the manual point lists of one page.
// Pages without settings yield an empty manager.
func SettingsToPointListManager(s *model.Settings, pageID int) *layout.PointListManager {
	plm := layout.NewPointListManager()
	ps, ok := s.Pages[pageID]
	if !ok || ps == nil {
		return plm
	}
	for id, p := range ps.Segments {
		pl := PolygonToPointList(p)
		pl.ID = id
		plm.Segments[id] = pl
	}
	for id, p := range ps.Cuts {
		pl := PolygonToPointList(p)
		pl.ID = id
		plm.Cuts[id] = pl
	}
	return plm
}

// PointListManagerToPageSettings is the inverse of SettingsToPointListManager.
func PointListManagerToPageSettings(plm *layout.PointListManager, pageID int) *model.PageSettings {
	ps := model.NewPageSettings(pageID)
	if plm == nil {
		return ps
	}
	for id, pl := range plm.Segments {
		ps.Segments[id] = PointListToPolygon(pl)
	}
	for id, pl := range plm.Cuts {
		ps.Cuts[id] = PointListToPolygon(pl)
	}
	return ps
}

// SettingsToParameters converts settings into geometry-unaware parameters.
func SettingsToParameters(s *model.Settings) *layout.Parameters {
	return settingsToParameters(s, nil)
}

// ParametersToSettings converts parameters into settings for a book.
//
// Every page of the book gets a PageSettings entry; pages with manual point
// lists that are not part of the book are kept as well.
func ParametersToSettings(p *layout.Parameters, book *model.Book) *model.Settings {
	s := model.NewSettings(0)
	if book != nil {
		s.BookID = book.ID
	}

	s.Parameters[model.ParamBinaryThreshold] = p.BinaryThreshold
	s.Parameters[model.ParamTextDilationX] = p.TextDilationX
	s.Parameters[model.ParamTextDilationY] = p.TextDilationY
	s.Parameters[model.ParamImageDilationX] = p.ImageDilationX
	s.Parameters[model.ParamImageDilationY] = p.ImageDilationY
	s.ImageSegType = string(p.ImageSegType)
	s.Combine = p.CombineImages

	for _, rule := range p.RegionManager.Rules() {
		rs := &model.RegionSettings{
			Type:             string(rule.Type),
			MinSize:          rule.MinSize,
			MaxOccurances:    rule.MaxOccurrences,
			PriorityPosition: string(rule.Priority),
			Polygons:         make(map[string]model.Polygon, len(rule.Positions)),
		}
		for _, pl := range rule.Positions {
			rs.Polygons[pl.ID] = PointListToPolygon(pl)
		}
		s.Regions[rs.Type] = rs
	}

	if book != nil {
		for _, page := range book.Pages {
			s.Pages[page.ID] = PointListManagerToPageSettings(p.RegionManager.PointLists(page.ID), page.ID)
		}
	}
	for _, pageID := range p.RegionManager.Pages() {
		if _, ok := s.Pages[pageID]; !ok {
			s.Pages[pageID] = PointListManagerToPageSettings(p.RegionManager.PointLists(pageID), pageID)
		}
	}
	return s
}

// settingsToParameters builds parameters from settings on top of prior.
// Settings win on every field they carry; prior fills the rest.
func settingsToParameters(s *model.Settings, prior *layout.Parameters) *layout.Parameters {
	var p *layout.Parameters
	if prior != nil {
		p = prior.Clone()
	} else {
		p = layout.NewParameters(layout.NewEmptyRegionManager(), 0)
	}

	if v, ok := s.Parameters[model.ParamBinaryThreshold]; ok {
		p.BinaryThreshold = v
	}
	if v, ok := s.Parameters[model.ParamTextDilationX]; ok {
		p.TextDilationX = v
	}
	if v, ok := s.Parameters[model.ParamTextDilationY]; ok {
		p.TextDilationY = v
	}
	if v, ok := s.Parameters[model.ParamImageDilationX]; ok {
		p.ImageDilationX = v
	}
	if v, ok := s.Parameters[model.ParamImageDilationY]; ok {
		p.ImageDilationY = v
	}
	if s.ImageSegType != "" {
		p.ImageSegType = layout.ImageSegType(s.ImageSegType)
	}
	p.CombineImages = s.Combine

	for key, rs := range s.Regions {
		if rs == nil {
			continue
		}
		typ := rs.Type
		if typ == "" {
			typ = key
		}
		rule := &layout.RegionRule{
			Type:           layout.RegionType(typ),
			MinSize:        rs.MinSize,
			MaxOccurrences: rs.MaxOccurances,
			Priority:       layout.PriorityPosition(rs.PriorityPosition),
			Positions:      make([]layout.PointList, 0, len(rs.Polygons)),
		}
		ids := make([]string, 0, len(rs.Polygons))
		for id := range rs.Polygons {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			pl := PolygonToPointList(rs.Polygons[id])
			pl.ID = id
			rule.Positions = append(rule.Positions, pl)
		}
		p.RegionManager.SetRule(rule)
	}

	for pageID := range s.Pages {
		p.RegionManager.SetPointLists(pageID, SettingsToPointListManager(s, pageID))
	}
	return p
}
