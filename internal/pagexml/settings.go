package pagexml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"sort"
	"strconv"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

type settingsElem struct {
	XMLName    xml.Name       `xml:"Settings"`
	Parameters parametersElem `xml:"Parameters"`
	Regions    []ruleElem     `xml:"Regions>Region"`
	Pages      []pageListElem `xml:"Pages>Page"`
}

type parametersElem struct {
	DesiredImageHeight valueElem `xml:"DesiredImageHeight"`
	BinaryThreshold    valueElem `xml:"BinaryThreshold"`
	TextDilationX      valueElem `xml:"TextDilationX"`
	TextDilationY      valueElem `xml:"TextDilationY"`
	ImageDilationX     valueElem `xml:"ImageDilationX"`
	ImageDilationY     valueElem `xml:"ImageDilationY"`
	ImageSegType       string    `xml:"ImageSegType"`
	CombineImages      bool      `xml:"CombineImages"`
}

type valueElem struct {
	Value int `xml:"value,attr"`
}

type ruleElem struct {
	Type             string          `xml:"type,attr"`
	MinSize          int             `xml:"minSize,attr"`
	MaxOccurrences   int             `xml:"maxOccurrences,attr"`
	PriorityPosition string          `xml:"priorityPosition,attr,omitempty"`
	Positions        []pointListElem `xml:"Position"`
}

type pageListElem struct {
	Index    int             `xml:"index,attr"`
	Segments []pointListElem `xml:"Segment"`
	Cuts     []pointListElem `xml:"Cut"`
}

type pointListElem struct {
	ID       string      `xml:"id,attr"`
	Type     string      `xml:"type,attr,omitempty"`
	Relative bool        `xml:"relative,attr,omitempty"`
	Points   []pointElem `xml:"Point"`
}

// WriteSettings builds a settings document from segmentation parameters.
//
// Geometry is not stored: it belongs to the image the parameters are later
// applied to.
func WriteSettings(p *layout.Parameters) (*Document, error) {
	if p == nil {
		return nil, errors.New("failed to write settings: nil parameters")
	}

	root := &settingsElem{
		Parameters: parametersElem{
			DesiredImageHeight: valueElem{p.DesiredImageHeight},
			BinaryThreshold:    valueElem{p.BinaryThreshold},
			TextDilationX:      valueElem{p.TextDilationX},
			TextDilationY:      valueElem{p.TextDilationY},
			ImageDilationX:     valueElem{p.ImageDilationX},
			ImageDilationY:     valueElem{p.ImageDilationY},
			ImageSegType:       string(p.ImageSegType),
			CombineImages:      p.CombineImages,
		},
	}

	rm := p.RegionManager
	if rm == nil {
		rm = layout.NewEmptyRegionManager()
	}
	for _, r := range rm.Rules() {
		re := ruleElem{
			Type:             string(r.Type),
			MinSize:          r.MinSize,
			MaxOccurrences:   r.MaxOccurrences,
			PriorityPosition: string(r.Priority),
		}
		for _, pl := range r.Positions {
			re.Positions = append(re.Positions, encodePointList(pl))
		}
		root.Regions = append(root.Regions, re)
	}

	for _, page := range rm.Pages() {
		plm := rm.PointLists(page)
		pe := pageListElem{Index: page}
		for _, id := range sortedKeys(plm.Segments) {
			pe.Segments = append(pe.Segments, encodePointList(plm.Segments[id]))
		}
		for _, id := range sortedKeys(plm.Cuts) {
			pe.Cuts = append(pe.Cuts, encodePointList(plm.Cuts[id]))
		}
		root.Pages = append(root.Pages, pe)
	}

	return &Document{root: root}, nil
}

// ReadSettings decodes a settings document into parameters finalized for
// the page whose binarized mask is given. A nil mask leaves the parameters
// geometry-unaware.
//
// The region manager holds exactly the rules and point lists of the
// document.
//
// # Errors
//
//   - Returns *ParseError if the document is not a well-formed settings
//     document
func ReadSettings(data []byte, binary *image.Gray) (*layout.Parameters, error) {
	var root settingsElem
	if err := decode(data, &root); err != nil {
		return nil, &ParseError{Doc: "settings", Err: err}
	}

	rm := layout.NewEmptyRegionManager()
	for _, re := range root.Regions {
		rule := &layout.RegionRule{
			Type:           layout.RegionType(re.Type),
			MinSize:        re.MinSize,
			MaxOccurrences: re.MaxOccurrences,
			Priority:       layout.PriorityPosition(re.PriorityPosition),
			Positions:      []layout.PointList{},
		}
		for _, pe := range re.Positions {
			pl, err := decodePointList(pe)
			if err != nil {
				return nil, &ParseError{Doc: "settings", Err: fmt.Errorf("region %q: %w", re.Type, err)}
			}
			rule.Positions = append(rule.Positions, pl)
		}
		rm.SetRule(rule)
	}

	for _, pe := range root.Pages {
		plm := layout.NewPointListManager()
		for _, se := range pe.Segments {
			pl, err := decodePointList(se)
			if err != nil {
				return nil, &ParseError{Doc: "settings", Err: fmt.Errorf("page %d: %w", pe.Index, err)}
			}
			plm.Segments[pl.ID] = pl
		}
		for _, ce := range pe.Cuts {
			pl, err := decodePointList(ce)
			if err != nil {
				return nil, &ParseError{Doc: "settings", Err: fmt.Errorf("page %d: %w", pe.Index, err)}
			}
			plm.Cuts[pl.ID] = pl
		}
		rm.SetPointLists(pe.Index, plm)
	}

	pp := root.Parameters
	p := layout.NewParameters(rm, 0)
	if pp.DesiredImageHeight.Value > 0 {
		p.DesiredImageHeight = pp.DesiredImageHeight.Value
	}
	p.BinaryThreshold = pp.BinaryThreshold.Value
	p.TextDilationX = pp.TextDilationX.Value
	p.TextDilationY = pp.TextDilationY.Value
	p.ImageDilationX = pp.ImageDilationX.Value
	p.ImageDilationY = pp.ImageDilationY.Value
	if pp.ImageSegType != "" {
		p.ImageSegType = layout.ImageSegType(pp.ImageSegType)
	}
	p.CombineImages = pp.CombineImages

	if binary != nil {
		size := binary.Bounds().Size()
		p.SetGeometry(size.X, size.Y)
	}
	return p, nil
}

func encodePointList(pl layout.PointList) pointListElem {
	pe := pointListElem{
		ID:       pl.ID,
		Type:     string(pl.Type),
		Relative: pl.Relative,
		Points:   make([]pointElem, len(pl.Points)),
	}
	for i, p := range pl.Points {
		pe.Points[i] = pointElem{
			X: strconv.FormatFloat(p.X, 'g', -1, 64),
			Y: strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
	}
	return pe
}

func decodePointList(pe pointListElem) (layout.PointList, error) {
	pl := layout.PointList{
		ID:       pe.ID,
		Type:     layout.RegionType(pe.Type),
		Relative: pe.Relative,
		Points:   make([]layout.Point, 0, len(pe.Points)),
	}
	for _, q := range pe.Points {
		p, err := parsePoint(q.X, q.Y)
		if err != nil {
			return layout.PointList{}, fmt.Errorf("point list %q: %w", pe.ID, err)
		}
		pl.Points = append(pl.Points, p)
	}
	return pl, nil
}

func sortedKeys(m map[string]layout.PointList) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
