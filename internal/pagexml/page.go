package pagexml

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

// Supported PAGE versions.
const (
	Version2010    = "2010-03-19"
	Version2013    = "2013-07-15"
	Version2017    = "2017-07-15"
	Version2019    = "2019-07-15"
	DefaultVersion = Version2013
)

const (
	namespaceBase = "http://schema.primaresearch.org/PAGE/gts/pagecontent/"
	xsiNamespace  = "http://www.w3.org/2001/XMLSchema-instance"
	timeLayout    = "2006-01-02T15:04:05"

	// DefaultCreator is written to the Metadata of result documents.
	DefaultCreator = "layout-tools-mcp"
)

// Versions lists the supported PAGE versions, oldest first.
func Versions() []string {
	return []string{Version2010, Version2013, Version2017, Version2019}
}

// SupportedVersion reports whether version can be written.
func SupportedVersion(version string) bool {
	for _, v := range Versions() {
		if v == version {
			return true
		}
	}
	return false
}

// PageMeta describes the page image a result document refers to.
type PageMeta struct {
	ImageFilename string
	Width         int
	Height        int

	// Creator defaults to DefaultCreator, Created to the current time.
	Creator string
	Created time.Time
}

type pcGts struct {
	XMLName        xml.Name     `xml:"PcGts"`
	Xmlns          string       `xml:"xmlns,attr,omitempty"`
	XmlnsXSI       string       `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation string       `xml:"xsi:schemaLocation,attr,omitempty"`
	Metadata       metadataElem `xml:"Metadata"`
	Page           pageElem     `xml:"Page"`
}

type metadataElem struct {
	Creator    string `xml:"Creator"`
	Created    string `xml:"Created"`
	LastChange string `xml:"LastChange"`
}

type pageElem struct {
	ImageFilename string            `xml:"imageFilename,attr"`
	ImageWidth    int               `xml:"imageWidth,attr"`
	ImageHeight   int               `xml:"imageHeight,attr"`
	ReadingOrder  *readingOrderElem `xml:"ReadingOrder"`
	Regions       []regionElem      `xml:",any"`
}

type readingOrderElem struct {
	OrderedGroup orderedGroupElem `xml:"OrderedGroup"`
}

type orderedGroupElem struct {
	ID   string          `xml:"id,attr"`
	Refs []regionRefElem `xml:"RegionRefIndexed"`
}

type regionRefElem struct {
	Index     int    `xml:"index,attr"`
	RegionRef string `xml:"regionRef,attr"`
}

// regionElem takes its element name from XMLName, so one slice keeps the
// document order of mixed region kinds.
type regionElem struct {
	XMLName xml.Name
	ID      string     `xml:"id,attr"`
	Type    string     `xml:"type,attr,omitempty"`
	Coords  coordsElem `xml:"Coords"`
}

type coordsElem struct {
	Points string      `xml:"points,attr,omitempty"`
	Point  []pointElem `xml:"Point"`
}

type pointElem struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

const (
	elemText  = "TextRegion"
	elemImage = "ImageRegion"
	elemNoise = "NoiseRegion"
)

// textTypes maps region types to PAGE TextRegion type values where the two
// spellings differ.
var textTypes = map[layout.RegionType]string{
	layout.TypePageNumber: "page-number",
}

func elementFor(t layout.RegionType) (name, typeAttr string) {
	switch t {
	case layout.TypeImage:
		return elemImage, ""
	case layout.TypeIgnore:
		return elemNoise, ""
	}
	if v, ok := textTypes[t]; ok {
		return elemText, v
	}
	return elemText, string(t)
}

func regionTypeFor(name, typeAttr string) layout.RegionType {
	switch name {
	case elemImage:
		return layout.TypeImage
	case elemNoise:
		return layout.TypeIgnore
	case elemText:
		if typeAttr == "" {
			return layout.TypeParagraph
		}
		for t, v := range textTypes {
			if v == typeAttr {
				return t
			}
		}
		return layout.RegionType(typeAttr)
	}
	return layout.TypeOther
}

// WriteResult builds a PAGE document for a segmentation result.
//
// Coordinates are rounded to whole pixels, so ReadResult returns the
// written result exactly only when every outline lies on whole pixels.
// Fractional outlines come back rounded, and a second write of that result
// is stable. The reading order is written only when it is non-empty.
//
// # Errors
//
//   - Returns ErrUnsupportedVersion for an unknown version
func WriteResult(result *layout.Result, meta PageMeta, version string) (*Document, error) {
	if version == "" {
		version = DefaultVersion
	}
	if !SupportedVersion(version) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	creator := meta.Creator
	if creator == "" {
		creator = DefaultCreator
	}
	created := meta.Created
	if created.IsZero() {
		created = time.Now()
	}
	stamp := created.UTC().Format(timeLayout)

	ns := namespaceBase + version
	root := &pcGts{
		Xmlns:          ns,
		XmlnsXSI:       xsiNamespace,
		SchemaLocation: ns + " " + ns + "/pagecontent.xsd",
		Metadata:       metadataElem{Creator: creator, Created: stamp, LastChange: stamp},
		Page: pageElem{
			ImageFilename: meta.ImageFilename,
			ImageWidth:    meta.Width,
			ImageHeight:   meta.Height,
		},
	}

	if result != nil {
		for _, r := range result.Regions {
			name, typeAttr := elementFor(r.Type)
			root.Page.Regions = append(root.Page.Regions, regionElem{
				XMLName: xml.Name{Local: name},
				ID:      r.ID,
				Type:    typeAttr,
				Coords:  encodeCoords(r.Points, version),
			})
		}
		if len(result.ReadingOrder) > 0 {
			group := orderedGroupElem{ID: "reading-order"}
			for i, id := range result.ReadingOrder {
				group.Refs = append(group.Refs, regionRefElem{Index: i, RegionRef: id})
			}
			root.Page.ReadingOrder = &readingOrderElem{OrderedGroup: group}
		}
	}

	return &Document{Version: version, root: root}, nil
}

func encodeCoords(points []layout.Point, version string) coordsElem {
	if version == Version2010 {
		c := coordsElem{Point: make([]pointElem, len(points))}
		for i, p := range points {
			c.Point[i] = pointElem{X: formatCoord(p.X), Y: formatCoord(p.Y)}
		}
		return c
	}
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatCoord(p.X) + "," + formatCoord(p.Y)
	}
	return coordsElem{Points: strings.Join(parts, " ")}
}

func formatCoord(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}

// ReadResult decodes a PAGE document of any supported version.
//
// Regions keep document order. Elements of other region kinds than text,
// image and noise are read as TypeOther. Reading order entries are kept as
// written, including references to regions the document does not contain.
//
// # Errors
//
//   - Returns *ParseError if the document is not well-formed PAGE XML or a
//     coordinate cannot be parsed
func ReadResult(data []byte) (*layout.Result, error) {
	var root pcGts
	if err := decode(data, &root); err != nil {
		return nil, &ParseError{Doc: "page", Err: err}
	}

	result := &layout.Result{Regions: []layout.Region{}, ReadingOrder: []string{}}
	for _, r := range root.Page.Regions {
		if !strings.HasSuffix(r.XMLName.Local, "Region") {
			continue
		}
		points, err := decodeCoords(r.Coords)
		if err != nil {
			return nil, &ParseError{Doc: "page", Err: fmt.Errorf("region %q: %w", r.ID, err)}
		}
		result.Regions = append(result.Regions, layout.Region{
			ID:     r.ID,
			Type:   regionTypeFor(r.XMLName.Local, r.Type),
			Points: points,
		})
	}

	if root.Page.ReadingOrder != nil {
		refs := append([]regionRefElem(nil), root.Page.ReadingOrder.OrderedGroup.Refs...)
		sortRefs(refs)
		for _, ref := range refs {
			result.ReadingOrder = append(result.ReadingOrder, ref.RegionRef)
		}
	}
	return result, nil
}

func decodeCoords(c coordsElem) ([]layout.Point, error) {
	points := make([]layout.Point, 0)
	if c.Points != "" {
		for _, pair := range strings.Fields(c.Points) {
			xs, ys, ok := strings.Cut(pair, ",")
			if !ok {
				return nil, fmt.Errorf("malformed point %q", pair)
			}
			p, err := parsePoint(xs, ys)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
		return points, nil
	}
	for _, pe := range c.Point {
		p, err := parsePoint(pe.X, pe.Y)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePoint(xs, ys string) (layout.Point, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return layout.Point{}, fmt.Errorf("malformed x coordinate %q", xs)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return layout.Point{}, fmt.Errorf("malformed y coordinate %q", ys)
	}
	return layout.Point{X: x, Y: y}, nil
}

// sortRefs orders reading order references by index, keeping document order
// for equal indices.
func sortRefs(refs []regionRefElem) {
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Index < refs[j].Index
	})
}
