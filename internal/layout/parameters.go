package layout

import (
	"context"
	"image"
)

// ImageSegType selects how image regions are outlined.
type ImageSegType string

const (
	ImageSegNone         ImageSegType = "NONE"
	ImageSegContourOnly  ImageSegType = "CONTOUR_ONLY"
	ImageSegStraightRect ImageSegType = "STRAIGHT_RECT"
	ImageSegRotatedRect  ImageSegType = "ROTATED_RECT"
)

// Default parameter values.
const (
	DefaultDesiredImageHeight = 800
	DefaultBinaryThreshold    = -1 // automatic (Otsu)
	DefaultTextDilationX      = 12
	DefaultTextDilationY      = 4
	DefaultImageDilationX     = 5
	DefaultImageDilationY     = 5
	DefaultImageSegType       = ImageSegStraightRect
	DefaultCombineImages      = true
)

// Parameters configure one segmentation engine run.
//
// Dilation sizes and rule minimum sizes are expressed in pixels of the
// working image, which is the original scaled to DesiredImageHeight.
type Parameters struct {
	DesiredImageHeight int
	BinaryThreshold    int
	TextDilationX      int
	TextDilationY      int
	ImageDilationX     int
	ImageDilationY     int
	ImageSegType       ImageSegType
	CombineImages      bool

	RegionManager *RegionManager

	// Page is the page index whose manual point list applies.
	Page int

	// Geometry of the image the parameters were finalized for.
	ImageWidth  int
	ImageHeight int
	ScaleFactor float64
}

// NewParameters creates default parameters around a region manager.
// An imageHeight of 0 yields geometry-unaware parameters.
func NewParameters(rm *RegionManager, imageHeight int) *Parameters {
	if rm == nil {
		rm = NewRegionManager()
	}
	p := &Parameters{
		DesiredImageHeight: DefaultDesiredImageHeight,
		BinaryThreshold:    DefaultBinaryThreshold,
		TextDilationX:      DefaultTextDilationX,
		TextDilationY:      DefaultTextDilationY,
		ImageDilationX:     DefaultImageDilationX,
		ImageDilationY:     DefaultImageDilationY,
		ImageSegType:       DefaultImageSegType,
		CombineImages:      DefaultCombineImages,
		RegionManager:      rm,
	}
	p.SetGeometry(0, imageHeight)
	return p
}

// SetGeometry finalizes the parameters for an image of the given size.
func (p *Parameters) SetGeometry(width, height int) {
	p.ImageWidth = width
	p.ImageHeight = height
	if height <= 0 || p.DesiredImageHeight <= 0 {
		p.ScaleFactor = 1
		return
	}
	p.ScaleFactor = float64(p.DesiredImageHeight) / float64(height)
}

// Manual returns the point list manager of the current page, or an empty one.
func (p *Parameters) Manual() *PointListManager {
	if plm := p.RegionManager.PointLists(p.Page); plm != nil {
		return plm
	}
	return NewPointListManager()
}

// Clone returns a deep copy.
func (p *Parameters) Clone() *Parameters {
	c := *p
	c.RegionManager = p.RegionManager.Clone()
	return &c
}

// Engine segments page images.
type Engine interface {
	// SetParameters replaces the parameters used by later Segment calls.
	SetParameters(p *Parameters)

	// Segment detects the regions of img. Region outlines are returned in
	// the coordinates of img.
	Segment(ctx context.Context, img image.Image) (*Result, error)
}

// EngineFactory constructs an engine for the first page of a session.
type EngineFactory func(p *Parameters) Engine
