// Package layout defines the engine-facing page layout model.
//
// A segmentation engine consumes Parameters and produces a Result: an ordered
// list of Regions, each a closed polygon outline with a RegionType, plus an
// optional reading order of region identifiers.
//
// # Parameters and Geometry
//
// Parameters combine two kinds of fields:
//
//   - Book-level configuration: binarization threshold, dilation sizes, image
//     segmentation mode, region rules and the manual point lists of each page.
//     These survive from page to page within a session.
//   - Geometry: the size of the image the parameters were finalized for and
//     the derived ScaleFactor. These must be recomputed for every page through
//     SetGeometry; reusing them across images of different size is a bug.
//
// # Coordinate System
//
// Region outlines are expressed in original image pixels with (0,0) at the
// top-left corner. Rule positions (RegionRule.Positions) are relative: X and
// Y are fractions of the page width and height.
//
// # Engines
//
// Engine is the capability the orchestration layer needs from a segmenter.
// One engine instance is created per session through an EngineFactory and
// reused: later pages only call SetParameters on it. Engines are not required
// to be safe for concurrent use.
package layout
