// Package detection provides the pixel-grid algorithms behind layout
// analysis, and a reference segmentation engine built on them.
//
// Grids are [][]bool indexed [y][x] where true marks a foreground pixel, as
// produced by imaging.ForegroundGrid.
//
// # Building Blocks
//
//   - ConnectedComponents: 8-connected flood fill, components ordered by
//     their top-most, then left-most pixel
//   - TraceBoundary: Moore-neighbor tracing of a component's outer boundary
//   - Simplify: Douglas-Peucker reduction of a traced outline
//   - FillPolygon, DrawPolyline, Dilate: rasterization and morphology
//
// # Reference Engine
//
// Segmenter implements layout.Engine with a classic run-length-smearing
// style pipeline:
//
//  1. Scale the page to Parameters.DesiredImageHeight and binarize it
//  2. Erase manually fixed segments, then detect large dense components as
//     images (outlined according to Parameters.ImageSegType)
//  3. Dilate the remaining ink by the text dilation sizes so characters grow
//     into blocks, and erase the manual cut lines
//  4. Trace each block and assign a region type from the region rules:
//     minimum size, relative position, maximum occurrences and priority
//  5. Add the fixed segments verbatim and scale outlines back
//
// The heuristics are deliberately simple; the orchestration layer treats any
// layout.Engine as a black box.
//
// # Performance Considerations
//
// All steps are linear in the number of pixels of the working image except
// dilation, which is linear in pixels times the dilation size. Working on the
// scaled image keeps a page in the tens of milliseconds.
package detection
