// Package pagexml reads and writes the XML interchange documents of the
// layout tools: PAGE content documents holding a segmentation result, and
// settings documents holding segmentation parameters.
//
// # PAGE Versions
//
// Results are written in one of the published PAGE schema versions:
//
//   - 2010-03-19: coordinates as <Point x="" y=""/> children of <Coords>
//   - 2013-07-15 (default), 2017-07-15, 2019-07-15: coordinates as the
//     points="x1,y1 x2,y2 ..." attribute of <Coords>
//
// Reading accepts every version and either coordinate encoding regardless of
// the declared namespace. Documents in other character sets than UTF-8 are
// decoded according to their XML declaration.
//
// # Region Types
//
// Image regions map to <ImageRegion>, ignored areas to <NoiseRegion> and all
// text types to <TextRegion type="...">. Region types without a PAGE
// counterpart are written verbatim into the type attribute and survive a
// round trip.
//
// # Documents
//
// WriteResult and WriteSettings build a Document; Encode turns it into bytes
// and SaveDocument stores it on disk. Malformed input to ReadResult or
// ReadSettings yields a *ParseError.
package pagexml
