// Package imaging moves frames between files and the edge detector.
//
// It converts decoded images into the 8-bit grayscale rasters the canny
// package consumes, and writes what the detector produces: binary PGM edge
// maps, floating-point direction rasters, and PNG renderings for transport.
//
// # Coordinate System
//
// Rasters are row-major with (0,0) at the top-left corner; X increases
// rightward and Y increases downward. Decoded images whose bounds do not start
// at the origin are shifted so that they do.
//
// # File Formats
//
//   - Edge maps: binary PGM (P5), maxval 255, edge=255, non-edge=0.
//   - Direction rasters (.fim): "FIM1\n<cols> <rows>\n" followed by
//     little-endian float32 angles in radians, [0, 2π).
//   - Previews: PNG, with gradient direction mapped to hue.
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. All other functions are stateless.
package imaging
