// Package canny implements a row-parallel Canny edge detector for 8-bit
// grayscale frames.
//
// # Pipeline
//
// Each frame passes through these stages, every one split into contiguous row
// bands across a fixed number of workers and every one ending in a barrier:
//
//  1. Gaussian blur: separable, horizontal then vertical pass. The kernel
//     radius is ceil(2.5*sigma) and its weights sum to 1.
//
//  2. Derivatives: central differences {-1, 0, +1} of the blurred image
//     along x and along y.
//
//  3. Gradient: magnitude = sqrt(gx² + gy²); direction = atan2(gy, gx)
//     snapped to one of eight 45° compass sectors. Pixels within the kernel
//     radius of the frame border are never candidates.
//
//  4. Non-maximal suppression: a pixel keeps its magnitude only when it beats
//     the neighbor behind it along the gradient and at least ties the one
//     ahead of it.
//
//  5. Hysteresis: the high threshold comes from a histogram of the surviving
//     magnitudes, walked from the strongest bin down until thigh of the
//     survivors are covered; the low threshold is tlow times the high one.
//     Survivors at or above the high threshold seed an 8-connected flood
//     through survivors at or above the low threshold.
//
// # Boundary Handling
//
// Convolution reads outside the frame replicate the nearest edge pixel. The
// same policy is used for the blur and both derivative passes.
//
// # Determinism
//
// The edge map depends only on the input and the parameters, never on the
// worker count or where band boundaries fall. Per-pixel arithmetic is
// identical in every partition, histogram merging uses integer counts, and
// linking iterates to a reachability fixed point.
//
// # Error Handling
//
// Failures are per frame and reported as ErrInvalidParameter,
// ErrAllocationFailure or ErrWorkerFailure, wrapped with context. Invalid
// parameters are rejected before any buffer is allocated.
package canny
