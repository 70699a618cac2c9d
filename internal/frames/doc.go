// Package frames drives the edge detector over a sequence of frames.
//
// A Source yields grayscale frames, either replayed from a directory of image
// files or generated synthetically. Loop runs each frame through a
// canny.Detector, writes frameNNN.pgm (and optionally the direction raster)
// and records per-frame capture and processing times.
package frames
