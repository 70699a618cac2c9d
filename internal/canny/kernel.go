package canny

import (
	"fmt"
	"math"
)

// MaxSigma bounds the Gaussian standard deviation. Larger values would need
// kernels wider than any practical frame.
const MaxSigma = 256.0

// gaussianSpan is the number of standard deviations covered on each side of
// the kernel center. Taps beyond 2.5 sigma carry under 2% of the mass.
const gaussianSpan = 2.5

// Kernel is an odd-length 1-D filter. The weight at index Center() is applied
// to the pixel being computed; index i is applied to the pixel at offset
// i-Center(). A Kernel is immutable once built and safe to share between
// workers.
type Kernel struct {
	weights []float64
	center  int
}

// NewKernel builds a normalized Gaussian smoothing kernel for sigma.
//
// The radius is ceil(2.5*sigma), giving 2*radius+1 taps whose weights sum
// to 1. Returns ErrInvalidParameter when sigma is not a finite value in
// (0, MaxSigma].
func NewKernel(sigma float64) (*Kernel, error) {
	if err := validateSigma(sigma); err != nil {
		return nil, err
	}

	radius := int(math.Ceil(gaussianSpan * sigma))
	weights := make([]float64, 2*radius+1)

	var sum float64
	for i := range weights {
		x := float64(i - radius)
		weights[i] = math.Exp(-0.5*x*x/(sigma*sigma)) / (sigma * math.Sqrt(2*math.Pi))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	return &Kernel{weights: weights, center: radius}, nil
}

// DerivativeKernel returns the central-difference kernel {-1, 0, +1}. It is
// antisymmetric, so a constant region differentiates to exactly zero.
func DerivativeKernel() *Kernel {
	return &Kernel{weights: []float64{-1, 0, 1}, center: 1}
}

// Weights returns a copy of the kernel taps.
func (k *Kernel) Weights() []float64 {
	out := make([]float64, len(k.weights))
	copy(out, k.weights)
	return out
}

// Len returns the number of taps.
func (k *Kernel) Len() int { return len(k.weights) }

// Center returns the index of the center tap.
func (k *Kernel) Center() int { return k.center }

// Radius returns the number of taps on each side of the center.
func (k *Kernel) Radius() int { return len(k.weights) - 1 - k.center }

// Sum returns the sum of all taps.
func (k *Kernel) Sum() float64 {
	var s float64
	for _, w := range k.weights {
		s += w
	}
	return s
}

func validateSigma(sigma float64) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 || sigma > MaxSigma {
		return fmt.Errorf("%w: sigma must be in (0, %g], got %g", ErrInvalidParameter, MaxSigma, sigma)
	}
	return nil
}
