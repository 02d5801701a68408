package mathutil

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ItakuraSaito evaluates the Itakura-Saito divergence between an observed
// power spectrum and an estimate of it, averaged over all bins.
//
// The observed spectrum is passed already raised to its reference power.
// A working buffer sized at construction keeps repeated evaluations
// allocation-free.
type ItakuraSaito struct {
	epsilon float64
	scratch []float64
}

// NewItakuraSaito creates an evaluator for spectra of n bins.
func NewItakuraSaito(n int, epsilon float64) *ItakuraSaito {
	return &ItakuraSaito{
		epsilon: epsilon,
		scratch: make([]float64, n),
	}
}

// Loss returns mean(r − log r − 1) with r = (observed + ε) / (|estimate| + ε).
// The log is taken as a difference of logs to keep precision for tiny ratios.
func (d *ItakuraSaito) Loss(observed, estimate []float64) float64 {
	buf := d.buffer(len(observed))
	for i, o := range observed {
		num := o + d.epsilon
		den := math.Abs(estimate[i]) + d.epsilon
		buf[i] = num/den - (math.Log(num) - math.Log(den)) - 1
	}
	return stat.Mean(buf, nil)
}

// Derivative returns the spatially averaged first derivative of the divergence
// with respect to the estimate: mean((|estimate + ε|)^−2 · (|estimate| − observed)).
//
// Reference: C. Févotte and J. Idier, "Algorithms for nonnegative matrix
// factorization with the beta-divergence", 2010.
func (d *ItakuraSaito) Derivative(observed, estimate []float64) float64 {
	buf := d.buffer(len(observed))
	for i, o := range observed {
		den := math.Abs(estimate[i] + d.epsilon)
		buf[i] = (math.Abs(estimate[i]) - o) / (den * den)
	}
	return stat.Mean(buf, nil)
}

func (d *ItakuraSaito) buffer(n int) []float64 {
	if cap(d.scratch) < n {
		d.scratch = make([]float64, n)
	}
	return d.scratch[:n]
}
