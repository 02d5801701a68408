package mathutil

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrSVDFailed is returned when the singular value decomposition does not converge.
var ErrSVDFailed = errors.New("mathutil: SVD factorization failed")

// PseudoInverse computes the Moore-Penrose pseudo-inverse of a via a thin SVD.
// Singular values at or below pinvRcond·σmax are treated as zero, matching
// the usual numerical-library default.
func PseudoInverse(a mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, ErrSVDFailed
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(values) > 0 {
		cutoff = pinvRcond * values[0]
	}

	inv := make([]float64, len(values))
	for i, s := range values {
		if s > cutoff {
			inv[i] = 1 / s
		}
	}

	// A⁺ = V · Σ⁺ · Uᵀ
	var vs mat.Dense
	vs.Mul(&v, mat.NewDiagDense(len(inv), inv))

	var out mat.Dense
	out.Mul(&vs, u.T())
	return &out, nil
}
