package masking

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-masking/internal/simdops"
)

// Rule tells how a mask combines with the mixture.
type Rule int

const (
	// RuleMultiplicative applies the mask as m·x.
	RuleMultiplicative Rule = iota

	// RuleExponential applies the mask as (x^α)^m.
	RuleExponential
)

// Mask is a time-frequency gain array together with its application rule.
type Mask struct {
	// Gains has the shape of the target spectrogram.
	Gains *Spectrogram

	// Rule selects multiplicative or exponential application.
	Rule Rule

	// Alpha is the exponent used by RuleExponential.
	Alpha float64
}

// Sources groups the magnitude estimates a mask is computed from.
type Sources struct {
	Target   *Spectrogram
	Residual []*Spectrogram
}

// Validate checks that the target is well formed and every residual matches it.
func (s Sources) Validate() error {
	if err := s.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	if len(s.Residual) == 0 {
		return fmt.Errorf("%w: at least one residual spectrogram is required", ErrInvalidConfig)
	}

	for i, r := range s.Residual {
		if err := requireSameShape(fmt.Sprintf("residual %d", i), s.Target, r); err != nil {
			return err
		}
	}

	return nil
}

// Masker computes a time-frequency mask from source estimates.
type Masker interface {
	ComputeMask(src Sources) (*Mask, error)
}

// IRM is the ideal amplitude ratio mask: t / (ε + t + r).
type IRM struct{}

// ComputeMask implements Masker.
func (IRM) ComputeMask(src Sources) (*Mask, error) {
	return targetRatio(src, func(den, t, r []float64) {
		simdops.Add(den, t, r)
		simdops.AddScalar(den, den, Epsilon)
	})
}

// IAM is the ideal amplitude mask: t / (ε + r).
// The residual passed in must be the mixture magnitude.
type IAM struct{}

// ComputeMask implements Masker.
func (IAM) ComputeMask(src Sources) (*Mask, error) {
	return targetRatio(src, func(den, _, r []float64) {
		simdops.AddScalar(den, r, Epsilon)
	})
}

// ExpMask is the exponential mask log(max(t,ε)^α) / log(max(r,ε)^α).
//
// Reference: S. I. Mimilakis, K. Drossos, T. Virtanen and G. Schuller, "Deep
// neural networks for dynamic range compression in mastering applications",
// 140th AES Convention, Paris, 2016.
type ExpMask struct {
	Alpha float64
}

// ComputeMask implements Masker.
func (e ExpMask) ComputeMask(src Sources) (*Mask, error) {
	m, err := pairwise(src, func(t, r float64) float64 {
		num := math.Log(math.Pow(math.Max(t, Epsilon), e.Alpha))
		den := math.Log(math.Pow(math.Max(r, Epsilon), e.Alpha))
		return num / den
	})
	if err != nil {
		return nil, err
	}
	m.Rule = RuleExponential
	m.Alpha = e.Alpha
	return m, nil
}

// IBM is the ideal binary mask: 1 where t^α / (ε + r^α) ≥ 0.5, else 0.
type IBM struct {
	Alpha float64
}

// ComputeMask implements Masker.
func (b IBM) ComputeMask(src Sources) (*Mask, error) {
	return pairwise(src, func(t, r float64) float64 {
		ratio := math.Pow(t, b.Alpha) / (Epsilon + math.Pow(r, b.Alpha))
		return binary(ratio >= ibmThreshold)
	})
}

// UBBM is the upper-bound binary mask: 1 where
// 20·ln(ε + (ε + t^α)/(ε + r^α)) ≥ 0, else 0.
//
// The residual should not contain the target.
//
// Reference: J. J. Burred, "From sparse models to timbre learning: new
// methods for musical source separation", PhD thesis, TU Berlin, 2009.
type UBBM struct {
	Alpha float64
}

// ComputeMask implements Masker.
func (b UBBM) ComputeMask(src Sources) (*Mask, error) {
	return pairwise(src, func(t, r float64) float64 {
		ratio := (Epsilon + math.Pow(t, b.Alpha)) / (Epsilon + math.Pow(r, b.Alpha))
		return binary(ubbmScale*math.Log(Epsilon+ratio) >= ubbmThreshold)
	})
}

// Wiener is the Wiener-like mask (t² + ε) / (ε + t² + Σ r_k²).
//
// Reference: H. Erdogan, J. R. Hershey, S. Watanabe and J. Le Roux,
// "Phase-sensitive and recognition-boosted speech separation using deep
// recurrent neural networks", ICASSP 2015.
type Wiener struct{}

// ComputeMask implements Masker.
func (Wiener) ComputeMask(src Sources) (*Mask, error) {
	return powerRatio(src, wienerPower)
}

// AlphaWiener is the generalized Wiener mask on fractional power
// spectrograms: (t^α + ε) / (ε + t^α + Σ r_k^α).
//
// Reference: A. Liutkus and R. Badeau, "Generalized Wiener filtering with
// fractional power spectrograms", ICASSP 2015.
type AlphaWiener struct {
	Alpha float64
}

// ComputeMask implements Masker.
func (a AlphaWiener) ComputeMask(src Sources) (*Mask, error) {
	return powerRatio(src, a.Alpha)
}

// PhaseSensitive is the phase-sensitive mask
// 2 / (1 + exp(−(t / (ε + r))·cos Θ)) − 1 with Θ = φt − φr.
type PhaseSensitive struct {
	TargetPhase   *Spectrogram
	ResidualPhase *Spectrogram
}

// ComputeMask implements Masker.
func (p PhaseSensitive) ComputeMask(src Sources) (*Mask, error) {
	if p.TargetPhase.empty() || p.ResidualPhase.empty() {
		return nil, fmt.Errorf("%w: phase-sensitive masking requires target and residual phase", ErrInvalidConfig)
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireSameShape("target phase", src.Target, p.TargetPhase); err != nil {
		return nil, err
	}
	if err := requireSameShape("residual phase", src.Target, p.ResidualPhase); err != nil {
		return nil, err
	}

	residual := src.Residual[0]
	gains := NewMultichannel(src.Target.Channels, src.Target.Bins, src.Target.Frames)
	for i, t := range src.Target.Data {
		theta := p.TargetPhase.Data[i] - p.ResidualPhase.Data[i]
		x := t / (Epsilon + residual.Data[i]) * math.Cos(theta)
		gains.Data[i] = sigmoidScale/(1+math.Exp(-x)) - sigmoidOffset
	}

	return &Mask{Gains: gains, Rule: RuleMultiplicative}, nil
}

// pairwise evaluates fn over the target and the first residual.
func pairwise(src Sources, fn func(t, r float64) float64) (*Mask, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	residual := src.Residual[0]
	gains := NewMultichannel(src.Target.Channels, src.Target.Bins, src.Target.Frames)
	for i, t := range src.Target.Data {
		gains.Data[i] = fn(t, residual.Data[i])
	}

	return &Mask{Gains: gains, Rule: RuleMultiplicative}, nil
}

// targetRatio divides the target by the denominator that fill builds from the
// target and the first residual.
func targetRatio(src Sources, fill func(den, t, r []float64)) (*Mask, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	gains := NewMultichannel(src.Target.Channels, src.Target.Bins, src.Target.Frames)
	fill(gains.Data, src.Target.Data, src.Residual[0].Data)
	simdops.Div(gains.Data, src.Target.Data, gains.Data)

	return &Mask{Gains: gains, Rule: RuleMultiplicative}, nil
}

// powerRatio computes (t^p + ε) / (ε + t^p + Σ r_k^p) over all residual components.
func powerRatio(src Sources, p float64) (*Mask, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	n := src.Target.Len()
	num := make([]float64, n)
	total := make([]float64, n)
	scratch := make([]float64, n)

	pow(num, src.Target.Data, p)
	copy(total, num)
	for _, r := range src.Residual {
		pow(scratch, r.Data, p)
		simdops.Add(total, total, scratch)
	}

	gains := NewMultichannel(src.Target.Channels, src.Target.Bins, src.Target.Frames)
	simdops.AddScalar(num, num, Epsilon)
	simdops.AddScalar(total, total, Epsilon)
	simdops.Div(gains.Data, num, total)

	return &Mask{Gains: gains, Rule: RuleMultiplicative}, nil
}

// pow sets dst[i] = a[i]^p.
func pow(dst, a []float64, p float64) {
	for i, v := range a {
		dst[i] = math.Pow(v, p)
	}
}

func binary(keep bool) float64 {
	if keep {
		return 1
	}
	return 0
}
