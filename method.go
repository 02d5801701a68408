package masking

import (
	"fmt"
	"strings"
)

// Method selects a masking algorithm.
type Method int

const (
	// MethodWiener is the Wiener-like mask on squared magnitudes. It is the zero value.
	MethodWiener Method = iota

	// MethodPhase is the phase-sensitive mask; it needs target and residual phases.
	MethodPhase

	// MethodIRM is the ideal ratio mask.
	MethodIRM

	// MethodIAM is the ideal amplitude mask. The residual must be the mixture magnitude.
	MethodIAM

	// MethodIBM is the ideal binary mask.
	MethodIBM

	// MethodUBBM is the upper-bound binary mask.
	MethodUBBM

	// MethodAlphaWiener is the generalized Wiener mask on α-power spectrograms.
	MethodAlphaWiener

	// MethodExpMask is the exponential mask, applied as (x^α)^m.
	MethodExpMask

	// MethodMWF is the multichannel Wiener filter. It produces filtered output, not a mask.
	MethodMWF
)

var methodNames = [...]string{
	MethodWiener:      "Wiener",
	MethodPhase:       "Phase",
	MethodIRM:         "IRM",
	MethodIAM:         "IAM",
	MethodIBM:         "IBM",
	MethodUBBM:        "UBBM",
	MethodAlphaWiener: "alphaWiener",
	MethodExpMask:     "expMask",
	MethodMWF:         "MWF",
}

// Methods returns every supported method in declaration order.
func Methods() []Method {
	out := make([]Method, len(methodNames))
	for i := range out {
		out[i] = Method(i)
	}
	return out
}

// String returns the canonical method name.
func (m Method) String() string {
	if !m.valid() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod resolves a method name, ignoring case.
func ParseMethod(name string) (Method, error) {
	for i, n := range methodNames {
		if strings.EqualFold(n, name) {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown masking method %q", ErrInvalidConfig, name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: unknown masking method %d", ErrInvalidConfig, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Exponential reports whether the method's mask is applied as an exponent.
func (m Method) Exponential() bool {
	return m == MethodExpMask
}

func (m Method) valid() bool {
	return m >= 0 && int(m) < len(methodNames)
}
