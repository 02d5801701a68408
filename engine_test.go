package masking

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-masking/internal/testutil"
)

func newTestConfig(method Method) *Config {
	return &Config{
		Mixture:  pattern(6, 8, 2.3),
		Target:   pattern(6, 8, 0.6),
		Residual: []*Spectrogram{pattern(6, 8, 1.1)},
		Method:   method,
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"unknown method", func(c *Config) { c.Method = Method(99) }, ErrInvalidConfig},
		{"negative alpha", func(c *Config) { c.Alpha = -1 }, ErrInvalidConfig},
		{"no mixture", func(c *Config) { c.Mixture = nil }, ErrInvalidConfig},
		{"no residual", func(c *Config) { c.Residual = nil }, ErrInvalidConfig},
		{"residual shape", func(c *Config) { c.Residual = []*Spectrogram{pattern(6, 7, 1)} }, ErrShapeMismatch},
		{"mixture shape", func(c *Config) { c.Mixture = pattern(5, 8, 1) }, ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(MethodIRM)
			tt.modify(cfg)
			_, err := New(cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewPhaseRequiresPhases(t *testing.T) {
	cfg := newTestConfig(MethodPhase)
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg.TargetPhase = pattern(6, 8, 0.2)
	cfg.ResidualPhase = &Spectrogram{}
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	// The missing phase is reported even when other inputs are also broken.
	cfg.ResidualPhase = nil
	cfg.Mixture = nil
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "phase")
}

func TestEngineDefaultAlpha(t *testing.T) {
	e, err := New(newTestConfig(MethodAlphaWiener))
	require.NoError(t, err)
	assert.InDelta(t, DefaultAlpha, e.Alpha(), 0)
	assert.Equal(t, MethodAlphaWiener, e.Method())
}

func TestEngineProcess(t *testing.T) {
	for _, method := range []Method{MethodIRM, MethodIAM, MethodIBM, MethodUBBM, MethodWiener, MethodAlphaWiener} {
		t.Run(method.String(), func(t *testing.T) {
			cfg := newTestConfig(method)
			e, err := New(cfg)
			require.NoError(t, err)
			assert.Nil(t, e.Mask())

			kept, err := e.Process(false)
			require.NoError(t, err)
			require.NotNil(t, e.Mask())

			rest, err := e.Process(true)
			require.NoError(t, err)

			for i, x := range cfg.Mixture.Data {
				assert.InDelta(t, x, kept.Data[i]+rest.Data[i], 1e-9)
			}
		})
	}
}

func TestEngineProcessPhase(t *testing.T) {
	cfg := &Config{
		Mixture:       Full(1, 2, 3, 4),
		Target:        Full(1, 2, 3, 1),
		Residual:      []*Spectrogram{Full(1, 2, 3, 1)},
		TargetPhase:   Full(1, 2, 3, 0.5),
		ResidualPhase: Full(1, 2, 3, 0.5),
		Method:        MethodPhase,
	}
	e, err := New(cfg)
	require.NoError(t, err)

	out, err := e.Process(false)
	require.NoError(t, err)
	testutil.AssertAllInDelta(t, 4*0.46211715726000974, out.Data, testutil.LooseTolerance)
}

func TestEngineExpMaskReverseFails(t *testing.T) {
	e, err := New(newTestConfig(MethodExpMask))
	require.NoError(t, err)

	_, err = e.Process(true)
	require.ErrorIs(t, err, ErrNotSupported)
	assert.Nil(t, e.Mask(), "reverse exponential masking fails before computing")

	out, err := e.Process(false)
	require.NoError(t, err)
	testutil.AssertNoNaNOrInf(t, out.Data)
}

func TestEngineMWF(t *testing.T) {
	cfg := &Config{
		Mixture:  Full(1, 1, 1, 2),
		Target:   Full(1, 1, 1, 1),
		Residual: []*Spectrogram{Full(1, 1, 1, 1)},
		Alpha:    1,
		Method:   MethodMWF,
	}
	e, err := New(cfg)
	require.NoError(t, err)

	for _, reverse := range []bool{false, true} {
		out, err := e.Process(reverse)
		require.NoError(t, err)
		testutil.AssertAllInDelta(t, 0.5, out.Data, testutil.DefaultTolerance)
	}

	_, err = e.ComputeMask()
	require.ErrorIs(t, err, ErrNotSupported)
	assert.Nil(t, e.Mask())

	_, err = e.OptimizeAlpha(DefaultOptimizerOptions())
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestEngineMWFAcceptsMultichannelMixture(t *testing.T) {
	cfg := &Config{
		Mixture:  Full(2, 3, 4, 1),
		Target:   Full(1, 3, 4, 0.7),
		Residual: []*Spectrogram{Full(1, 3, 4, 0.4)},
		Method:   MethodMWF,
	}
	e, err := New(cfg)
	require.NoError(t, err)

	out, err := e.Process(false)
	require.NoError(t, err)
	assert.True(t, out.SameShape(cfg.Mixture))
	testutil.AssertNoNaNOrInf(t, out.Data)

	cfg.Target = Full(3, 3, 4, 0.7)
	cfg.Residual = []*Spectrogram{Full(3, 3, 4, 0.4)}
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEngineMWFRejectsSeveralResiduals(t *testing.T) {
	cfg := &Config{
		Mixture:  Full(2, 3, 4, 1),
		Target:   Full(1, 3, 4, 0.7),
		Residual: []*Spectrogram{Full(1, 3, 4, 0.4), Full(1, 3, 4, 0.2)},
		Method:   MethodMWF,
	}
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.NotErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "one residual")
}

func TestEngineOptimizeAlpha(t *testing.T) {
	cfg := &Config{
		Mixture:  Full(1, 4, 4, 2),
		Target:   Full(1, 4, 4, 1),
		Residual: []*Spectrogram{Full(1, 4, 4, 1)},
		Method:   MethodAlphaWiener,
	}
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, e.Optimization())
	assert.Nil(t, e.Exponents())

	res, err := e.OptimizeAlpha(DefaultOptimizerOptions())
	require.NoError(t, err)

	assert.Equal(t, TerminationLocalMinimum, res.Termination)
	assert.Equal(t, []float64{1.15, 1.15}, e.Exponents())
	assert.Same(t, res, e.Optimization())
	assert.Same(t, res.Mask, e.Mask())
	testutil.AssertAllInDelta(t, 0.5, e.Mask().Gains.Data, testutil.DefaultTolerance)

	// The fitted mask is applied as-is.
	out, err := e.Apply(false)
	require.NoError(t, err)
	testutil.AssertAllInDelta(t, 1, out.Data, testutil.DefaultTolerance)
}

func TestEngineLogsMethod(t *testing.T) {
	var buf bytes.Buffer
	cfg := newTestConfig(MethodIBM)
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := New(cfg)
	require.NoError(t, err)
	_, err = e.ComputeMask()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "method=IBM")
	assert.Contains(t, buf.String(), "mean_gain=")
}

func TestEngineDoesNotModifyInputs(t *testing.T) {
	cfg := newTestConfig(MethodWiener)
	mixture := cfg.Mixture.Clone()
	target := cfg.Target.Clone()

	e, err := New(cfg)
	require.NoError(t, err)
	_, err = e.Process(false)
	require.NoError(t, err)

	assert.Equal(t, mixture.Data, cfg.Mixture.Data)
	assert.Equal(t, target.Data, cfg.Target.Data)
}
