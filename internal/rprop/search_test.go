package rprop

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
	"github.com/tphakala/go-audio-masking/internal/testutil"
)

const bins = 16

func constant(v float64) []float64 {
	s := make([]float64, bins)
	for i := range s {
		s[i] = v
	}
	return s
}

// TestSearchLocalMinimum: unit-valued sources have a vanishing gradient, so the
// exponents never move and the loss stalls below the stuck threshold.
func TestSearchLocalMinimum(t *testing.T) {
	res, err := Search(constant(2), [][]float64{constant(1), constant(1)}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, TerminationLocalMinimum, res.Termination)
	assert.Equal(t, 6, res.Iterations)
	assert.Equal(t, []float64{1.15, 1.15}, res.Exponents)
	assert.InDelta(t, 0.0055974, res.Loss, 1e-6)
	assert.Len(t, res.LossHistory, res.Iterations)
	assert.Len(t, res.ExponentHistory, res.Iterations)
}

// TestSearchStuckRollsBack: a large mixture keeps the stalled loss above the
// stuck threshold, so the best historical entry is committed.
func TestSearchStuckRollsBack(t *testing.T) {
	res, err := Search(constant(10), [][]float64{constant(1), constant(1)}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, TerminationStuck, res.Termination)
	assert.Equal(t, 6, res.Iterations)
	assert.Equal(t, []float64{1.15, 1.15}, res.Exponents)
	assert.InDelta(t, 4.1078620, res.Loss, 1e-6)
	assert.Equal(t, res.LossHistory[0], res.Loss)
}

// TestSearchConverges: with a unit mixture the reference power is fixed and
// the optimum is α = 1 for two half-magnitude sources.
func TestSearchConverges(t *testing.T) {
	opts := DefaultOptions()
	opts.LearningRate = 1.0

	res, err := Search(constant(1), [][]float64{constant(0.5), constant(0.5)}, opts)
	require.NoError(t, err)

	assert.Equal(t, TerminationLocalMinimum, res.Termination)
	assert.Equal(t, 9, res.Iterations)
	assert.InDelta(t, 1.01, res.Exponents[0], 1e-9)
	assert.InDelta(t, 1.01, res.Exponents[1], 1e-9)
	assert.Less(t, res.Loss, res.LossHistory[0])

	// Every step of this run improves or holds the loss.
	testutil.AssertNonIncreasing(t, res.LossHistory)
}

func TestSearchExhaustedKeepsBest(t *testing.T) {
	opts := DefaultOptions()
	opts.LearningRate = 1.0
	opts.MaxIterations = 3

	res, err := Search(constant(1), [][]float64{constant(0.5), constant(0.5)}, opts)
	require.NoError(t, err)

	assert.Equal(t, TerminationExhausted, res.Termination)
	assert.Equal(t, 3, res.Iterations)
	assert.InDelta(t, 1.06, res.Exponents[0], 1e-9)
	assert.Equal(t, res.LossHistory[2], res.Loss)
}

func TestSearchRespectsBoundsAndGrid(t *testing.T) {
	opts := DefaultOptions()
	opts.LearningRate = 50

	mixture := make([]float64, bins)
	target := make([]float64, bins)
	residual := make([]float64, bins)
	for i := range mixture {
		target[i] = 40 + float64(i)
		residual[i] = 3 + 0.5*float64(i)
		mixture[i] = target[i] + residual[i]
	}

	res, err := Search(mixture, [][]float64{target, residual}, opts)
	require.NoError(t, err)

	for _, alpha := range res.ExponentHistory {
		testutil.AssertAllInRange(t, alpha, opts.MinAlpha, opts.MaxAlpha)
		for _, a := range alpha {
			assert.InDelta(t, mathutil.RoundTo(a, 2), a, 1e-12)
		}
	}

	// Best-so-far loss never increases.
	testutil.AssertNonIncreasing(t, testutil.RunningMin(res.LossHistory))
	testutil.AssertNoNaNOrInf(t, res.LossHistory)
	testutil.AssertNoNaNOrInf(t, res.Gains)
}

func TestSearchGainsUseCommittedExponents(t *testing.T) {
	res, err := Search(constant(2), [][]float64{constant(1), constant(1)}, DefaultOptions())
	require.NoError(t, err)

	// Equal unit sources split power evenly.
	testutil.AssertAllInDelta(t, 0.5, res.Gains, testutil.DefaultTolerance)
}

func TestSearchLogsIterations(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Search(constant(2), [][]float64{constant(1), constant(1)}, opts)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "optimizer iteration")
	assert.Contains(t, buf.String(), "reason=local-minimum")
}

func TestSearchRejectsBadInput(t *testing.T) {
	_, err := Search(constant(1), nil, DefaultOptions())
	require.ErrorIs(t, err, ErrNoSources)

	_, err = Search(constant(1), [][]float64{make([]float64, bins-1)}, DefaultOptions())
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Search(nil, [][]float64{nil}, DefaultOptions())
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero iterations", func(o *Options) { o.MaxIterations = 0 }},
		{"negative learning rate", func(o *Options) { o.LearningRate = -1 }},
		{"zero eta", func(o *Options) { o.EtaMinus = 0 }},
		{"inverted bounds", func(o *Options) { o.MinAlpha, o.MaxAlpha = 2, 1 }},
		{"initial outside bounds", func(o *Options) { o.InitialAlpha = 3 }},
		{"negative decimals", func(o *Options) { o.RoundDecimals = -1 }},
		{"stagnation too early", func(o *Options) { o.StagnationAfter = 0 }},
		{"zero epsilon", func(o *Options) { o.Epsilon = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			require.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
		})
	}

	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
}

func TestTerminationString(t *testing.T) {
	assert.Equal(t, "exhausted", TerminationExhausted.String())
	assert.Equal(t, "local-minimum", TerminationLocalMinimum.String())
	assert.Equal(t, "stuck", TerminationStuck.String())
	assert.Equal(t, "unknown", Termination(99).String())
}

func TestGainsWithDistinctExponents(t *testing.T) {
	sources := [][]float64{{2, 3, 1}, {1, 2, 0}, {1, 1, 3}}
	gains := Gains(sources, []float64{2, 1, 1}, mathutil.Epsilon)

	testutil.AssertSlicesInDelta(t, []float64{4.0 / 6, 9.0 / 12, 1.0 / 4}, gains, testutil.DefaultTolerance)
}
