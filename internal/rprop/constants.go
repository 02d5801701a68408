package rprop

// Default search parameters.
const (
	defaultMaxIterations = 200
	defaultLearningRate  = 1.5e-3

	// Learning-rate multipliers applied after an improving / worsening step
	defaultEtaPlus  = 1.1
	defaultEtaMinus = 0.1

	// Exponent search space
	defaultInitialAlpha  = 1.15
	defaultMinAlpha      = 0.5
	defaultMaxAlpha      = 2.0
	defaultRoundDecimals = 2

	// Two successive loss changes below this tolerance end the search
	defaultStagnationTolerance = 1e-4

	// Stagnating above this loss counts as stuck and triggers a rollback
	defaultStuckLoss = 0.3

	// Iteration indices after which step adaptation / stagnation checks begin
	defaultAdaptAfter      = 2
	defaultStagnationAfter = 4
)
