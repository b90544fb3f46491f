// meta/meta.go
package meta

// Level is the default confidence level.
const Level = 0.95

// InitialBatch is the default size of the first adaptive batch.
const InitialBatch = 1_000_000

// FollowUpBatch is the default size of the batches after the first one.
const FollowUpBatch = 100_000

// BatchGrowth multiplies each follow-up batch; 1 keeps them constant.
const BatchGrowth = 1.0

// TrialCap bounds the trials of one adaptive run.
const TrialCap = 1_000_000_000

// MaxSteps bounds the length of one random walk.
const MaxSteps = 10_000_000

// Seed is the default seed of the random source.
const Seed = 0x1350185
