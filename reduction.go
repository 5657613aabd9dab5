package gauxc

import "context"

// Reducer folds partial per-rank results into a single global result, the
// seam spec.md section 4.9 (C9) names as out of scope for this module's
// functional behavior but still required to exist: "a single-process
// build must still present the interface a distributed build would use."
type Reducer interface {
	AllReduceSum(ctx context.Context, buf []float64) error
}

// NoopReduction is the single-process Reducer: AllReduceSum is the
// identity, since there is exactly one rank's contribution to fold.
type NoopReduction struct{}

func (NoopReduction) AllReduceSum(ctx context.Context, buf []float64) error {
	return nil
}
