package gauxc

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mathext"
)

// boysTableSize / boysTableMaxArg define the process-wide interpolation
// grid for the Boys function F_0(x), used by the EXX two-electron kernel
// bank (spec.md sections 4.7 and 9: "Boys-table singleton... process-wide
// read-only resource with explicit init/teardown tied to the EXX driver's
// lifecycle").
const (
	boysTableSize   = 4096
	boysTableMaxArg = 40.0
)

// BoysTable is a read-only, process-wide lookup table for the Boys
// function, interpolated on a uniform grid. The same closed-form evaluator
// goHF's HF.go boys() uses (mathext.GammaIncReg) seeds each grid point;
// the table exists because the EXX dispatcher calls F_0 far more
// frequently than a per-call evaluation budget can absorb.
type BoysTable struct {
	step float64
	vals []float64
}

var (
	boysTableOnce sync.Once
	boysTable     *BoysTable
)

// Boys evaluates the Boys function F_n(x) directly via the incomplete
// gamma function, exactly as goHF's HF.go boys(x, n) does. Used for n > 0
// or for values outside the table's range.
func Boys(x float64, n int) float64 {
	nf := float64(n)
	if x == 0 {
		return 1.0 / (2.0*nf + 1)
	}
	return mathext.GammaIncReg(nf+0.5, x) * math.Gamma(nf+0.5) *
		(1.0 / (2.0 * math.Pow(x, nf+0.5)))
}

// NewBoysTable constructs the F_0 interpolation table.
// InitBoysTable/BoysTableSingleton wire it to a single process-wide
// instance; there is no teardown, so that instance lives until the
// process exits.
func NewBoysTable() *BoysTable {
	t := &BoysTable{
		step: boysTableMaxArg / float64(boysTableSize-1),
		vals: make([]float64, boysTableSize),
	}
	for i := range t.vals {
		x := float64(i) * t.step
		t.vals[i] = Boys(x, 0)
	}
	return t
}

// Eval returns F_0(x) via linear interpolation on the table for x within
// range, falling back to the direct evaluator beyond it.
func (t *BoysTable) Eval(x float64) float64 {
	if x < 0 {
		x = 0
	}
	if x >= boysTableMaxArg {
		return Boys(x, 0)
	}
	idx := x / t.step
	i0 := int(idx)
	if i0 >= len(t.vals)-1 {
		return t.vals[len(t.vals)-1]
	}
	frac := idx - float64(i0)
	return t.vals[i0]*(1-frac) + t.vals[i0+1]*frac
}

// InitBoysTable initializes the process-wide Boys table singleton. Safe to
// call multiple times; only the first call allocates.
func InitBoysTable() *BoysTable {
	boysTableOnce.Do(func() {
		boysTable = NewBoysTable()
	})
	return boysTable
}

// BoysTableSingleton returns the process-wide Boys table, initializing it
// on first use. NewReferenceIntegralBank calls this at construction and
// the bank holds the returned pointer for its lifetime (spec.md section 9).
func BoysTableSingleton() *BoysTable {
	if boysTable == nil {
		return InitBoysTable()
	}
	return boysTable
}
