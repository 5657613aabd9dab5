package gauxc

import "testing"

func TestBoysAtZero(t *testing.T) {
	for n := 0; n <= 3; n++ {
		got := Boys(0, n)
		want := 1.0 / (2*float64(n) + 1)
		if diff := got - want; diff > 1e-10 || diff < -1e-10 {
			t.Errorf("Boys(0,%d) = %v, want %v", n, got, want)
		}
	}
}

func TestBoysMonotonicDecreasing(t *testing.T) {
	prev := Boys(0, 0)
	for _, x := range []float64{0.5, 1, 2, 5, 10} {
		v := Boys(x, 0)
		if v >= prev {
			t.Errorf("Boys(%v,0) = %v should be less than previous value %v", x, v, prev)
		}
		prev = v
	}
}

func TestBoysTableMatchesDirectEvaluator(t *testing.T) {
	table := NewBoysTable()
	for _, x := range []float64{0, 0.01, 1.0, 5.5, 20.0, 39.9} {
		direct := Boys(x, 0)
		interp := table.Eval(x)
		if diff := direct - interp; diff > 1e-3 || diff < -1e-3 {
			t.Errorf("Boys table interpolation at x=%v: direct=%v interp=%v (diff=%v)", x, direct, interp, diff)
		}
	}
}

func TestBoysTableBeyondRangeFallsBackToDirect(t *testing.T) {
	table := NewBoysTable()
	x := boysTableMaxArg + 5
	if got, want := table.Eval(x), Boys(x, 0); got != want {
		t.Errorf("Eval(%v) = %v, want direct evaluator result %v", x, got, want)
	}
}

func TestBoysTableSingletonIsStable(t *testing.T) {
	a := BoysTableSingleton()
	b := BoysTableSingleton()
	if a != b {
		t.Error("BoysTableSingleton should return the same instance across calls")
	}
}
