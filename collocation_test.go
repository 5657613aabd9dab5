package gauxc

import "testing"

func TestEvalCollocationSValueAtCenter(t *testing.T) {
	basis := h2BasisSet()
	task := &XCTask{
		Points:       [][3]float64{{0, 0, 0}, {10, 10, 10}},
		Weights:      []float64{1, 1},
		BFNScreening: FinalizeBFNScreening(basis, []int{0}),
	}
	task.BF = make([]float64, task.BFNScreening.NBE*task.NPts())
	if err := EvalCollocation(basis, task); err != nil {
		t.Fatalf("EvalCollocation: %v", err)
	}
	// At the shell's own center, an s-type Gaussian should be at its max.
	valAtCenter := task.BF[0]
	valFar := task.BF[1]
	if valAtCenter <= valFar {
		t.Errorf("expected collocation value to decay away from center: at center=%v far=%v", valAtCenter, valFar)
	}
	if valAtCenter <= 0 {
		t.Errorf("s-type AO should be positive at its own center, got %v", valAtCenter)
	}
}

func TestEvalCollocationDeriv1GradientSignAwayFromCenter(t *testing.T) {
	basis := h2BasisSet()
	task := &XCTask{
		Points:       [][3]float64{{0.1, 0, 0}},
		Weights:      []float64{1},
		BFNScreening: FinalizeBFNScreening(basis, []int{0}),
	}
	npts := task.NPts()
	nbe := task.BFNScreening.NBE
	task.BF = make([]float64, nbe*npts)
	task.DBFX = make([]float64, nbe*npts)
	task.DBFY = make([]float64, nbe*npts)
	task.DBFZ = make([]float64, nbe*npts)
	if err := EvalCollocationDeriv1(basis, task); err != nil {
		t.Fatalf("EvalCollocationDeriv1: %v", err)
	}
	// Moving away from the center along +x, an s-type Gaussian decreases,
	// so d/dx should be negative.
	if task.DBFX[0] >= 0 {
		t.Errorf("expected negative x-gradient moving away from center, got %v", task.DBFX[0])
	}
	if task.DBFY[0] != 0 || task.DBFZ[0] != 0 {
		t.Errorf("expected zero gradient along y/z for a point on the x-axis through an s-type center, got (%v, %v)", task.DBFY[0], task.DBFZ[0])
	}
}

func TestEvalCollocationRejectsPureShells(t *testing.T) {
	basis := &BasisSet{Shells: []Shell{
		{L: 2, Pure: true, Primitives: []PrimitiveGaussian{{Alpha: 1, Coeff: 1}}},
	}}
	basis.generateOffsets()
	task := &XCTask{
		Points:       [][3]float64{{0, 0, 0}},
		Weights:      []float64{1},
		BFNScreening: FinalizeBFNScreening(basis, []int{0}),
	}
	task.BF = make([]float64, task.BFNScreening.NBE*task.NPts())
	err := EvalCollocation(basis, task)
	if err == nil {
		t.Fatal("expected UnsupportedFeature error for pure shell collocation")
	}
	var gerr *Error
	if !isGauxcError(err, &gerr) || gerr.Kind != UnsupportedFeature {
		t.Errorf("expected UnsupportedFeature, got %v", err)
	}
}

func isGauxcError(err error, out **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*out = e
	}
	return ok
}

func TestIpow(t *testing.T) {
	if got := ipow(2, 0); got != 1 {
		t.Errorf("ipow(2,0) = %v, want 1", got)
	}
	if got := ipow(2, 3); got != 8 {
		t.Errorf("ipow(2,3) = %v, want 8", got)
	}
	if got := ipow(-1, -1); got != 1 {
		t.Errorf("ipow(-1,-1) = %v, want 1 (n<=0 convention)", got)
	}
}

func TestCartComponentsCount(t *testing.T) {
	for l := 0; l <= 3; l++ {
		comps := cartComponents(l)
		want := (l + 1) * (l + 2) / 2
		if len(comps) != want {
			t.Errorf("cartComponents(%d) has %d entries, want %d", l, len(comps), want)
		}
		for _, c := range comps {
			if c[0]+c[1]+c[2] != l {
				t.Errorf("component %v does not sum to L=%d", c, l)
			}
		}
	}
}
