package gauxc

import "testing"

func TestSsfFracBoundaryValues(t *testing.T) {
	if got := ssfFrac(-ssfCutoff - 0.1); got != 1 {
		t.Errorf("ssfFrac below -cutoff = %v, want 1", got)
	}
	if got := ssfFrac(ssfCutoff + 0.1); got != 0 {
		t.Errorf("ssfFrac above cutoff = %v, want 0", got)
	}
	// ssfFrac(0) should be exactly 0.5 by antisymmetry of the switch
	// polynomial: zeta(0) = 0, so g(0) = 0.5*(1-0).
	if got := ssfFrac(0); got != 0.5 {
		t.Errorf("ssfFrac(0) = %v, want 0.5", got)
	}
}

func TestSsfFracMonotonicDecreasing(t *testing.T) {
	prev := ssfFrac(-ssfCutoff)
	for _, mu := range []float64{-0.3, 0, 0.3, ssfCutoff} {
		v := ssfFrac(mu)
		if v > prev {
			t.Errorf("ssfFrac should be non-increasing in mu: ssfFrac(%v)=%v > prev=%v", mu, v, prev)
		}
		prev = v
	}
}

func twoAtomMolecule() *Molecule {
	return &Molecule{Atoms: []Atom{
		{Z: 1, Coords: [3]float64{0, 0, 0}},
		{Z: 1, Coords: [3]float64{1.4, 0, 0}},
	}}
}

func TestApplySSFWeightsNormalizesAtMidpoint(t *testing.T) {
	mol := twoAtomMolecule()
	meta := NewMolMeta(mol)
	tasks := []XCTask{
		{AtomIdx: 0, Points: [][3]float64{{0.7, 0, 0}}, Weights: []float64{1.0}},
	}
	if err := ApplySSFWeights(mol, meta, tasks); err != nil {
		t.Fatalf("ApplySSFWeights: %v", err)
	}
	// At the midpoint between two identical atoms, the partition weight
	// should split evenly: mu=0 for both pairwise comparisons.
	want := 0.5
	if diff := tasks[0].Weights[0] - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("midpoint weight = %v, want %v", tasks[0].Weights[0], want)
	}
}

func TestApplySSFWeightsFullyAssignsNearOwnAtom(t *testing.T) {
	mol := twoAtomMolecule()
	meta := NewMolMeta(mol)
	tasks := []XCTask{
		{AtomIdx: 0, Points: [][3]float64{{0, 0, 0}}, Weights: []float64{1.0}},
	}
	if err := ApplySSFWeights(mol, meta, tasks); err != nil {
		t.Fatalf("ApplySSFWeights: %v", err)
	}
	if diff := tasks[0].Weights[0] - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("weight at atom's own center = %v, want 1.0", tasks[0].Weights[0])
	}
}

func TestApplySSFWeightsRejectsInvalidAtomIdx(t *testing.T) {
	mol := twoAtomMolecule()
	meta := NewMolMeta(mol)
	tasks := []XCTask{
		{AtomIdx: 5, Points: [][3]float64{{0, 0, 0}}, Weights: []float64{1.0}},
	}
	err := ApplySSFWeights(mol, meta, tasks)
	if err == nil {
		t.Fatal("expected InvalidInput for out-of-range AtomIdx")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != InvalidInput {
		t.Errorf("expected InvalidInput, got %v", err)
	}
}
