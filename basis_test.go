package gauxc

import "testing"

func sto3gH() Shell {
	// STO-3G hydrogen 1s, standard exponents/coefficients.
	return Shell{
		L: 0,
		Primitives: []PrimitiveGaussian{
			{Alpha: 3.42525091, Coeff: 0.15432897},
			{Alpha: 0.62391373, Coeff: 0.53532814},
			{Alpha: 0.16885540, Coeff: 0.44463454},
		},
		Center: [3]float64{0, 0, 0},
	}
}

func h2BasisSet() *BasisSet {
	a := sto3gH()
	b := sto3gH()
	b.Center = [3]float64{0, 0, 1.4}
	b.AtomIdx = 1
	return NewBasisSet([]Shell{a, b})
}

func TestShellSize(t *testing.T) {
	s := Shell{L: 1, Pure: false}
	if got := s.Size(); got != 3 {
		t.Errorf("Cartesian p shell Size() = %d, want 3", got)
	}
	s.Pure = true
	if got := s.Size(); got != 3 {
		t.Errorf("pure p shell Size() = %d, want 3", got)
	}
	d := Shell{L: 2, Pure: false}
	if got := d.Size(); got != 6 {
		t.Errorf("Cartesian d shell Size() = %d, want 6", got)
	}
	d.Pure = true
	if got := d.Size(); got != 5 {
		t.Errorf("pure d shell Size() = %d, want 5", got)
	}
}

func TestBasisSetOffsets(t *testing.T) {
	basis := h2BasisSet()
	if basis.NBF() != 2 {
		t.Fatalf("NBF() = %d, want 2", basis.NBF())
	}
	if basis.Shells[0].AOOffset != 0 || basis.Shells[1].AOOffset != 1 {
		t.Errorf("unexpected AO offsets: %d, %d", basis.Shells[0].AOOffset, basis.Shells[1].AOOffset)
	}
}

func TestNBFSubset(t *testing.T) {
	basis := h2BasisSet()
	if got := basis.NBFSubset([]int{0}); got != 1 {
		t.Errorf("NBFSubset({0}) = %d, want 1", got)
	}
	if got := basis.NBFSubset([]int{0, 1}); got != 2 {
		t.Errorf("NBFSubset({0,1}) = %d, want 2", got)
	}
}

func TestShellPairCollectionSymmetricLookup(t *testing.T) {
	basis := h2BasisSet()
	spc := NewShellPairCollection(basis)
	if spc.Get(0, 1) == nil {
		t.Fatal("Get(0,1) returned nil")
	}
	if spc.Get(1, 0) != spc.Get(0, 1) {
		t.Error("Get(1,0) and Get(0,1) should alias the same pair (i>=j canonicalization)")
	}
	if len(spc.Pairs) != 3 { // (0,0), (1,0), (1,1)
		t.Errorf("len(Pairs) = %d, want 3", len(spc.Pairs))
	}
}

func TestSchwarzBoundPositiveAndSymmetric(t *testing.T) {
	basis := h2BasisSet()
	spc := NewShellPairCollection(basis)
	v01 := SchwarzBound(spc, 0, 1)
	v10 := SchwarzBound(spc, 1, 0)
	if v01 <= 0 {
		t.Fatalf("SchwarzBound(0,1) = %v, want > 0", v01)
	}
	if v01 != v10 {
		t.Errorf("SchwarzBound not symmetric: %v vs %v", v01, v10)
	}
	v00 := SchwarzBound(spc, 0, 0)
	if v00 < v01 {
		t.Errorf("self-pair bound (%v) should dominate cross-pair bound (%v)", v00, v01)
	}
}

func TestSortUniqueInts(t *testing.T) {
	got := sortUniqueInts([]int{3, 1, 2, 1, 3, 0})
	want := []int{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
