package gauxc

import (
	"context"
	"testing"
)

func h2IntegratorFixture(t *testing.T, functional Functional) (*Integrator, int) {
	basis := h2BasisSet()
	mol := twoAtomMolecule()
	tasks := []XCTask{
		{
			AtomIdx:      0,
			Points:       [][3]float64{{0, 0, 0}, {0.1, 0, 0}},
			Weights:      []float64{0.5, 0.5},
			BFNScreening: FinalizeBFNScreening(basis, []int{0, 1}),
		},
		{
			AtomIdx:      1,
			Points:       [][3]float64{{0, 0, 1.4}, {0, 0, 1.3}},
			Weights:      []float64{0.5, 0.5},
			BFNScreening: FinalizeBFNScreening(basis, []int{0, 1}),
		},
	}
	lb := NewReferenceLoadBalancer(mol, basis, tasks)
	in, err := NewIntegrator(basis, lb, functional)
	if err != nil {
		t.Fatalf("NewIntegrator: %v", err)
	}
	return in, basis.NBF()
}

func TestEvalEXCVXCProducesSymmetricPositiveElectronCount(t *testing.T) {
	in, nbf := h2IntegratorFixture(t, SlaterLDA{})
	p := make([]float64, nbf*nbf)
	for i := 0; i < nbf; i++ {
		p[i*nbf+i] = 1.0
	}
	res, err := in.EvalEXCVXC(context.Background(), p, nbf)
	if err != nil {
		t.Fatalf("EvalEXCVXC: %v", err)
	}
	if res.Nel <= 0 {
		t.Errorf("expected positive electron count, got %v", res.Nel)
	}
	if res.EXC >= 0 {
		t.Errorf("expected negative exchange energy, got %v", res.EXC)
	}
	for i := 0; i < nbf; i++ {
		for j := 0; j < nbf; j++ {
			if diff := res.VXC[i*nbf+j] - res.VXC[j*nbf+i]; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("VXC not symmetric at (%d,%d): %v vs %v", i, j, res.VXC[i*nbf+j], res.VXC[j*nbf+i])
			}
		}
	}
}

func TestEvalEXCVXCRejectsMismatchedDensitySize(t *testing.T) {
	in, nbf := h2IntegratorFixture(t, SlaterLDA{})
	_, err := in.EvalEXCVXC(context.Background(), make([]float64, nbf), nbf)
	if err == nil {
		t.Fatal("expected InvalidInput for a wrongly-sized density matrix")
	}
}

func TestEvalEXXProducesSymmetricExchangeMatrix(t *testing.T) {
	in, nbf := h2IntegratorFixture(t, SlaterLDA{})
	p := make([]float64, nbf*nbf)
	for i := 0; i < nbf; i++ {
		p[i*nbf+i] = 1.0
	}
	res, err := in.EvalEXX(context.Background(), p, nbf, NewReferenceIntegralBank(), EKScreeningParams{EpsE: -1, EpsK: -1})
	if err != nil {
		t.Fatalf("EvalEXX: %v", err)
	}
	for i := 0; i < nbf; i++ {
		for j := 0; j < nbf; j++ {
			if diff := res.K[i*nbf+j] - res.K[j*nbf+i]; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("K not symmetric at (%d,%d): %v vs %v", i, j, res.K[i*nbf+j], res.K[j*nbf+i])
			}
		}
	}
}

func TestEvalEXCVXCUKSMatchesRestrictedWhenSpinUnpolarized(t *testing.T) {
	in, nbf := h2IntegratorFixture(t, SlaterLDA{})
	pAlpha := make([]float64, nbf*nbf)
	pBeta := make([]float64, nbf*nbf)
	for i := 0; i < nbf; i++ {
		pAlpha[i*nbf+i] = 0.5
		pBeta[i*nbf+i] = 0.5
	}
	uks, err := in.EvalEXCVXCUKS(context.Background(), pAlpha, pBeta, nbf)
	if err != nil {
		t.Fatalf("EvalEXCVXCUKS: %v", err)
	}

	in2, _ := h2IntegratorFixture(t, SlaterLDA{})
	pFull := make([]float64, nbf*nbf)
	for i := 0; i < nbf; i++ {
		pFull[i*nbf+i] = 1.0
	}
	restricted, err := in2.EvalEXCVXC(context.Background(), pFull, nbf)
	if err != nil {
		t.Fatalf("EvalEXCVXC: %v", err)
	}

	if diff := uks.EXC - restricted.EXC; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("spin-unpolarized UKS EXC = %v, want restricted EXC = %v", uks.EXC, restricted.EXC)
	}
	if diff := uks.Nel - restricted.Nel; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("spin-unpolarized UKS Nel = %v, want restricted Nel = %v", uks.Nel, restricted.Nel)
	}
}
