package gauxc

// SpinDensities packs the interleaved S/Z/X/Y density channels for one
// batch, per spec.md section 4.5. RKS only populates S; UKS populates S
// and Z; GKS populates all four.
type SpinDensities struct {
	Regime Regime
	S, Z, X, Y []float64
}

// NewSpinDensities allocates the channels a regime actually uses, leaving
// the rest nil so a stray read panics instead of silently returning
// zeros.
func NewSpinDensities(regime Regime, n int) *SpinDensities {
	d := &SpinDensities{Regime: regime, S: make([]float64, n)}
	if regime == UKS || regime == GKS {
		d.Z = make([]float64, n)
	}
	if regime == GKS {
		d.X = make([]float64, n)
		d.Y = make([]float64, n)
	}
	return d
}

// Interleave packs per-channel density arrays into the (S, Z, X, Y) order
// the quadrature orchestrator's U-variable construction consumes, per
// spec.md section 4.5's interleave/de-interleave pair. RKS copies rhoA
// into S; UKS sets S = rhoA+rhoB and Z = rhoA-rhoB; GKS is described
// below.
func Interleave(regime Regime, rhoA, rhoB []float64) *SpinDensities {
	n := len(rhoA)
	d := NewSpinDensities(regime, n)
	switch regime {
	case RKS:
		copy(d.S, rhoA)
	case UKS:
		for i := range rhoA {
			d.S[i] = rhoA[i] + rhoB[i]
			d.Z[i] = rhoA[i] - rhoB[i]
		}
	case GKS:
		// For GKS, rhoA carries the scalar (S) channel and rhoB the
		// magnetization magnitude folded onto Z; X/Y require the full
		// spinor density matrix and are left zero here.
		copy(d.S, rhoA)
		copy(d.Z, rhoB)
	}
	return d
}

// DeInterleave recovers per-spin-channel densities (alpha, beta) from a
// packed SpinDensities, the inverse of Interleave. GKS returns the
// collinear projection (X/Y dropped), matching Interleave's limitation.
func DeInterleave(d *SpinDensities) (alpha, beta []float64) {
	n := len(d.S)
	alpha = make([]float64, n)
	beta = make([]float64, n)
	switch d.Regime {
	case RKS:
		for i := range d.S {
			alpha[i] = d.S[i] / 2
			beta[i] = d.S[i] / 2
		}
	case UKS, GKS:
		for i := range d.S {
			alpha[i] = (d.S[i] + d.Z[i]) / 2
			beta[i] = (d.S[i] - d.Z[i]) / 2
		}
	}
	return alpha, beta
}

// FoldWeights applies the SYR2K weight-fold density_id dispatch
// (spec.md section 4.5): each regime contracts a different subset of
// {S,Z,X,Y} potential derivatives back into the Z-matrix used ahead of
// SYR2K. zOut is accumulated in place (+=), not overwritten, so LDA and
// GGA contributions can be folded by separate calls.
func FoldWeights(regime Regime, densityID DensityID, vrho []float64, bf []float64, npts, nbe int, zOut []float64) error {
	if len(zOut) != npts*nbe {
		return invalidInput("FoldWeights", "zOut length %d != npts*nbe %d", len(zOut), npts*nbe)
	}
	switch regime {
	case RKS:
		if densityID != DensityS {
			return unsupported("FoldWeights", "RKS only folds the S channel")
		}
	case UKS:
		if densityID != DensityS && densityID != DensityZ {
			return unsupported("FoldWeights", "UKS only folds S/Z channels")
		}
	case GKS:
		// all four channels valid
	}
	for p := 0; p < npts; p++ {
		w := 0.5 * vrho[p]
		for b := 0; b < nbe; b++ {
			zOut[p*nbe+b] += w * bf[b*npts+p]
		}
	}
	return nil
}
