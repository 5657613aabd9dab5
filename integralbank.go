package gauxc

import "math"

// ReferenceIntegralBank is a correctness reference IntegralBank (spec.md
// section 4.7's "external collaborator" seam) covering only (s,s) cou
// shell pairs. The kernel it evaluates is a shell-pair potential at a
// grid point, V(A,B;C) = (2*pi/p)*K_AB*F0(p*|P-C|^2) — the same
// closed-form goHF's HF.go uses for electron-nuclear attraction, with the
// grid point C standing in for the point charge instead of a nucleus, and
// reusing the Boys-function table the same way. Higher angular momentum
// is out of scope for this reference (Supports returns false); a
// production kernel bank would extend this via Hermite/McMurchie-Davidson
// recursion, which this module does not reproduce.
type ReferenceIntegralBank struct {
	Boys *BoysTable
}

// NewReferenceIntegralBank constructs a bank backed by the process-wide
// Boys table singleton.
func NewReferenceIntegralBank() *ReferenceIntegralBank {
	return &ReferenceIntegralBank{Boys: BoysTableSingleton()}
}

// Supports reports whether this bank can serve the (li,lj) cou
// angular-momentum bucket.
func (b *ReferenceIntegralBank) Supports(li, lj int) bool {
	return li == 0 && lj == 0
}

// EvalShellPairPotential writes the (kappa,lambda) shell-pair potential
// at every point in points into out, sized
// size(kappa)*size(lambda)*len(points), AO-block-major with point
// fastest: out[(a*sizeLambda+b)*len(points)+pointIdx].
func (b *ReferenceIntegralBank) EvalShellPairPotential(basis *BasisSet, spc *ShellPairCollection, kappa, lambda int, points [][3]float64, out []float64) error {
	sizeK := basis.Shells[kappa].Size()
	sizeL := basis.Shells[lambda].Size()
	npts := len(points)
	if len(out) != sizeK*sizeL*npts {
		return invalidInput("ReferenceIntegralBank.EvalShellPairPotential", "out length %d != size(kappa)*size(lambda)*npts (%d)", len(out), sizeK*sizeL*npts)
	}
	sp := spc.Get(kappa, lambda)
	if sp == nil {
		for i := range out {
			out[i] = 0
		}
		return nil
	}
	for a := 0; a < sizeK; a++ {
		for c := 0; c < sizeL; c++ {
			for pi, pt := range points {
				var sum float64
				for _, pp := range sp.PrimPairs {
					dx := pp.Center[0] - pt[0]
					dy := pp.Center[1] - pt[1]
					dz := pp.Center[2] - pt[2]
					pc2 := dx*dx + dy*dy + dz*dz
					t := pp.Alpha * pc2
					sum += pp.Coeff * pp.K * (2 * math.Pi / pp.Alpha) * b.Boys.Eval(t)
				}
				out[(a*sizeL+c)*npts+pi] = sum
			}
		}
	}
	return nil
}
