package gauxc

import "math"

// Functional evaluates an exchange-correlation functional at a batch of
// points, per spec.md section 4.4. Only density (and, for GGA, the
// density gradient contracted into gamma = |grad rho|^2) are inputs;
// potential outputs follow the same (eps, vrho, vgamma) layout
// BatchArena.Eps/VRho/Gamma/VGamma use. There is no third-party LibXC
// binding in this pack (none of the example repos import one), so the two
// built-ins below are implemented directly against stdlib math — the
// justified stdlib exception DESIGN.md records for this file.
type Functional interface {
	NDeriv() NDeriv
	// Eval writes eps and vrho (len npts each); for GGA also gamma-derived
	// vgamma (len npts), given rho and, for GGA, gamma = |grad rho|^2.
	Eval(rho, gamma []float64, eps, vrho, vgamma []float64)
}

// SlaterLDA is the Slater (Dirac) exchange functional, the textbook LDA
// exchange term goHF's closed-shell RHF path has no analogue of (HF has
// no XC functional at all) but every DFT driver needs as a baseline.
type SlaterLDA struct{}

const slaterCx = 0.7385587663820224 // (3/4)*(3/pi)^(1/3)

func (SlaterLDA) NDeriv() NDeriv { return LDA }

func (SlaterLDA) Eval(rho, _ []float64, eps, vrho, _ []float64) {
	for i, r := range rho {
		if r <= 0 {
			eps[i], vrho[i] = 0, 0
			continue
		}
		rThird := math.Cbrt(r)
		eps[i] = -slaterCx * rThird
		vrho[i] = -(4.0 / 3.0) * slaterCx * rThird
	}
}

// PBEX is a simplified PBE-style GGA exchange enhancement over Slater,
// using the PBE enhancement factor F(s) = 1 + kappa - kappa/(1+mu*s^2/kappa)
// with the standard PBE constants. Correlation is out of scope here
// (spec.md Non-goals: only the exchange/XC weight-fold machinery itself
// is load-bearing for this module, not functional-library breadth).
type PBEX struct{}

const (
	pbeKappa = 0.804
	pbeMu    = 0.2195149727645171
)

func (PBEX) NDeriv() NDeriv { return GGA }

func (PBEX) Eval(rho, gamma []float64, eps, vrho, vgamma []float64) {
	for i, r := range rho {
		if r <= 0 {
			eps[i], vrho[i], vgamma[i] = 0, 0, 0
			continue
		}
		rThird := math.Cbrt(r)
		epsSlater := -slaterCx * rThird
		vrhoSlater := -(4.0 / 3.0) * slaterCx * rThird

		kf := math.Cbrt(3 * math.Pi * math.Pi * r)
		g := gamma[i]
		if g < 0 {
			g = 0
		}
		gradNorm := math.Sqrt(g)
		s := gradNorm / (2 * kf * r)
		s2 := s * s
		denom := 1 + pbeMu*s2/pbeKappa
		fx := 1 + pbeKappa - pbeKappa/denom

		eps[i] = epsSlater * fx

		// d(fx)/d(rho) and d(fx)/d(gamma) via chain rule through s.
		dFxDs2 := pbeMu / (denom * denom)
		// s^2 = gamma / (4 kf^2 rho^2), kf ~ rho^{1/3} => s^2 ~ gamma * rho^{-8/3}.
		ds2dRho := -(8.0 / 3.0) * s2 / r
		ds2dGamma := 0.0
		if gradNorm > 0 {
			ds2dGamma = s2 / g
		}
		dFxDRho := dFxDs2 * ds2dRho
		dFxDGamma := dFxDs2 * ds2dGamma

		vrho[i] = vrhoSlater*fx + r*epsSlater*dFxDRho
		vgamma[i] = r * epsSlater * dFxDGamma
	}
}
