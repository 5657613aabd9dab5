package gauxc

import "math"

// cartComponents returns the Cartesian angular-momentum exponent triples
// (lx, ly, lz) for angular momentum l, in the lexicographic order most
// AO-integral packages (and the original's gau2grid-generated collocation
// kernels) use: lx descending outermost, then ly descending.
func cartComponents(l int) [][3]int {
	var out [][3]int
	for lx := l; lx >= 0; lx-- {
		for ly := l - lx; ly >= 0; ly-- {
			lz := l - lx - ly
			out = append(out, [3]int{lx, ly, lz})
		}
	}
	return out
}

// evalCartesianAO evaluates one Cartesian AO (angular exponents lxyz,
// shell sh) and, if deriv, its gradient, at point pt. Mirrors the closed
// form any Gaussian collocation kernel reduces to; the production engine
// (gau2grid-class code) vectorizes this same arithmetic across points and
// shells — out of scope here per spec.md section 1 ("the low-level
// integral/collocation kernels are an external collaborator"), so this is
// a direct, unvectorized reference evaluator.
func evalCartesianAO(sh *Shell, lxyz [3]int, pt [3]float64, deriv bool) (val, dx, dy, dz float64) {
	dX := pt[0] - sh.Center[0]
	dY := pt[1] - sh.Center[1]
	dZ := pt[2] - sh.Center[2]
	r2 := dX*dX + dY*dY + dZ*dZ

	lx, ly, lz := lxyz[0], lxyz[1], lxyz[2]
	poly := ipow(dX, lx) * ipow(dY, ly) * ipow(dZ, lz)

	for _, p := range sh.Primitives {
		g := p.Coeff * p.NormCoeff() * math.Exp(-p.Alpha*r2)
		val += g * poly
		if deriv {
			// d/dx [ (dX)^lx * exp(-a r^2) ] = (lx*(dX)^(lx-1) - 2a*(dX)^(lx+1)) * exp(-a r^2) * (dY)^ly*(dZ)^lz, etc.
			polyY := ipow(dY, ly)
			polyZ := ipow(dZ, lz)
			polyX := ipow(dX, lx)
			dPolyX := float64(lx)*ipow(dX, lx-1) - 2*p.Alpha*ipow(dX, lx+1)
			dPolyY := float64(ly)*ipow(dY, ly-1) - 2*p.Alpha*ipow(dY, ly+1)
			dPolyZ := float64(lz)*ipow(dZ, lz-1) - 2*p.Alpha*ipow(dZ, lz+1)
			dx += g * dPolyX * polyY * polyZ
			dy += g * polyX * dPolyY * polyZ
			dz += g * polyX * polyY * dPolyZ
		}
	}
	return val, dx, dy, dz
}

// ipow raises x to a non-negative integer power n (n<0 treated as 0, the
// convention needed for the lx-1 term when lx==0: that whole term is
// multiplied by lx==0 anyway, but the power must still be well-defined).
func ipow(x float64, n int) float64 {
	if n <= 0 {
		return 1
	}
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}

// EvalCollocation fills task.BF (shape nbe x npts, AO-major:
// bf[ao*npts+pt]) for every AO named by task.BFNScreening.ShellList,
// evaluated at task.Points. LDA path: values only. Pure (spherical
// harmonic) shells return UnsupportedFeature: the real engine builds
// them from a cart_to_pure transform this reference evaluator does not
// reproduce (spec.md section 1 places the collocation kernels themselves
// out of scope; EXX already requires Cartesian-only bases for the same
// reason, section 4.7).
func EvalCollocation(basis *BasisSet, task *XCTask) error {
	npts := task.NPts()
	ao := 0
	for _, sh := range task.BFNScreening.ShellList {
		shell := &basis.Shells[sh]
		if shell.Pure {
			return unsupported("EvalCollocation", "pure (spherical) shell collocation")
		}
		for _, lxyz := range cartComponents(shell.L) {
			row := task.BF[ao*npts : ao*npts+npts]
			for p, pt := range task.Points {
				v, _, _, _ := evalCartesianAO(shell, lxyz, pt, false)
				row[p] = v
			}
			ao++
		}
	}
	return nil
}

// EvalCollocationDeriv1 fills task.BF and its gradient (DBFX/DBFY/DBFZ),
// the GGA path. See EvalCollocation for the Pure-shell restriction.
func EvalCollocationDeriv1(basis *BasisSet, task *XCTask) error {
	npts := task.NPts()
	ao := 0
	for _, sh := range task.BFNScreening.ShellList {
		shell := &basis.Shells[sh]
		if shell.Pure {
			return unsupported("EvalCollocationDeriv1", "pure (spherical) shell collocation")
		}
		for _, lxyz := range cartComponents(shell.L) {
			rowV := task.BF[ao*npts : ao*npts+npts]
			rowX := task.DBFX[ao*npts : ao*npts+npts]
			rowY := task.DBFY[ao*npts : ao*npts+npts]
			rowZ := task.DBFZ[ao*npts : ao*npts+npts]
			for p, pt := range task.Points {
				v, dx, dy, dz := evalCartesianAO(shell, lxyz, pt, true)
				rowV[p], rowX[p], rowY[p], rowZ[p] = v, dx, dy, dz
			}
			ao++
		}
	}
	return nil
}
