package gauxc

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// QuadratureOrchestrator runs the fixed per-batch pipeline (C5, spec.md
// section 4.4): collocate, build X, build U-variables, call the
// functional, fold weights, build Z, rank-2k, accumulate. The pack and
// scatter steps around it are done by the caller through the
// LocalWorkDriver (see BatchResult).
type QuadratureOrchestrator struct {
	Basis      *BasisSet
	Functional Functional
	Driver     LocalWorkDriver
}

// NewQuadratureOrchestrator constructs an orchestrator. The NDeriv of the
// arena passed to RunBatch must match functional.NDeriv (checked at
// RunBatch time per task).
func NewQuadratureOrchestrator(basis *BasisSet, functional Functional, driver LocalWorkDriver) *QuadratureOrchestrator {
	return &QuadratureOrchestrator{Basis: basis, Functional: functional, Driver: driver}
}

// BatchResult carries the two scalar accumulations a batch contributes,
// plus the lower-stored V_sub this call wrote (for the caller's
// scatter-add via C2/the LocalWorkDriver).
type BatchResult struct {
	EXC  float64
	Nel  float64
	VSub []float64 // nbe x nbe, row-major, lower triangle populated
}

// RunBatch executes the full C5 pipeline for one task against one
// already-packed density sub-matrix pSub (nbe x nbe, row-major, from C2's
// Extract), returning the accumulated V_sub as BatchResult.VSub (nbe x nbe,
// row-major, lower triangle only, per spec.md section 4.4's "lower
// triangle of per-task V is produced; final VXC symmetrization runs once
// after all batches"). arena must be sized for at least this task's
// (npts, nbe).
func (q *QuadratureOrchestrator) RunBatch(ctx context.Context, task *XCTask, pSub []float64, arena *BatchArena) (BatchResult, error) {
	npts := task.NPts()
	nbe := task.BFNScreening.NBE
	if len(pSub) != nbe*nbe {
		return BatchResult{}, invalidInput("RunBatch", "pSub size %d != nbe^2 (%d)", len(pSub), nbe*nbe)
	}
	if npts > arena.MaxNPts || nbe > arena.MaxNBE {
		return BatchResult{}, invalidInput("RunBatch", "task (npts=%d, nbe=%d) exceeds arena capacity (%d, %d)", npts, nbe, arena.MaxNPts, arena.MaxNBE)
	}
	isGGA := arena.NDeriv == GGA
	if isGGA != (q.Functional.NDeriv() == GGA) {
		return BatchResult{}, unsupported("RunBatch", "functional derivative order does not match arena/driver configuration")
	}

	task.BF = arena.BasisEval[:nbe*npts]
	if isGGA {
		base := nbe * npts
		task.DBFX = arena.BasisEval[base : base+nbe*npts]
		task.DBFY = arena.BasisEval[2*base : 2*base+nbe*npts]
		task.DBFZ = arena.BasisEval[3*base : 3*base+nbe*npts]
		if err := q.Driver.EvalCollocationDeriv1(ctx, q.Basis, task); err != nil {
			return BatchResult{}, err
		}
	} else {
		if err := q.Driver.EvalCollocation(ctx, q.Basis, task); err != nil {
			return BatchResult{}, err
		}
	}

	phi := mat.NewDense(nbe, npts, task.BF)
	p := mat.NewDense(nbe, nbe, pSub)

	var x, xx, xy, xz mat.Dense
	x.Mul(p, phi) // X(mu,i) = sum_nu P(mu,nu) phi(nu,i)

	if isGGA {
		dphiX := mat.NewDense(nbe, npts, task.DBFX)
		dphiY := mat.NewDense(nbe, npts, task.DBFY)
		dphiZ := mat.NewDense(nbe, npts, task.DBFZ)
		xx.Mul(p, dphiX)
		xy.Mul(p, dphiY)
		xz.Mul(p, dphiZ)
	}

	rho := arena.DenScr[:npts]
	for i := 0; i < npts; i++ {
		s := 0.0
		for mu := 0; mu < nbe; mu++ {
			s += x.At(mu, i) * phi.At(mu, i)
		}
		rho[i] = s
	}

	var gamma, vgamma []float64
	var gradRhoX, gradRhoY, gradRhoZ []float64
	if isGGA {
		gamma = arena.Gamma[:npts]
		vgamma = arena.VGamma[:npts]
		gradRhoX = arena.DenScr[npts : 2*npts]
		gradRhoY = arena.DenScr[2*npts : 3*npts]
		gradRhoZ = arena.DenScr[3*npts : 4*npts]
		dphiX := mat.NewDense(nbe, npts, task.DBFX)
		dphiY := mat.NewDense(nbe, npts, task.DBFY)
		dphiZ := mat.NewDense(nbe, npts, task.DBFZ)
		for i := 0; i < npts; i++ {
			var gx, gy, gz float64
			for mu := 0; mu < nbe; mu++ {
				gx += xx.At(mu, i)*phi.At(mu, i) + x.At(mu, i)*dphiX.At(mu, i)
				gy += xy.At(mu, i)*phi.At(mu, i) + x.At(mu, i)*dphiY.At(mu, i)
				gz += xz.At(mu, i)*phi.At(mu, i) + x.At(mu, i)*dphiZ.At(mu, i)
			}
			gradRhoX[i], gradRhoY[i], gradRhoZ[i] = gx, gy, gz
			gamma[i] = gx*gx + gy*gy + gz*gz
		}
	}

	eps := arena.Eps[:npts]
	vrho := arena.VRho[:npts]
	q.Functional.Eval(rho, gamma, eps, vrho, vgamma)

	nel := 0.0
	exc := 0.0
	for i := 0; i < npts; i++ {
		w := task.Weights[i]
		exc += w * eps[i] * rho[i]
		nel += w * rho[i]
		eps[i] *= w
		vrho[i] *= w
		if isGGA {
			vgamma[i] *= w
		}
	}

	// The S channel of the weight-fold (spec.md section 4.5's density_id
	// dispatch) runs through spin.go's FoldWeights, the same RKS/UKS/GKS
	// entry point the orchestrator would dispatch through for any
	// regime; RunBatch only ever builds the single-channel S density, so
	// it always folds with RKS/DensityS.
	ldaZ := make([]float64, npts*nbe)
	if err := FoldWeights(RKS, DensityS, vrho, task.BF, npts, nbe, ldaZ); err != nil {
		return BatchResult{}, err
	}

	z := arena.ZMat[:nbe*npts]
	for mu := 0; mu < nbe; mu++ {
		for i := 0; i < npts; i++ {
			zval := ldaZ[i*nbe+mu]
			if isGGA {
				zval += 2 * vgamma[i] * (xx.At(mu, i)*task.DBFX[mu*npts+i] +
					xy.At(mu, i)*task.DBFY[mu*npts+i] +
					xz.At(mu, i)*task.DBFZ[mu*npts+i])
			}
			z[mu*npts+i] = zval
		}
	}

	vSub := make([]float64, nbe*nbe)
	syr2kLower(nbe, npts, z, task.BF, vSub)

	task.ZMat = z

	return BatchResult{EXC: exc, Nel: nel, VSub: vSub}, nil
}

// syr2kLower computes V += Z*phi^T + phi*Z^T, writing only the lower
// triangle (spec.md section 4.4: "lower triangle of per-task V is
// produced"). gonum's mat package has no public Syr2k entry point, so
// this is built directly on top of the same Dense GEMM it does export.
func syr2kLower(nbe, npts int, z, phi []float64, vOut []float64) {
	zMat := mat.NewDense(nbe, npts, z)
	phiMat := mat.NewDense(nbe, npts, phi)
	var full mat.Dense
	full.Mul(zMat, phiMat.T())
	var fullT mat.Dense
	fullT.Mul(phiMat, zMat.T())
	for i := 0; i < nbe; i++ {
		for j := 0; j <= i; j++ {
			vOut[i*nbe+j] += full.At(i, j) + fullT.At(i, j)
		}
	}
}
