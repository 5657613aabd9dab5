package gauxc

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// IntegralBank computes a shell-pair potential at a set of grid points for
// a single angular-momentum bucket (ℓ_kappa, ℓ_lambda), per spec.md
// section 4.7's G-matrix accumulation. The real two-electron kernels are
// an external collaborator (spec.md section 1); this is the seam a
// production kernel library would implement. ReferenceIntegralBank
// (integralbank.go) is a correctness reference for ℓ<=0 only, not a
// performance kernel.
type IntegralBank interface {
	// Supports reports whether this bank can evaluate the given
	// angular-momentum bucket at all (even if slowly).
	Supports(li, lj int) bool
	// EvalShellPairPotential writes the (kappa,lambda) shell-pair
	// potential at every point in points into out, sized
	// size(kappa)*size(lambda)*len(points), AO-block-major with point
	// fastest: out[(a*sizeLambda+b)*len(points)+pointIdx].
	EvalShellPairPotential(basis *BasisSet, spc *ShellPairCollection, kappa, lambda int, points [][3]float64, out []float64) error
}

// ExxBucket groups shell-pair work by angular-momentum pair, the
// "angular-momentum-bucketed two-electron integral batching" spec.md
// section 4.7 names.
type ExxBucket struct {
	LBra, LKet int
	Pairs      []ShellPair
}

// BuildExxBuckets partitions a shell-pair collection into
// angular-momentum buckets.
func BuildExxBuckets(basis *BasisSet, spc *ShellPairCollection) []ExxBucket {
	type key struct{ li, lj int }
	idx := map[key]int{}
	var buckets []ExxBucket
	for _, sp := range spc.Pairs {
		li, lj := basis.Shells[sp.I].L, basis.Shells[sp.J].L
		if li < lj {
			li, lj = lj, li
		}
		k := key{li, lj}
		bi, ok := idx[k]
		if !ok {
			bi = len(buckets)
			idx[k] = bi
			buckets = append(buckets, ExxBucket{LBra: li, LKet: lj})
		}
		buckets[bi].Pairs = append(buckets[bi].Pairs, sp)
	}
	return buckets
}

// SortTasksByWork reorders tasks (largest npts*nbe first), the EXX
// dispatcher's load-balancing pre-pass supplemented from the original
// (SPEC_FULL.md section 12 / the task-sort pass dropped by the distillation):
// bigger tasks are submitted first so they don't straggle at the tail of
// a worker pool's fan-in.
func SortTasksByWork(tasks []XCTask) {
	sort.SliceStable(tasks, func(a, b int) bool {
		wa := tasks[a].NPts() * tasks[a].CouScreening.NBE
		wb := tasks[b].NPts() * tasks[b].CouScreening.NBE
		return wa > wb
	})
}

// ExxDispatcher evaluates the exact-exchange matrix contribution for a
// set of tasks against a density matrix, per spec.md section 4.7's
// semi-numerical F/G/K chain: F = B^T . P_sub (B the task's bfn-screened
// collocation matrix, P_sub the asymmetrically-packed density), G the
// per-point potential contraction of F against the injected
// IntegralBank, and K_sub = B . G scattered back into the dense nbf x nbf
// exchange matrix.
type ExxDispatcher struct {
	Basis *BasisSet
	SPC   *ShellPairCollection
	Bank  IntegralBank
}

// NewExxDispatcher constructs a dispatcher. basis must be all-Cartesian
// (spec.md section 4.7 precondition).
func NewExxDispatcher(basis *BasisSet, spc *ShellPairCollection, bank IntegralBank) (*ExxDispatcher, error) {
	if !basis.AllCartesian() {
		return nil, unsupported("NewExxDispatcher", "EXX requires an all-Cartesian basis")
	}
	return &ExxDispatcher{Basis: basis, SPC: spc, Bank: bank}, nil
}

// asymPackSubmat extracts the (rowShells x colShells) block of a dense
// nbf x nbf row-major matrix full into a dense row-major sub matrix with
// leading dimension ldSub (the total AO count of colShells). Unlike
// SubmatMap.Extract (submat.go), row and column shell lists need not be
// equal or even overlap: this is the asymmetric bfn-rows x cou-columns
// pack spec.md section 4.7 calls asym_pack_submat, feeding the F-matrix
// GEMM rather than submat.go's symmetric density/potential extraction.
func asymPackSubmat(basis *BasisSet, full []float64, ldFull int, rowShells, colShells []int, sub []float64, ldSub int) {
	rowOff := 0
	for _, ri := range rowShells {
		rSz := basis.Shells[ri].Size()
		rFull := basis.Shells[ri].AOOffset
		colOff := 0
		for _, ci := range colShells {
			cSz := basis.Shells[ci].Size()
			cFull := basis.Shells[ci].AOOffset
			for r := 0; r < rSz; r++ {
				srcRow := (rFull + r) * ldFull
				dstRow := (rowOff + r) * ldSub
				copy(sub[dstRow+colOff:dstRow+colOff+cSz], full[srcRow+cFull:srcRow+cFull+cSz])
			}
			colOff += cSz
		}
		rowOff += rSz
	}
}

// scatterAsymAdd is asymPackSubmat's inverse: it adds a dense
// rowShells x colShells sub matrix (leading dimension ldSub) into the
// named blocks of a dense nbf x nbf row-major matrix full, the scatter
// half of spec.md section 4.7's K_sub accumulation into the global K.
func scatterAsymAdd(basis *BasisSet, sub []float64, ldSub int, rowShells, colShells []int, full []float64, ldFull int) {
	rowOff := 0
	for _, ri := range rowShells {
		rSz := basis.Shells[ri].Size()
		rFull := basis.Shells[ri].AOOffset
		colOff := 0
		for _, ci := range colShells {
			cSz := basis.Shells[ci].Size()
			cFull := basis.Shells[ci].AOOffset
			for r := 0; r < rSz; r++ {
				srcRow := (rowOff + r) * ldSub
				dstRow := (rFull + r) * ldFull
				for c := 0; c < cSz; c++ {
					full[dstRow+cFull+c] += sub[srcRow+colOff+c]
				}
			}
			colOff += cSz
		}
		rowOff += rSz
	}
}

// accumulateG fills gmat (npts x nbe_cou) from fmat (npts x nbe_cou) by
// contracting each (kappa,lambda) cou-shell pair's potential-at-a-point
// block against fmat's lambda columns, per spec.md section 4.7's
// "iterate angular-momentum buckets (lA,lB)" — the bucket check happens
// per shell pair via Bank.Supports rather than pre-grouping into
// ExxBucket, since a task's cou shell list is already small relative to
// the whole basis.
func (d *ExxDispatcher) accumulateG(task *XCTask, couShells []int, fmat, gmat *mat.Dense) error {
	npts := task.NPts()
	var buf []float64
	offK := 0
	for _, kappa := range couShells {
		sizeK := d.Basis.Shells[kappa].Size()
		lk := d.Basis.Shells[kappa].L
		offL := 0
		for _, lambda := range couShells {
			sizeL := d.Basis.Shells[lambda].Size()
			ll := d.Basis.Shells[lambda].L
			if !d.Bank.Supports(lk, ll) {
				return unsupported("ExxDispatcher.EvalTask",
					"no integral bank for angular-momentum bucket (%d,%d)", lk, ll)
			}
			need := sizeK * sizeL * npts
			if cap(buf) < need {
				buf = make([]float64, need)
			} else {
				buf = buf[:need]
			}
			if err := d.Bank.EvalShellPairPotential(d.Basis, d.SPC, kappa, lambda, task.Points, buf); err != nil {
				return err
			}
			for a := 0; a < sizeK; a++ {
				for b := 0; b < sizeL; b++ {
					base := (a*sizeL + b) * npts
					for pt := 0; pt < npts; pt++ {
						gmat.Set(pt, offK+a, gmat.At(pt, offK+a)+buf[base+pt]*fmat.At(pt, offL+b))
					}
				}
			}
			offL += sizeL
		}
		offK += sizeK
	}
	return nil
}

// EvalTask accumulates the task's exchange contribution into kOut (dense
// nbf x nbf, row-major, += semantics), implementing spec.md section
// 4.7's semi-numerical chain: F(pt,cou) = sum_bfn B(bfn,pt) * P(bfn,cou)
// (asym_pack_submat against task.BFNScreening rows / task.CouScreening
// columns), G = Bank-contracted potential of F, K_sub = B . G, scattered
// back by bfn/cou shell block. task.BF (the task's collocation matrix,
// computed by the caller's EvalCollocation pass) and task.FMat/task.GMat/
// task.NBEScr (per-task scratch, sized by this call when their length is
// wrong and reused as-is on later calls for the same task) back every
// matrix in the chain.
func (d *ExxDispatcher) EvalTask(task *XCTask, p []float64, nbf int, kOut []float64) error {
	bfnShells := task.BFNScreening.ShellList
	couShells := task.CouScreening.ShellList
	nbeBfn := task.BFNScreening.NBE
	nbeCou := task.CouScreening.NBE
	npts := task.NPts()

	if nbeCou == 0 || nbeBfn == 0 {
		return nil
	}
	if len(task.BF) != nbeBfn*npts {
		return invalidInput("ExxDispatcher.EvalTask", "task.BF size %d != nbe_bfn*npts (%d)", len(task.BF), nbeBfn*npts)
	}

	if len(task.NBEScr) != nbeBfn*nbeCou {
		task.NBEScr = make([]float64, nbeBfn*nbeCou)
	}
	asymPackSubmat(d.Basis, p, nbf, bfnShells, couShells, task.NBEScr, nbeCou)

	phi := mat.NewDense(nbeBfn, npts, task.BF) // B^T in spec.md's point-major notation
	psub := mat.NewDense(nbeBfn, nbeCou, task.NBEScr)

	if len(task.FMat) != npts*nbeCou {
		task.FMat = make([]float64, npts*nbeCou)
	}
	fmat := mat.NewDense(npts, nbeCou, task.FMat)
	fmat.Mul(phi.T(), psub) // F = B^T . P_sub, npts x nbe_cou

	if len(task.GMat) != npts*nbeCou {
		task.GMat = make([]float64, npts*nbeCou)
	}
	for i := range task.GMat {
		task.GMat[i] = 0
	}
	gmat := mat.NewDense(npts, nbeCou, task.GMat)
	if err := d.accumulateG(task, couShells, fmat, gmat); err != nil {
		return err
	}

	var kSub mat.Dense
	kSub.Mul(phi, gmat) // K_sub = B . G, nbe_bfn x nbe_cou

	scatterAsymAdd(d.Basis, kSub.RawMatrix().Data, nbeCou, bfnShells, couShells, kOut, nbf)
	return nil
}
