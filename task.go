package gauxc

// NDeriv selects the derivative order the quadrature orchestrator
// operates at, the sum type spec.md section 9 calls for in place of the
// original's template parameter: {LDA, GGA}. Meta-GGA is deliberately not
// a third case here (spec.md Non-goals / Open Questions: the meta-GGA
// host path is only partially wired upstream); a meta-GGA evaluation
// cannot be expressed with this type at all, so no code path checks for
// one (see SPEC_FULL.md section 12).
type NDeriv int

const (
	LDA NDeriv = iota
	GGA
)

// Regime selects the spin-polarization scheme, per spec.md section 4.5.
type Regime int

const (
	RKS Regime = iota
	UKS
	GKS
)

// DensityID selects which interleaved spin-density channel a given pass
// of the orchestrator is writing, per spec.md section 4.5's
// density_id ∈ {S, Z, X, Y}.
type DensityID int

const (
	DensityS DensityID = iota
	DensityZ
	DensityX
	DensityY
)

// BFNScreening is the basis-function-screened shell set for a task, per
// spec.md section 3.
type BFNScreening struct {
	ShellList []int // sorted, unique
	NBE       int   // = sum of shell sizes
	NShells   int
	NCut      int // number of maximal contiguous runs of AO indices
	IBFBegin  int
}

// CouScreening is the Coulomb-screened shell/shell-pair set for a task,
// populated only for EXX (spec.md section 3).
type CouScreening struct {
	ShellList     []int
	ShellPairList [][2]int
	NBE           int
}

// XCTask is one spatial batch of grid points, per spec.md section 3.
// On the XC path the scratch views (BF, DBFX/Y/Z, ZMat) are slices into
// the BatchArena sized once per integrator call and re-sliced per batch;
// on the EXX path BF and FMat/GMat/NBEScr are allocated per task.
type XCTask struct {
	Points  [][3]float64
	Weights []float64

	// AtomIdx is the quadrature grid's parent atom: atom-centered grids
	// are generated per atom, and the SSF partition weight modification
	// (weights.go) needs to know which atom a task's raw (unpartitioned)
	// weights were seeded around.
	AtomIdx int

	BFNScreening BFNScreening
	CouScreening CouScreening

	// Scratch views, assigned by the orchestrator at batch entry.
	BF                  []float64 // nbe x npts, row-major (AO-major): BF[ao*npts+pt]
	DBFX, DBFY, DBFZ    []float64
	ZMat                []float64
	XMatX, XMatY, XMatZ []float64

	// FMat, GMat and NBEScr back the EXX dispatcher's F/G/K chain
	// (exx.go's ExxDispatcher.EvalTask): FMat/GMat are npts x nbe_cou,
	// NBEScr is nbe_bfn x nbe_cou, all reused call-to-call rather than
	// reallocated once sized correctly for a task.
	FMat, GMat []float64
	NBEScr     []float64
}

// NPts returns the number of grid points in the task.
func (t *XCTask) NPts() int { return len(t.Points) }

// computeNCut counts the maximal contiguous runs of AO indices spanned by
// a sorted, unique shell_list, the same run-compression submat.go uses for
// extract/scatter_add. spec.md section 3 calls this ncut.
func computeNCut(basis *BasisSet, shellList []int) int {
	if len(shellList) == 0 {
		return 0
	}
	runs := 0
	prevEnd := -2
	for _, sh := range shellList {
		off := basis.Shells[sh].AOOffset
		sz := basis.Shells[sh].Size()
		if off != prevEnd {
			runs++
		}
		prevEnd = off + sz
	}
	return runs
}

// FinalizeBFNScreening canonicalizes shell_list (sort+unique), and fills
// NBE/NShells/NCut/IBFBegin, mirroring the bookkeeping the original's
// load balancer performs once per task at grid-generation time. Exposed
// so a LoadBalancer implementation can finish populating XCTask.
func FinalizeBFNScreening(basis *BasisSet, shellList []int) BFNScreening {
	shellList = sortUniqueInts(shellList)
	ibfBegin := 0
	if len(shellList) > 0 {
		ibfBegin = basis.Shells[shellList[0]].AOOffset
	}
	return BFNScreening{
		ShellList: shellList,
		NBE:       basis.NBFSubset(shellList),
		NShells:   len(shellList),
		NCut:      computeNCut(basis, shellList),
		IBFBegin:  ibfBegin,
	}
}

// BatchArena holds the per-call scratch arenas described in spec.md
// section 3: "Batch scratch arenas... Created once per integrator call;
// reused across batches." Sized from (max_npts, max_nbe, n_deriv), the
// same constructor shape as the original's XCHostData. Meta-GGA scratch
// (tau/laplacian/M-matrices) is not part of this struct: NDeriv only has
// an LDA/GGA case (task.go's NDeriv doc comment), so there is no code
// path that would ever size or write a meta-GGA field.
type BatchArena struct {
	NDeriv      NDeriv
	MaxNPts     int
	MaxNBE      int
	MaxNPtsXNBE int
	NBF         int

	Eps    []float64
	VRho   []float64
	Gamma  []float64
	VGamma []float64

	ZMat      []float64
	DenScr    []float64
	BasisEval []float64
}

// NewBatchArena allocates scratch sized for the largest task the caller
// will dispatch, per spec.md section 3's lifecycle ("created at call
// entry, destroyed at exit").
func NewBatchArena(nDeriv NDeriv, nbf, maxNPts, maxNBE int) *BatchArena {
	maxNPtsXNBE := maxNPts * maxNBE
	nd := 0
	if nDeriv == GGA {
		nd = 1
	}
	a := &BatchArena{
		NDeriv:      nDeriv,
		MaxNPts:     maxNPts,
		MaxNBE:      maxNBE,
		MaxNPtsXNBE: maxNPtsXNBE,
		NBF:         nbf,
		Eps:         make([]float64, maxNPts),
		VRho:        make([]float64, maxNPts),
		Gamma:       make([]float64, nd*maxNPts),
		VGamma:      make([]float64, nd*maxNPts),
		ZMat:        make([]float64, maxNPtsXNBE),
		DenScr:      make([]float64, (3*nd+1)*maxNPts),
		BasisEval:   make([]float64, (3*nd+1)*maxNPtsXNBE),
	}
	return a
}
