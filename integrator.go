package gauxc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Integrator is the top-level entry point a replicated density-matrix
// driver calls into, per spec.md section 5 (EXTERNAL INTERFACES):
// EvalEXCVXC and EvalEXX, each taking (P, basis, grid tasks) and
// returning the accumulated result after C3/C4 stream batches through
// C5 (or C7/C8 for exchange) and C9 reduces.
type Integrator struct {
	Basis       *BasisSet
	LoadBal     *LoadBalancer
	Driver      LocalWorkDriver
	Functional  Functional
	Reducer     Reducer
	NBFThreshold int
	PipelineDepth int
}

// NewIntegrator wires a host-only integrator around a reference LWD and
// a single-process (no-op) reducer, the configuration spec.md's Non-goals
// leave as the only in-scope backend (device execution is a documented
// stub, MPI reduction an external collaborator).
func NewIntegrator(basis *BasisSet, lb *LoadBalancer, functional Functional) (*Integrator, error) {
	driver, err := MakeLocalWorkDriver(Host, "DEFAULT", LocalWorkSettings{})
	if err != nil {
		return nil, err
	}
	return &Integrator{
		Basis:         basis,
		LoadBal:       lb,
		Driver:        driver,
		Functional:    functional,
		Reducer:       NoopReduction{},
		NBFThreshold:  DefaultNBFThreshold,
		PipelineDepth: 1,
	}, nil
}

// EvalEXCVXCResult is the output of EvalEXCVXC, per spec.md section 5.
type EvalEXCVXCResult struct {
	EXC float64
	Nel float64
	VXC []float64 // nbf x nbf, row-major, symmetric
}

// EvalEXCVXC computes the exchange-correlation energy, electron count,
// and potential matrix for a density matrix p (nbf x nbf, row-major),
// per spec.md sections 4.3-4.4: C11 pre-processes weights idempotently,
// C3+C4 stream shell-batched sub-problems into C5, C5 fills VXC/EXC/Nel,
// C9 reduces.
func (in *Integrator) EvalEXCVXC(ctx context.Context, p []float64, nbf int) (EvalEXCVXCResult, error) {
	if len(p) != nbf*nbf {
		return EvalEXCVXCResult{}, invalidInput("EvalEXCVXC", "P size %d != nbf^2 (%d)", len(p), nbf*nbf)
	}
	if err := in.LoadBal.ApplyPartitionWeights(); err != nil {
		return EvalEXCVXCResult{}, err
	}

	tasks := in.LoadBal.Tasks()
	if len(tasks) == 0 {
		return EvalEXCVXCResult{}, nil
	}

	nDeriv := in.Functional.NDeriv()
	maxNPts, maxNBE := 0, 0
	for i := range tasks {
		if n := tasks[i].NPts(); n > maxNPts {
			maxNPts = n
		}
		if n := tasks[i].BFNScreening.NBE; n > maxNBE {
			maxNBE = n
		}
	}
	arena := NewBatchArena(nDeriv, nbf, maxNPts, maxNBE)
	orch := NewQuadratureOrchestrator(in.Basis, in.Functional, in.Driver)

	vxc := make([]float64, nbf*nbf)
	acc := &SerializingAccumulator{}
	var totalEXC, totalNel float64

	batches := PartitionAll(tasks, in.Basis, in.NBFThreshold)

	worker := &HostWorker{
		Exec: func(ctx context.Context, item WorkItem) error {
			batch := item.Batch
			for ti := batch.TaskBegin; ti < batch.TaskEnd; ti++ {
				task := &tasks[ti]
				shellList := task.BFNScreening.ShellList
				m := NewSubmatMap(in.Basis, shellList)

				pSub := make([]float64, m.NBE*m.NBE)
				if err := in.Driver.Extract(ctx, m, p, nbf, pSub, m.NBE); err != nil {
					return err
				}

				result, err := orch.RunBatch(ctx, task, pSub, arena)
				if err != nil {
					return err
				}

				acc.With(func() {
					totalEXC += result.EXC
					totalNel += result.Nel
					_ = in.Driver.ScatterAdd(ctx, m, result.VSub, m.NBE, vxc, nbf)
				})
			}
			return nil
		},
	}

	items := make([]WorkItem, len(batches))
	for i, b := range batches {
		items[i] = WorkItem{Batch: b, Seq: i}
	}
	pipeline := NewPipeline(worker, in.PipelineDepth)
	if err := pipeline.Run(ctx, items); err != nil {
		return EvalEXCVXCResult{}, err
	}

	symmetrizeLowerToFull(vxc, nbf)

	if err := in.Reducer.AllReduceSum(ctx, vxc); err != nil {
		return EvalEXCVXCResult{}, err
	}
	sums := []float64{totalEXC, totalNel}
	if err := in.Reducer.AllReduceSum(ctx, sums); err != nil {
		return EvalEXCVXCResult{}, err
	}
	totalEXC, totalNel = sums[0], sums[1]

	return EvalEXCVXCResult{EXC: totalEXC, Nel: totalNel, VXC: vxc}, nil
}

// EvalEXXResult is the output of EvalEXX, per spec.md section 5.
type EvalEXXResult struct {
	K []float64 // nbf x nbf, row-major, symmetric
}

// EvalEXX computes the exact-exchange matrix K for density matrix p,
// per spec.md section 4.6-4.7: C7 annotates each task with significant
// (cou) shells/pairs, C8 drives two-electron dispatch into K, C9 reduces.
func (in *Integrator) EvalEXX(ctx context.Context, p []float64, nbf int, bank IntegralBank, params EKScreeningParams) (EvalEXXResult, error) {
	if len(p) != nbf*nbf {
		return EvalEXXResult{}, invalidInput("EvalEXX", "P size %d != nbf^2 (%d)", len(p), nbf*nbf)
	}
	if !in.Basis.AllCartesian() {
		return EvalEXXResult{}, unsupported("EvalEXX", "EXX requires an all-Cartesian basis")
	}
	if in.Basis.MaxL() > 2 {
		return EvalEXXResult{}, unsupported("EvalEXX", "EXX requires max angular momentum <= 2")
	}

	spc := NewShellPairCollection(in.Basis)
	vmax := NewShellMaxV(spc, in.Basis.NShells())

	absP := make([]float64, len(p))
	for i, v := range p {
		if v < 0 {
			absP[i] = -v
		} else {
			absP[i] = v
		}
	}

	tasks := in.LoadBal.Tasks()
	// Per-task collocation and screening are independent of every other
	// task (each writes only its own task.BF/CouScreening), so this is
	// fanned out with an errgroup the way goHF parallelizes its own
	// independent per-shell-pair work.
	g, gctx := errgroup.WithContext(ctx)
	for i := range tasks {
		i := i
		g.Go(func() error {
			task := &tasks[i]
			nbe := task.BFNScreening.NBE
			npts := task.NPts()
			task.BF = make([]float64, nbe*npts)
			if err := in.Driver.EvalCollocation(gctx, in.Basis, task); err != nil {
				return err
			}
			return EKScreenTask(in.Basis, task, vmax, absP, nbf, params)
		})
	}
	if err := g.Wait(); err != nil {
		return EvalEXXResult{}, err
	}

	var active []XCTask
	for i := range tasks {
		if len(tasks[i].CouScreening.ShellList) > 0 {
			active = append(active, tasks[i])
		}
	}
	// Biggest tasks first, per the task-sort pre-pass SPEC_FULL.md section
	// 12 describes (SortTasksByWork), so they don't straggle at the tail of
	// the loop.
	SortTasksByWork(active)

	dispatcher, err := NewExxDispatcher(in.Basis, spc, bank)
	if err != nil {
		return EvalEXXResult{}, err
	}

	k := make([]float64, nbf*nbf)
	for i := range active {
		if err := dispatcher.EvalTask(&active[i], p, nbf, k); err != nil {
			return EvalEXXResult{}, err
		}
	}

	symmetrizeAverage(k, nbf)

	if err := in.Reducer.AllReduceSum(ctx, k); err != nil {
		return EvalEXXResult{}, err
	}

	return EvalEXXResult{K: k}, nil
}

// symmetrizeLowerToFull mirrors a lower-triangle-populated dense matrix
// into its upper triangle, per spec.md section 4.4's "final VXC
// symmetrization runs once after all batches".
func symmetrizeLowerToFull(m []float64, n int) {
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			m[j*n+i] = m[i*n+j]
		}
	}
}

// symmetrizeAverage folds a matrix to (M + M^T)/2, the symmetrization
// pass spec.md section 4.7 calls for "after all batches" on K.
func symmetrizeAverage(m []float64, n int) {
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			avg := 0.5 * (m[i*n+j] + m[j*n+i])
			m[i*n+j] = avg
			m[j*n+i] = avg
		}
	}
}

// UKSResult is the per-channel output of EvalEXCVXCUKS.
type UKSResult struct {
	EXC        float64
	Nel        float64
	VXCAlpha   []float64
	VXCBeta    []float64
}

// EvalEXCVXCUKS computes the unrestricted (spin-polarized) XC energy and
// per-channel potential, per spec.md section 4.5's UKS dispatch ("uses S
// and Z; the pair (ρ↑,ρ↓) = ((S+Z)/2, (S−Z)/2)"). in.Functional must be
// exchange-only (Slater/PBEX, not a correlation functional), because the
// implementation exploits the exact spin-scaling relation
// E_x[ρ↑,ρ↓] = ½(E_x[2ρ↑] + E_x[2ρ↓]) rather than forking RunBatch's
// internals to carry an interleaved two-channel density through steps
// 1-3 and 7-9 independently and steps 5-6 jointly, the structure spec.md
// describes literally. This is an exact identity for any exchange-only
// functional (it is not valid for correlation functionals), and it
// reuses the restricted pipeline's numerics exactly rather than
// duplicating them.
//
// spin.go's Interleave/DeInterleave still do the S/Z bookkeeping spec.md
// section 4.5 names: pAlpha/pBeta are packed into (S,Z) on the way in,
// 2*alpha/2*beta are recovered from (S,Z) for the two restricted calls,
// and the two channel results are packed/unpacked through the same pair
// on the way out.
func (in *Integrator) EvalEXCVXCUKS(ctx context.Context, pAlpha, pBeta []float64, nbf int) (UKSResult, error) {
	d := Interleave(UKS, pAlpha, pBeta)
	twoAlpha := make([]float64, len(d.S))
	twoBeta := make([]float64, len(d.S))
	for i := range d.S {
		twoAlpha[i] = d.S[i] + d.Z[i] // = 2*pAlpha[i]
		twoBeta[i] = d.S[i] - d.Z[i]  // = 2*pBeta[i]
	}

	ra, err := in.EvalEXCVXC(ctx, twoAlpha, nbf)
	if err != nil {
		return UKSResult{}, err
	}
	rb, err := in.EvalEXCVXC(ctx, twoBeta, nbf)
	if err != nil {
		return UKSResult{}, err
	}

	vxc := Interleave(UKS, ra.VXC, rb.VXC)
	vxcAlpha, vxcBeta := DeInterleave(vxc)

	return UKSResult{
		EXC:      0.5 * (ra.EXC + rb.EXC),
		Nel:      0.5*ra.Nel + 0.5*rb.Nel,
		VXCAlpha: vxcAlpha,
		VXCBeta:  vxcBeta,
	}, nil
}
