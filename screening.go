package gauxc

import "math"

// EKScreeningParams are the two screening tolerances the original's
// exx_ek_screening takes (eps_E, eps_K), per spec.md section 4.6.
type EKScreeningParams struct {
	EpsE float64
	EpsK float64
}

// shellMaxV is the per-shell-pair Schwarz bound table, V_shell_max in the
// original: V[i*n+j] = SchwarzBound(i,j) for i>=j, symmetric.
type shellMaxV struct {
	n int
	v []float64
}

// NewShellMaxV precomputes the full symmetric Schwarz-bound table for a
// shell-pair collection, the eps_K screener's V_shell_max input.
func NewShellMaxV(spc *ShellPairCollection, nshells int) *shellMaxV {
	m := &shellMaxV{n: nshells, v: make([]float64, nshells*nshells)}
	for i := 0; i < nshells; i++ {
		for j := 0; j <= i; j++ {
			val := SchwarzBound(spc, i, j)
			m.v[i*nshells+j] = val
			m.v[j*nshells+i] = val
		}
	}
	return m
}

func (m *shellMaxV) at(i, j int) float64 { return m.v[i*m.n+j] }

// EKScreenTask populates task.CouScreening for one task, mirroring the
// original's bitmap path in exx_screening.cxx (the canonical path; the
// parallel std::set-based path behind its #if 0 is dead code and is not
// reproduced here, per SPEC_FULL.md section 12 / Open Question 2).
//
// absDensity is the full nbf x nbf |P| (absolute density, leading
// dimension ldp) against which the approximate F_i = sum_j |P_ij| *
// maxBfn_j bound is built; task must have task.BF already populated via
// EvalCollocation for the task's bfn shell list.
func EKScreenTask(basis *BasisSet, task *XCTask, vmax *shellMaxV, absDensity []float64, ldp int, params EKScreeningParams) error {
	nshells := basis.NShells()
	nbf := basis.NBF()
	npts := task.NPts()
	shellList := task.BFNScreening.ShellList
	nbeBfn := task.BFNScreening.NBE

	if len(task.BF) < nbeBfn*npts {
		return invalidInput("EKScreenTask", "task.BF too small for nbe=%d npts=%d", nbeBfn, npts)
	}

	// max_bf_sum = max_i sqrt(w_i) * sum_mu |B(mu,i)|
	maxBfSum := 0.0
	for p := 0; p < npts; p++ {
		sum := 0.0
		for b := 0; b < nbeBfn; b++ {
			sum += math.Abs(task.BF[b*npts+p])
		}
		v := math.Sqrt(task.Weights[p]) * sum
		if v > maxBfSum {
			maxBfSum = v
		}
	}

	// bfn_max_grid[b] = max_i sqrt(w_i) * |B(b,i)|, scattered into a
	// full-nbf-length array by shell offset.
	taskMaxBfn := make([]float64, nbf)
	ibf := 0
	for _, sh := range shellList {
		off := basis.Shells[sh].AOOffset
		sz := basis.Shells[sh].Size()
		for j := 0; j < sz; j++ {
			maxV := 0.0
			for p := 0; p < npts; p++ {
				v := math.Sqrt(task.Weights[p]) * math.Abs(task.BF[(ibf+j)*npts+p])
				if v > maxV {
					maxV = v
				}
			}
			taskMaxBfn[off+j] = maxV
		}
		ibf += sz
	}

	// task_approx_f = |P| * task_max_bfn  (nbf-length, dense GEMV)
	approxF := make([]float64, nbf)
	for i := 0; i < nbf; i++ {
		sum := 0.0
		for k := 0; k < nbf; k++ {
			sum += absDensity[i*ldp+k] * taskMaxBfn[k]
		}
		approxF[i] = sum
	}

	// Collapse to per-shell max.
	maxFShells := make([]float64, nshells)
	ibf = 0
	for ish := 0; ish < nshells; ish++ {
		sz := basis.Shells[ish].Size()
		tmp := 0.0
		for i := 0; i < sz; i++ {
			if v := math.Abs(approxF[ibf+i]); v > tmp {
				tmp = v
			}
		}
		maxFShells[ish] = tmp
		ibf += sz
	}

	included := make(map[int]bool)
	var shellPairs [][2]int
	for i := 0; i < nshells; i++ {
		for j := 0; j <= i; j++ {
			vij := vmax.at(i, j)
			fi, fj := maxFShells[i], maxFShells[j]
			epsECompare := fi * fj * vij
			epsKCompare := math.Max(fi, fj) * vij * maxBfSum
			if epsKCompare > params.EpsK || epsECompare > params.EpsE {
				included[i] = true
				included[j] = true
				shellPairs = append(shellPairs, [2]int{i, j})
			}
		}
	}

	ekShells := make([]int, 0, len(included))
	for sh := range included {
		ekShells = append(ekShells, sh)
	}
	ekShells = sortUniqueInts(ekShells)

	task.CouScreening = CouScreening{
		ShellList:     ekShells,
		ShellPairList: shellPairs,
		NBE:           basis.NBFSubset(ekShells),
	}
	return nil
}
