package gauxc

import "math"

// ssfCutoff is Stratmann-Scuseria-Frisch's hole-boundary parameter a,
// per the GLOSSARY's "SSF — Stratmann-Scuseria-Frisch partition weights".
const ssfCutoff = 0.64

// ssfSwitch is the degree-7 smoothing polynomial SSF uses in place of
// Becke's thrice-iterated degree-3 polynomial: zeta(x) =
// (35x - 35x^3 + 21x^5 - 5x^7)/16, applied once.
func ssfSwitch(x float64) float64 {
	return (35*x - 35*x*x*x + 21*x*x*x*x*x - 5*x*x*x*x*x*x*x) / 16
}

// ssfFrac evaluates SSF's piecewise smoothed step function g(mu): 1
// below -a, 0 above a, and a smooth transition in between.
func ssfFrac(mu float64) float64 {
	switch {
	case mu <= -ssfCutoff:
		return 1
	case mu >= ssfCutoff:
		return 0
	default:
		return 0.5 * (1 - ssfSwitch(mu/ssfCutoff))
	}
}

// ApplySSFWeights modifies tasks' quadrature weights in place to fold in
// the SSF molecular partition function, per spec.md section 4.8: for a
// point generated on atom a's grid, the partitioned weight multiplies the
// raw weight by P_a(r) = p_a(r) / sum_b p_b(r), where p_a(r) is the
// product over all other atoms c of the smoothed confocal-elliptical
// step function evaluated at atom a vs atom c.
//
// Callers are responsible for the idempotence latch (LoadBalancer in
// loadbalancer.go); this function itself runs unconditionally and would
// double-apply the partition if called twice on the same tasks.
func ApplySSFWeights(mol *Molecule, meta *MolMeta, tasks []XCTask) error {
	natoms := mol.NAtoms()
	if natoms == 0 {
		return invalidInput("ApplySSFWeights", "molecule has no atoms")
	}

	distTo := make([]float64, natoms)
	pAtom := make([]float64, natoms)

	for ti := range tasks {
		task := &tasks[ti]
		if task.AtomIdx < 0 || task.AtomIdx >= natoms {
			return invalidInput("ApplySSFWeights", "task %d has invalid AtomIdx %d", ti, task.AtomIdx)
		}
		for pi, pt := range task.Points {
			for b := 0; b < natoms; b++ {
				distTo[b] = dist3(pt, mol.Atoms[b].Coords)
			}
			sum := 0.0
			for a := 0; a < natoms; a++ {
				p := 1.0
				for c := 0; c < natoms; c++ {
					if c == a {
						continue
					}
					rab := meta.RAB[a][c]
					if rab == 0 {
						continue
					}
					mu := (distTo[a] - distTo[c]) / rab
					p *= ssfFrac(mu)
				}
				pAtom[a] = p
				sum += p
			}
			if sum <= 0 || math.IsNaN(sum) {
				continue
			}
			task.Weights[pi] *= pAtom[task.AtomIdx] / sum
		}
	}
	return nil
}
