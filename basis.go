package gauxc

import (
	"math"

	"golang.org/x/exp/slices"
)

// PrimitiveGaussian is one term of a contracted shell: exponent and raw
// contraction coefficient (the s-type normalization from NormCoeff is
// applied wherever the primitive is evaluated), mirroring goHF's HF.go
// PrimitiveGaussian (Alpha, Coeff) minus the per-primitive angular-momentum
// vector, which here lives once on the owning Shell.
type PrimitiveGaussian struct {
	Alpha float64
	Coeff float64
}

// NormCoeff is the s-type primitive normalization goHF's HF.go computes
// inline. It is the only normalization this package applies: no
// angular-momentum-dependent factor is added for L>0 shells, whose Coeff
// is used as given.
func (p PrimitiveGaussian) NormCoeff() float64 {
	return math.Pow(2*p.Alpha/math.Pi, 0.75)
}

// Shell is a contracted Gaussian shell: a set of AOs sharing a center and
// angular momentum, per spec.md section 3 and the GLOSSARY.
type Shell struct {
	L          int
	Primitives []PrimitiveGaussian
	Center     [3]float64
	AtomIdx    int
	// AOOffset is the offset of this shell's first AO within the owning
	// BasisSet, assigned by BasisSet.generateOffsets (mirrors the
	// original's BasisSet::generate_shell_to_ao).
	AOOffset int
	// Pure selects spherical-harmonic AOs (2L+1 per shell) when true, and
	// Cartesian AOs ((L+1)(L+2)/2 per shell) when false. EXX requires
	// Cartesian shells (spec.md section 4.7 precondition).
	Pure bool
}

// Size returns the number of AOs this shell contributes.
func (s Shell) Size() int {
	if s.Pure {
		return 2*s.L + 1
	}
	return (s.L + 1) * (s.L + 2) / 2
}

// BasisSet is an ordered sequence of shells, per spec.md section 3.
type BasisSet struct {
	Shells []Shell
	nbf    int
}

// NewBasisSet assigns AO offsets and returns the basis with nbf cached,
// mirroring the original's BasisSet::generate_shell_to_ao called once at
// construction.
func NewBasisSet(shells []Shell) *BasisSet {
	b := &BasisSet{Shells: shells}
	b.generateOffsets()
	return b
}

func (b *BasisSet) generateOffsets() {
	off := 0
	for i := range b.Shells {
		b.Shells[i].AOOffset = off
		off += b.Shells[i].Size()
	}
	b.nbf = off
}

// NBF returns the total number of AOs.
func (b *BasisSet) NBF() int { return b.nbf }

// NShells returns the number of shells.
func (b *BasisSet) NShells() int { return len(b.Shells) }

// MaxL returns the largest angular momentum present.
func (b *BasisSet) MaxL() int {
	m := 0
	for _, s := range b.Shells {
		if s.L > m {
			m = s.L
		}
	}
	return m
}

// NBFSubset sums AO counts over a sorted, unique set of shell indices,
// mirroring the original's BasisSet::nbf_subset.
func (b *BasisSet) NBFSubset(shellList []int) int {
	n := 0
	for _, i := range shellList {
		n += b.Shells[i].Size()
	}
	return n
}

// AllCartesian reports whether every shell is Cartesian, the EXX
// precondition from spec.md section 4.7.
func (b *BasisSet) AllCartesian() bool {
	for _, s := range b.Shells {
		if s.Pure {
			return false
		}
	}
	return true
}

// BasisSetMap is the derived lookup table spec.md section 3 names:
// shell_to_first_ao, shell_size, shell_pure, max_l.
type BasisSetMap struct {
	shellToFirstAO []int
	shellSize      []int
	shellPure      []bool
	shellAtom      []int
	maxL           int
}

// NewBasisSetMap builds the derived map from a basis set.
func NewBasisSetMap(b *BasisSet) *BasisSetMap {
	m := &BasisSetMap{
		shellToFirstAO: make([]int, b.NShells()),
		shellSize:      make([]int, b.NShells()),
		shellPure:      make([]bool, b.NShells()),
		shellAtom:      make([]int, b.NShells()),
	}
	for i, s := range b.Shells {
		m.shellToFirstAO[i] = s.AOOffset
		m.shellSize[i] = s.Size()
		m.shellPure[i] = s.Pure
		m.shellAtom[i] = s.AtomIdx
		if s.L > m.maxL {
			m.maxL = s.L
		}
	}
	return m
}

func (m *BasisSetMap) ShellToFirstAO(i int) int { return m.shellToFirstAO[i] }
func (m *BasisSetMap) ShellSize(i int) int      { return m.shellSize[i] }
func (m *BasisSetMap) ShellPure(i int) bool     { return m.shellPure[i] }
func (m *BasisSetMap) ShellAtom(i int) int      { return m.shellAtom[i] }
func (m *BasisSetMap) MaxL() int                { return m.maxL }

// PrimPair is one primitive pair within a ShellPair: product exponent,
// weighted center, and pre-exponential overlap factor. Mirrors the
// arithmetic goHF's HF.go CalcP/CalcPp/QQ inline into every integral loop,
// here precomputed once per shell pair per spec.md's ShellPairCollection.
type PrimPair struct {
	Alpha  float64 // p = alpha_i + alpha_j
	Coeff  float64 // normalized contraction coefficient product
	Center [3]float64
	K      float64 // exp(-q*|AB|^2) prefactor
}

// ShellPair is one (i,j) entry of a ShellPairCollection.
type ShellPair struct {
	I, J      int
	AB        [3]float64 // center displacement A - B
	PrimPairs []PrimPair
}

// ShellPairCollection holds precomputed overlap-significant shell pairs,
// per spec.md section 3.
type ShellPairCollection struct {
	Pairs []ShellPair
	// index[i][j] gives the position in Pairs for i>=j, or -1.
	index [][]int
}

// NewShellPairCollection builds every (i,j), i>=j pair with at least one
// primitive pair, following goHF's V_ee nested-loop construction of pair
// data (HF.go) but collapsed to shell granularity and memoised once
// instead of recomputed per integral.
func NewShellPairCollection(b *BasisSet) *ShellPairCollection {
	n := b.NShells()
	spc := &ShellPairCollection{index: make([][]int, n)}
	for i := range spc.index {
		spc.index[i] = make([]int, n)
		for j := range spc.index[i] {
			spc.index[i][j] = -1
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			si, sj := b.Shells[i], b.Shells[j]
			ab := [3]float64{
				si.Center[0] - sj.Center[0],
				si.Center[1] - sj.Center[1],
				si.Center[2] - sj.Center[2],
			}
			ab2 := ab[0]*ab[0] + ab[1]*ab[1] + ab[2]*ab[2]
			var pairs []PrimPair
			for _, pi := range si.Primitives {
				for _, pj := range sj.Primitives {
					p := pi.Alpha + pj.Alpha
					q := pi.Alpha * pj.Alpha / p
					k := math.Exp(-q * ab2)
					center := [3]float64{
						(pi.Alpha*si.Center[0] + pj.Alpha*sj.Center[0]) / p,
						(pi.Alpha*si.Center[1] + pj.Alpha*sj.Center[1]) / p,
						(pi.Alpha*si.Center[2] + pj.Alpha*sj.Center[2]) / p,
					}
					pairs = append(pairs, PrimPair{
						Alpha:  p,
						Coeff:  pi.Coeff * pj.Coeff * pi.NormCoeff() * pj.NormCoeff(),
						Center: center,
						K:      k,
					})
				}
			}
			spc.index[i][j] = len(spc.Pairs)
			spc.Pairs = append(spc.Pairs, ShellPair{I: i, J: j, AB: ab, PrimPairs: pairs})
		}
	}
	return spc
}

// Get returns the shell pair for (i,j) with i>=j, or nil if not present.
func (spc *ShellPairCollection) Get(i, j int) *ShellPair {
	if j > i {
		i, j = j, i
	}
	idx := spc.index[i][j]
	if idx < 0 {
		return nil
	}
	return &spc.Pairs[idx]
}

// SchwarzBound approximates the Cauchy-Schwarz two-electron bound
// V_ij = sqrt((ij|ij)) for a shell pair, used by the EK screener
// (spec.md section 4.6). The underlying two-electron kernels are an
// external collaborator (spec.md section 1); this closed-form estimate
// uses the same Boys-function machinery goHF's V_ee uses per primitive
// quartet, collapsed to the diagonal (ij|ij) quartet and maximized over
// the shell's primitive pairs rather than evaluated via the full batched
// integral engine.
func SchwarzBound(spc *ShellPairCollection, i, j int) float64 {
	sp := spc.Get(i, j)
	if sp == nil {
		return 0
	}
	var maxVal float64
	for _, pp := range sp.PrimPairs {
		// (pp|pp) self-repulsion of a single primitive pair, boys(0) bound.
		val := math.Abs(pp.Coeff) * pp.K * 2 * math.Sqrt(pp.Alpha/math.Pi) *
			math.Pow(math.Pi/pp.Alpha, 1.5)
		if val > maxVal {
			maxVal = val
		}
	}
	return math.Sqrt(maxVal)
}

// sortUniqueInts sorts and de-duplicates a slice of shell indices in
// place, returning the compacted slice. Used throughout for shell_list
// canonicalization (spec.md section 3: "sorted, unique").
func sortUniqueInts(s []int) []int {
	slices.Sort(s)
	return slices.Compact(s)
}
