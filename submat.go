package gauxc

// Run is one contiguous block of AO indices shared between a shell subset
// and the full basis: (full_offset, sub_offset, length), per spec.md
// section 4.1.
type Run struct {
	FullOffset int
	SubOffset  int
	Length     int
}

// SubmatMap is the compressed row/col map from a sorted shell subset into
// the full basis, per spec.md section 4.1 (C2). Row and column subsets
// are always equal here (diagonal-compatible, per spec.md's invariant),
// so a single run list serves both dimensions.
type SubmatMap struct {
	Runs []Run
	NBE  int
}

// NewSubmatMap computes the contiguous-run compression of shellList
// against basis, mirroring the original's gen_compressed_submat_map.
// shellList must be sorted and unique.
func NewSubmatMap(basis *BasisSet, shellList []int) *SubmatMap {
	m := &SubmatMap{}
	subOff := 0
	for _, sh := range shellList {
		full := basis.Shells[sh].AOOffset
		length := basis.Shells[sh].Size()
		if n := len(m.Runs); n > 0 && m.Runs[n-1].FullOffset+m.Runs[n-1].Length == full {
			m.Runs[n-1].Length += length
		} else {
			m.Runs = append(m.Runs, Run{FullOffset: full, SubOffset: subOff, Length: length})
		}
		subOff += length
	}
	m.NBE = subOff
	return m
}

// Extract copies the (row,col) blocks named by m from a dense nbf x nbf
// row-major matrix full (leading dimension ldFull) into a dense
// nbe x nbe row-major matrix sub (leading dimension ldSub), per spec.md
// section 4.1's submat_set. Symmetry of full is preserved in sub because
// row and column subsets are identical (the diagonal-compatible case
// spec.md names as always true here).
func (m *SubmatMap) Extract(full []float64, ldFull int, sub []float64, ldSub int) {
	for _, ri := range m.Runs {
		for _, rj := range m.Runs {
			for r := 0; r < ri.Length; r++ {
				srcRow := (ri.FullOffset + r) * ldFull
				dstRow := (ri.SubOffset + r) * ldSub
				copy(
					sub[dstRow+rj.SubOffset:dstRow+rj.SubOffset+rj.Length],
					full[srcRow+rj.FullOffset:srcRow+rj.FullOffset+rj.Length],
				)
			}
		}
	}
}

// ScatterAdd adds a dense nbe x nbe row-major matrix sub (leading
// dimension ldSub) into the blocks of a dense nbf x nbf row-major matrix
// full (leading dimension ldFull) named by m, per spec.md section 4.1's
// inc_by_submat. Concurrent calls across batches must be serialized by
// the caller (spec.md: "serialisation across batches... required") —
// this method itself performs no locking.
func (m *SubmatMap) ScatterAdd(sub []float64, ldSub int, full []float64, ldFull int) {
	for _, ri := range m.Runs {
		for _, rj := range m.Runs {
			for r := 0; r < ri.Length; r++ {
				srcRow := (ri.SubOffset + r) * ldSub
				dstRow := (ri.FullOffset + r) * ldFull
				for c := 0; c < rj.Length; c++ {
					full[dstRow+rj.FullOffset+c] += sub[srcRow+rj.SubOffset+c]
				}
			}
		}
	}
}
