package gauxc

import "context"

// ExecutionSpace selects host or device execution, per spec.md section
// 4.8 and the original's ExecutionSpace enum.
type ExecutionSpace int

const (
	Host ExecutionSpace = iota
	Device
)

// LocalWorkDriver is the per-rank kernel surface a quadrature or EXX
// orchestrator calls into: collocation (values and first derivatives),
// sub-matrix extraction and scatter-add, per spec.md section 4.8 (C10). Host and
// device variants share this interface; only the tagged factory name
// differs.
type LocalWorkDriver interface {
	EvalCollocation(ctx context.Context, basis *BasisSet, task *XCTask) error
	EvalCollocationDeriv1(ctx context.Context, basis *BasisSet, task *XCTask) error
	Extract(ctx context.Context, m *SubmatMap, full []float64, ldFull int, sub []float64, ldSub int) error
	ScatterAdd(ctx context.Context, m *SubmatMap, sub []float64, ldSub int, full []float64, ldFull int) error
}

// referenceHostWorkDriver is the "REFERENCE" host LWD, the only host
// variant the factory recognizes, mirroring
// ReferenceLocalHostWorkDriver.
type referenceHostWorkDriver struct{}

func (referenceHostWorkDriver) EvalCollocation(ctx context.Context, basis *BasisSet, task *XCTask) error {
	return EvalCollocation(basis, task)
}

func (referenceHostWorkDriver) EvalCollocationDeriv1(ctx context.Context, basis *BasisSet, task *XCTask) error {
	return EvalCollocationDeriv1(basis, task)
}

func (referenceHostWorkDriver) Extract(ctx context.Context, m *SubmatMap, full []float64, ldFull int, sub []float64, ldSub int) error {
	m.Extract(full, ldFull, sub, ldSub)
	return nil
}

func (referenceHostWorkDriver) ScatterAdd(ctx context.Context, m *SubmatMap, sub []float64, ldSub int, full []float64, ldFull int) error {
	m.ScatterAdd(sub, ldSub, full, ldFull)
	return nil
}

// deviceStubWorkDriver stands in for the CUDA/HIP "scheme1"/"scheme1-magma"
// device LWD variants the original ties to GAUXC_ENABLE_DEVICE /
// GAUXC_ENABLE_MAGMA build flags. No device runtime is available in this
// module (spec.md Non-goals: no GPU kernel port), so every method returns
// UninitializedBackend rather than silently running on the host. This is
// a documented stub, not a fabricated device backend.
type deviceStubWorkDriver struct {
	name string
}

func (d deviceStubWorkDriver) EvalCollocation(ctx context.Context, basis *BasisSet, task *XCTask) error {
	return uninitializedBackend("deviceStubWorkDriver.EvalCollocation")
}

func (d deviceStubWorkDriver) EvalCollocationDeriv1(ctx context.Context, basis *BasisSet, task *XCTask) error {
	return uninitializedBackend("deviceStubWorkDriver.EvalCollocationDeriv1")
}

func (d deviceStubWorkDriver) Extract(ctx context.Context, m *SubmatMap, full []float64, ldFull int, sub []float64, ldSub int) error {
	return uninitializedBackend("deviceStubWorkDriver.Extract")
}

func (d deviceStubWorkDriver) ScatterAdd(ctx context.Context, m *SubmatMap, sub []float64, ldSub int, full []float64, ldFull int) error {
	return uninitializedBackend("deviceStubWorkDriver.ScatterAdd")
}

// LocalWorkSettings carries driver-specific tuning knobs; the reference
// and stub drivers ignore it, matching the original factory's
// `(void)(settings)` for the host path.
type LocalWorkSettings struct{}

// MakeLocalWorkDriver is the LWD factory (C10), mirroring
// LocalWorkDriverFactory::make_local_work_driver's name-dispatch table:
// name is case-insensitive, "DEFAULT" resolves per execution space
// ("REFERENCE" on host, "SCHEME1" on device).
func MakeLocalWorkDriver(ex ExecutionSpace, name string, settings LocalWorkSettings) (LocalWorkDriver, error) {
	name = upperASCII(name)

	switch ex {
	case Host:
		if name == "DEFAULT" {
			name = "REFERENCE"
		}
		if name == "REFERENCE" {
			return referenceHostWorkDriver{}, nil
		}
		return nil, invalidInput("MakeLocalWorkDriver", "LWD not recognized: %s", name)

	case Device:
		if name == "DEFAULT" {
			name = "SCHEME1"
		}
		switch name {
		case "SCHEME1", "SCHEME1-MAGMA":
			return deviceStubWorkDriver{name: name}, nil
		default:
			return nil, invalidInput("MakeLocalWorkDriver", "LWD not recognized: %s", name)
		}

	default:
		return nil, invalidInput("MakeLocalWorkDriver", "execution space not recognized")
	}
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
