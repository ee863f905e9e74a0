// Package fluxqubit models the three-junction persistent-current flux
// qubit of Orlando et al., Physical Review B 60, 15398 (1999), with both
// degrees of freedom expressed in the charge basis.
//
// The circuit has three Josephson junctions on a loop threaded by an
// external flux; junction 3 may differ from the other two (alpha
// asymmetry). The Hamiltonian is
//
//	H = 4 (n_i - n_gi) EC_ij (n_j - n_gj)
//	    - EJ1 cos φ1 - EJ2 cos φ2 - EJ3 cos(2πf + φ1 - φ2)
//
// built from number and phase-exponential operators in a charge basis
// truncated at ±ncut per mode.
package fluxqubit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/qubitkit/qubitkit/internal/events"
	"github.com/qubitkit/qubitkit/internal/modules/discretization"
	"github.com/qubitkit/qubitkit/internal/modules/spectrum"
)

// minWavefunctionStates is the smallest eigensystem computed when
// Wavefunction has to solve on demand.
const minWavefunctionStates = 3

// Params is the physical configuration of the circuit. Energies are in
// the caller's units and used exactly as entered; no unit conversion or
// range validation happens here (non-physical values are the caller's
// responsibility). Ng1, Ng2 and Flux are physically 1-periodic but not
// wrapped.
type Params struct {
	EJ1  float64 `json:"ej1"`  // Josephson energy, junction 1
	EJ2  float64 `json:"ej2"`  // Josephson energy, junction 2
	EJ3  float64 `json:"ej3"`  // Josephson energy, junction 3 (alpha junction)
	ECJ1 float64 `json:"ecj1"` // charging energy, junction 1
	ECJ2 float64 `json:"ecj2"` // charging energy, junction 2
	ECJ3 float64 `json:"ecj3"` // charging energy, junction 3
	ECg1 float64 `json:"ecg1"` // charging energy to ground, island 1
	ECg2 float64 `json:"ecg2"` // charging energy to ground, island 2
	Ng1  float64 `json:"ng1"`  // offset charge, island 1
	Ng2  float64 `json:"ng2"`  // offset charge, island 2
	Flux float64 `json:"flux"` // external flux in units of the flux quantum

	// Ncut is the charge cutoff: each mode keeps states -Ncut..+Ncut.
	Ncut int `json:"ncut"`

	// TruncatedDim optionally restricts the spectrum size handed to
	// downstream consumers; zero means no restriction.
	TruncatedDim int `json:"truncated_dim,omitempty"`
}

// FluxQubit computes operators, Hamiltonians and spectra for one parameter
// set. All computations are pure functions of the current parameters; the
// only state is the parameter set itself. Mutations publish
// events.QuantumSystemUpdated so external caches can invalidate.
type FluxQubit struct {
	params Params
	bus    *events.Bus
}

// DefaultParams returns the textbook parameter set: two identical
// junctions, an alpha junction at 0.8, strong ground capacitance, flux
// near the half-quantum sweet spot.
func DefaultParams() Params {
	return Params{
		EJ1:  1.0,
		EJ2:  1.0,
		EJ3:  0.8,
		ECJ1: 1.0 / 1.2,
		ECJ2: 1.0 / 1.2,
		ECJ3: 1.0 / (1.2 * 0.8),
		ECg1: 50.0,
		ECg2: 50.0,
		Flux: 0.4,
		Ncut: 10,
	}
}

// New creates a flux qubit model without change notification.
func New(params Params) *FluxQubit {
	return &FluxQubit{params: params}
}

// NewWithBus creates a flux qubit model that announces parameter mutations
// on the given event bus.
func NewWithBus(params Params, bus *events.Bus) *FluxQubit {
	return &FluxQubit{params: params, bus: bus}
}

// Params returns the current parameter set.
func (f *FluxQubit) Params() Params {
	return f.params
}

// SetParams replaces the whole parameter set.
func (f *FluxQubit) SetParams(params Params) {
	f.params = params
	f.notify("params")
}

// SetFlux updates the external flux. Flux is the natural sweep parameter,
// so it gets a dedicated mutator.
func (f *FluxQubit) SetFlux(flux float64) {
	f.params.Flux = flux
	f.notify("flux")
}

// SetNg updates both offset charges.
func (f *FluxQubit) SetNg(ng1, ng2 float64) {
	f.params.Ng1 = ng1
	f.params.Ng2 = ng2
	f.notify("ng")
}

// SetNcut updates the charge-basis cutoff.
func (f *FluxQubit) SetNcut(ncut int) {
	f.params.Ncut = ncut
	f.notify("ncut")
}

func (f *FluxQubit) notify(field string) {
	f.bus.Publish(&events.QuantumSystemUpdatedData{System: "flux_qubit", Field: field})
}

// SnapshotKey returns a content hash of the current parameter set, used by
// external caches to key computed spectra.
func (f *FluxQubit) SnapshotKey() string {
	p := f.params
	data := fmt.Sprintf("%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%d|%d",
		p.EJ1, p.EJ2, p.EJ3, p.ECJ1, p.ECJ2, p.ECJ3, p.ECg1, p.ECg2,
		p.Ng1, p.Ng2, p.Flux, p.Ncut, p.TruncatedDim)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16])
}

// Hilbertdim returns the dimension of the composite Hilbert space,
// (2·ncut+1)².
func (f *FluxQubit) Hilbertdim() int {
	dim := 2*f.params.Ncut + 1
	return dim * dim
}

// ECMatrix returns the effective 2×2 charging-energy matrix: the
// capacitance matrix is assembled from C = 1/(2·EC) per element with the
// shared junction 3 on the off-diagonal, then inverted and halved.
func (f *FluxQubit) ECMatrix() (*mat.Dense, error) {
	cj1 := 1 / (2 * f.params.ECJ1) // capacitances in units where e = 1
	cj2 := 1 / (2 * f.params.ECJ2)
	cj3 := 1 / (2 * f.params.ECJ3)
	cg1 := 1 / (2 * f.params.ECg1)
	cg2 := 1 / (2 * f.params.ECg2)

	cmat := mat.NewDense(2, 2, []float64{
		cj1 + cj3 + cg1, -cj3,
		-cj3, cj2 + cj3 + cg2,
	})

	var inv mat.Dense
	if err := inv.Inverse(cmat); err != nil {
		return nil, fmt.Errorf("capacitance matrix is singular: %w", err)
	}
	inv.Scale(0.5, &inv)
	return &inv, nil
}

// KineticMat returns the charging-energy part of the Hamiltonian:
// 4·EC00·(n1-ng1)² + 4·EC11·(n2-ng2)² + 4·(EC01+EC10)·(n1-ng1)(n2-ng2).
func (f *FluxQubit) KineticMat() (*mat.CDense, error) {
	ecMat, err := f.ECMatrix()
	if err != nil {
		return nil, err
	}

	ncut := f.params.Ncut
	num := numberOperator(ncut)
	id := identityOperator(ncut)

	offset1 := sub(num, scaled(complex(f.params.Ng1, 0), id))
	offset2 := sub(num, scaled(complex(f.params.Ng2, 0), id))
	sq1 := mul(offset1, offset1)
	sq2 := mul(offset2, offset2)

	kinetic := scaled(complex(4*ecMat.At(0, 0), 0), kron(sq1, id))
	kinetic = add(kinetic, scaled(complex(4*ecMat.At(1, 1), 0), kron(id, sq2)))
	kinetic = add(kinetic, scaled(complex(4*(ecMat.At(0, 1)+ecMat.At(1, 0)), 0), kron(offset1, offset2)))
	return kinetic, nil
}

// PotentialMat returns the Josephson part of the Hamiltonian. E is the
// single-mode phase-raising operator; the EJ3 cross term couples the two
// modes through the external flux phase factor e^{±i2πf}.
func (f *FluxQubit) PotentialMat() *mat.CDense {
	ncut := f.params.Ncut
	raise := phaseRaisingOperator(ncut)
	id := identityOperator(ncut)

	// cos φ per mode enters as E + Eᵀ; the 1/2 sits in the EJ prefactor.
	cosine := add(raise, raise.T())

	fluxPhase := cmplx.Exp(complex(0, 2*math.Pi*f.params.Flux))

	potential := scaled(complex(-0.5*f.params.EJ1, 0), kron(cosine, id))
	potential = add(potential, scaled(complex(-0.5*f.params.EJ2, 0), kron(id, cosine)))
	potential = add(potential, scaled(complex(-0.5*f.params.EJ3, 0)*fluxPhase, kron(raise, raise.T())))
	potential = add(potential, scaled(complex(-0.5*f.params.EJ3, 0)*cmplx.Conj(fluxPhase), kron(raise.T(), raise)))
	return potential
}

// Hamiltonian returns the full Hamiltonian in the composite charge basis.
// Pure function of the current parameters; callers own any caching.
func (f *FluxQubit) Hamiltonian() (*mat.CDense, error) {
	kinetic, err := f.KineticMat()
	if err != nil {
		return nil, err
	}
	return add(kinetic, f.PotentialMat()), nil
}

// N1Operator returns the charge-number operator conjugate to φ1.
func (f *FluxQubit) N1Operator() *mat.CDense {
	return kron(numberOperator(f.params.Ncut), identityOperator(f.params.Ncut))
}

// N2Operator returns the charge-number operator conjugate to φ2.
func (f *FluxQubit) N2Operator() *mat.CDense {
	return kron(identityOperator(f.params.Ncut), numberOperator(f.params.Ncut))
}

// ExpIPhi1Operator returns e^{iφ1} in the composite charge basis.
func (f *FluxQubit) ExpIPhi1Operator() *mat.CDense {
	return kron(phaseRaisingOperator(f.params.Ncut), identityOperator(f.params.Ncut))
}

// ExpIPhi2Operator returns e^{iφ2} in the composite charge basis.
func (f *FluxQubit) ExpIPhi2Operator() *mat.CDense {
	return kron(identityOperator(f.params.Ncut), phaseRaisingOperator(f.params.Ncut))
}

// CosPhi1Operator returns cos φ1 in the composite charge basis.
func (f *FluxQubit) CosPhi1Operator() *mat.CDense {
	half := scaled(0.5, f.ExpIPhi1Operator())
	return add(half, half.T())
}

// CosPhi2Operator returns cos φ2 in the composite charge basis.
func (f *FluxQubit) CosPhi2Operator() *mat.CDense {
	half := scaled(0.5, f.ExpIPhi2Operator())
	return add(half, half.T())
}

// SinPhi1Operator returns sin φ1 in the composite charge basis.
func (f *FluxQubit) SinPhi1Operator() *mat.CDense {
	half := scaled(-0.5i, f.ExpIPhi1Operator())
	return add(half, half.H())
}

// SinPhi2Operator returns sin φ2 in the composite charge basis.
func (f *FluxQubit) SinPhi2Operator() *mat.CDense {
	half := scaled(-0.5i, f.ExpIPhi2Operator())
	return add(half, half.H())
}

// Eigenvalues returns the lowest count eigenvalues of the Hamiltonian in
// ascending order.
func (f *FluxQubit) Eigenvalues(count int) ([]float64, error) {
	h, err := f.Hamiltonian()
	if err != nil {
		return nil, err
	}
	return spectrum.Eigenvalues(h, count)
}

// Eigensys returns the lowest count eigenvalues and eigenvectors of the
// Hamiltonian with the canonical ordering and phase convention applied.
func (f *FluxQubit) Eigensys(count int) (*spectrum.Eigensystem, error) {
	h, err := f.Hamiltonian()
	if err != nil {
		return nil, err
	}
	return spectrum.Eigensys(h, count)
}

// Potential evaluates the classical potential energy at (phi1, phi2),
// disregarding constants:
// -EJ1·cos φ1 - EJ2·cos φ2 - EJ3·cos(2πf + φ1 - φ2).
func (f *FluxQubit) Potential(phi1, phi2 float64) float64 {
	return -f.params.EJ1*math.Cos(phi1) -
		f.params.EJ2*math.Cos(phi2) -
		f.params.EJ3*math.Cos(2*math.Pi*f.params.Flux+phi1-phi2)
}

// Wavefunction projects the eigenvector of rank which (0-indexed, ascending
// energy) onto a real-space (phi1, phi2) grid. When esys is nil an
// eigensystem of max(which+1, 3) states is computed on demand; a supplied
// eigensystem must already contain the requested state. The returned
// amplitudes carry the standardized global phase.
func (f *FluxQubit) Wavefunction(esys *spectrum.Eigensystem, which int, grid discretization.Grid1d) (*discretization.WaveFunctionOnGrid, error) {
	if which < 0 {
		return nil, fmt.Errorf("wavefunction index %d: %w", which, spectrum.ErrInvalidCount)
	}
	if esys == nil {
		count := which + 1
		if count < minWavefunctionStates {
			count = minWavefunctionStates
		}
		computed, err := f.Eigensys(count)
		if err != nil {
			return nil, err
		}
		esys = computed
	}
	if which >= len(esys.Values) {
		return nil, fmt.Errorf("wavefunction index %d exceeds eigensystem size %d: %w",
			which, len(esys.Values), spectrum.ErrInvalidCount)
	}

	ncut := f.params.Ncut
	dim := 2*ncut + 1
	rows, _ := esys.Vectors.Dims()
	if rows != dim*dim {
		return nil, fmt.Errorf("eigenvector length %d does not match hilbert dimension %d: %w",
			rows, dim*dim, spectrum.ErrDimensionMismatch)
	}

	// Reshape the eigenvector into charge-basis amplitudes: mode 1 is the
	// slow (row) index, matching the kron convention.
	state := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			state.Set(i, j, esys.Vectors.At(i*dim+j, which))
		}
	}

	// Discrete transform from charge to phase basis:
	// a[p][q] = exp(i·φ_p·n_q) / sqrt(2π).
	phi := grid.Linspace()
	norm := complex(1/math.Sqrt(2*math.Pi), 0)
	transform := mat.NewCDense(grid.PtCount, dim, nil)
	for p, phiVal := range phi {
		for q := 0; q < dim; q++ {
			n := float64(q - ncut)
			transform.Set(p, q, norm*cmplx.Exp(complex(0, n*phiVal)))
		}
	}

	// ψ = a · state · aᵀ, mode 1 first, then mode 2.
	amplitudes := mul(mul(transform, state), transform.T())

	spectrum.StandardizePhases(amplitudes)

	return &discretization.WaveFunctionOnGrid{
		Grid:       discretization.NewGridSpec2d(grid),
		Amplitudes: amplitudes,
	}, nil
}
