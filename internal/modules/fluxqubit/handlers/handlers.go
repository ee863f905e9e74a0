// Package handlers provides HTTP handlers for flux-qubit spectral
// computations.
package handlers

import (
	"encoding/json"
	"errors"
	"math/cmplx"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubitkit/qubitkit/internal/modules/calculations"
	"github.com/qubitkit/qubitkit/internal/modules/discretization"
	"github.com/qubitkit/qubitkit/internal/modules/fluxqubit"
	"github.com/qubitkit/qubitkit/internal/modules/spectrum"
)

// Handler handles flux-qubit HTTP requests. Requests carry the full
// parameter set, so each request builds its own model; results are shared
// across requests through the content-keyed spectrum cache.
type Handler struct {
	cache *calculations.Cache
	log   zerolog.Logger
}

// NewHandler creates a new flux-qubit handler.
func NewHandler(cache *calculations.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		cache: cache,
		log:   log.With().Str("handler", "fluxqubit").Logger(),
	}
}

// GridRequest selects a 1d phase grid, applied to both axes.
type GridRequest struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Points int     `json:"points"`
}

func (g *GridRequest) toGrid() discretization.Grid1d {
	if g == nil || g.Points == 0 {
		return discretization.DefaultPhiGrid()
	}
	return discretization.Grid1d{MinVal: g.Min, MaxVal: g.Max, PtCount: g.Points}
}

// SpectrumRequest asks for the lowest eigenvalues of a parameter set.
type SpectrumRequest struct {
	Params         fluxqubit.Params `json:"params"`
	Count          int              `json:"count"`
	IncludeVectors bool             `json:"include_vectors"`
}

// WavefunctionRequest asks for one eigenstate on a real-space grid.
type WavefunctionRequest struct {
	Params fluxqubit.Params `json:"params"`
	Which  int              `json:"which"`
	Grid   *GridRequest     `json:"grid,omitempty"`
}

// PotentialRequest asks for the classical potential on a grid.
type PotentialRequest struct {
	Params fluxqubit.Params `json:"params"`
	Grid   *GridRequest     `json:"grid,omitempty"`
}

// HandleSpectrum handles POST /api/fluxqubit/spectrum
func (h *Handler) HandleSpectrum(w http.ResponseWriter, r *http.Request) {
	var req SpectrumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 6
	}

	solver := h.solverFor(req.Params)
	data := map[string]interface{}{
		"hilbert_dim": fluxqubit.New(req.Params).Hilbertdim(),
	}

	if req.IncludeVectors {
		esys, err := solver.Eigensys(req.Count)
		if err != nil {
			h.writeSolverError(w, err, "Eigensystem computation failed")
			return
		}
		vecReal, vecImag := splitVectors(esys)
		data["values"] = esys.Values
		data["vectors"] = map[string]interface{}{
			"real": vecReal,
			"imag": vecImag,
		}
	} else {
		values, err := solver.Eigenvalues(req.Count)
		if err != nil {
			h.writeSolverError(w, err, "Eigenvalue computation failed")
			return
		}
		data["values"] = values
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"snapshot_key": solver.SnapshotKey(),
			"timestamp":    time.Now().Format(time.RFC3339),
		},
	})
}

// HandleWavefunction handles POST /api/fluxqubit/wavefunction
func (h *Handler) HandleWavefunction(w http.ResponseWriter, r *http.Request) {
	var req WavefunctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	qubit := fluxqubit.New(req.Params)
	grid := req.Grid.toGrid()
	wf, err := qubit.Wavefunction(nil, req.Which, grid)
	if err != nil {
		h.writeSolverError(w, err, "Wavefunction computation failed")
		return
	}

	density := make([][]float64, grid.PtCount)
	for i := 0; i < grid.PtCount; i++ {
		density[i] = make([]float64, grid.PtCount)
		for j := 0; j < grid.PtCount; j++ {
			a := cmplx.Abs(wf.Amplitudes.At(i, j))
			density[i][j] = a * a
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"which": req.Which,
			"grid": map[string]interface{}{
				"min":    grid.MinVal,
				"max":    grid.MaxVal,
				"points": grid.PtCount,
			},
			"density": density,
		},
		"metadata": map[string]interface{}{
			"snapshot_key": qubit.SnapshotKey(),
			"timestamp":    time.Now().Format(time.RFC3339),
		},
	})
}

// HandlePotential handles POST /api/fluxqubit/potential
func (h *Handler) HandlePotential(w http.ResponseWriter, r *http.Request) {
	var req PotentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	qubit := fluxqubit.New(req.Params)
	grid := req.Grid.toGrid()
	phi := grid.Linspace()

	values := make([][]float64, len(phi))
	for i, phi1 := range phi {
		values[i] = make([]float64, len(phi))
		for j, phi2 := range phi {
			values[i][j] = qubit.Potential(phi1, phi2)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"grid": map[string]interface{}{
				"min":    grid.MinVal,
				"max":    grid.MaxVal,
				"points": grid.PtCount,
			},
			"values": values,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) solverFor(params fluxqubit.Params) *calculations.CachingSolver {
	return calculations.NewCachingSolver(fluxqubit.New(params), h.cache, nil, h.log)
}

func splitVectors(esys *spectrum.Eigensystem) ([][]float64, [][]float64) {
	rows, cols := esys.Vectors.Dims()
	vecReal := make([][]float64, rows)
	vecImag := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		vecReal[i] = make([]float64, cols)
		vecImag[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			v := esys.Vectors.At(i, j)
			vecReal[i][j] = real(v)
			vecImag[i][j] = imag(v)
		}
	}
	return vecReal, vecImag
}

func (h *Handler) writeSolverError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, spectrum.ErrInvalidCount) || errors.Is(err, spectrum.ErrDimensionMismatch) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
