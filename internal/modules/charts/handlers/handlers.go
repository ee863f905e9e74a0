// Package handlers provides HTTP handlers serving rendered charts.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/qubitkit/qubitkit/internal/modules/charts"
	"github.com/qubitkit/qubitkit/internal/modules/discretization"
	"github.com/qubitkit/qubitkit/internal/modules/fluxqubit"
)

// Handler handles chart HTTP requests. Parameters come in as query
// overrides on top of the default parameter set, so charts are linkable
// from a browser.
type Handler struct {
	service *charts.Service
	log     zerolog.Logger
}

// NewHandler creates a new charts handler.
func NewHandler(service *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// HandlePotentialPNG handles GET /api/charts/potential.png
func (h *Handler) HandlePotentialPNG(w http.ResponseWriter, r *http.Request) {
	qubit := fluxqubit.New(paramsFromQuery(r))
	grid := gridFromQuery(r)

	png, err := h.service.PotentialContour(qubit, grid)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render potential contour")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	h.writePNG(w, png)
}

// HandleWavefunctionPNG handles GET /api/charts/wavefunction.png
func (h *Handler) HandleWavefunctionPNG(w http.ResponseWriter, r *http.Request) {
	qubit := fluxqubit.New(paramsFromQuery(r))
	grid := gridFromQuery(r)
	which := queryInt(r, "which", 0)
	if which < 0 {
		http.Error(w, "which must be non-negative", http.StatusBadRequest)
		return
	}

	mode := charts.ModeDensity
	if r.URL.Query().Get("mode") == string(charts.ModeMagnitude) {
		mode = charts.ModeMagnitude
	}

	png, err := h.service.WavefunctionHeatMap(qubit, nil, which, grid, mode)
	if err != nil {
		h.log.Error().Err(err).Int("which", which).Msg("Failed to render wavefunction heat map")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	h.writePNG(w, png)
}

func (h *Handler) writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Error().Err(err).Msg("Failed to write PNG response")
	}
}

// paramsFromQuery overlays query values onto the default parameter set.
func paramsFromQuery(r *http.Request) fluxqubit.Params {
	p := fluxqubit.DefaultParams()
	p.EJ1 = queryFloat(r, "ej1", p.EJ1)
	p.EJ2 = queryFloat(r, "ej2", p.EJ2)
	p.EJ3 = queryFloat(r, "ej3", p.EJ3)
	p.ECJ1 = queryFloat(r, "ecj1", p.ECJ1)
	p.ECJ2 = queryFloat(r, "ecj2", p.ECJ2)
	p.ECJ3 = queryFloat(r, "ecj3", p.ECJ3)
	p.ECg1 = queryFloat(r, "ecg1", p.ECg1)
	p.ECg2 = queryFloat(r, "ecg2", p.ECg2)
	p.Ng1 = queryFloat(r, "ng1", p.Ng1)
	p.Ng2 = queryFloat(r, "ng2", p.Ng2)
	p.Flux = queryFloat(r, "flux", p.Flux)
	p.Ncut = queryInt(r, "ncut", p.Ncut)
	return p
}

func gridFromQuery(r *http.Request) discretization.Grid1d {
	grid := discretization.DefaultPhiGrid()
	grid.MinVal = queryFloat(r, "grid_min", grid.MinVal)
	grid.MaxVal = queryFloat(r, "grid_max", grid.MaxVal)
	grid.PtCount = queryInt(r, "grid_points", grid.PtCount)
	return grid
}

func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
