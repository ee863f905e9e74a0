package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all flux-qubit routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fluxqubit", func(r chi.Router) {
		r.Post("/spectrum", h.HandleSpectrum)
		r.Post("/wavefunction", h.HandleWavefunction)
		r.Post("/potential", h.HandlePotential)
	})
}
