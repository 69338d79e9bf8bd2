package handlers

import (
	"net/http"

	"me-platform/internal/service"
)

// TaxonomyHandler serves the classification lookups
type TaxonomyHandler struct {
	taxonomy *service.TaxonomyService
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(taxonomy *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

// FocusAreas returns the focus areas visible to the caller
// @Summary Focus areas
// @Description OMA users see their organisation's focus areas; NPC and Admin see all
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FocusArea
// @Router /focus-areas [get]
func (h *TaxonomyHandler) FocusAreas(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	areas, err := h.taxonomy.FocusAreas(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, areas)
}

// Lookup returns one taxonomy level
// @Summary Lookup
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Param kind path string true "pillars, themes, focus-areas, programmes, strategies, organisations or roles"
// @Success 200 {array} object
// @Failure 404 {object} ErrorResponse "Unknown lookup"
// @Router /lookups/{kind} [get]
func (h *TaxonomyHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	items, err := h.taxonomy.Lookup(r.Context(), p, r.PathValue("kind"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, items)
}

// Taxonomy returns every level at once
// @Summary Full taxonomy
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Taxonomy
// @Router /taxonomy [get]
func (h *TaxonomyHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	t, err := h.taxonomy.Visible(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, t)
}
