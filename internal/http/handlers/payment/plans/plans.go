// Package plans lists the premium plans and their checkout links.
package plans

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// Service lists plans.
type Service interface {
	Plans() []models.Plan
}

// Handler serves GET /plans.
type Handler struct {
	service Service
}

// New returns the plans handler.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Premium plans
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.Plans()))
}
