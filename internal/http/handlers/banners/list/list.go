// Package list serves the promotions carousel.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// Service lists banners.
type Service interface {
	Active(ctx context.Context) ([]models.Banner, error)
}

// Handler serves GET /banners.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the banners handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Active banners
// @Description Banners ordered by display order, newest first on ties.
// @Tags Banners
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /banners [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.banners.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	banners, err := h.service.Active(r.Context())
	if err != nil {
		log.Error("failed to list banners", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list banners"))
		return
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	render.JSON(w, r, response.StatusOKWithData(banners))
}
