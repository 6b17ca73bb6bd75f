// Package list serves the public list of free tips.
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

// Service lists free tips.
type Service interface {
	ListFree(ctx context.Context) ([]models.Tip, error)
}

// Handler serves GET /tips.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the free tips handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Free tips
// @Description Lists the visible free tips, newest match first.
// @Tags Tips
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /tips [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tips.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tips, err := h.service.ListFree(r.Context())
	if err != nil {
		log.Error("failed to list tips", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tips"))
		return
	}
	if tips == nil {
		tips = []models.Tip{}
	}
	render.JSON(w, r, response.StatusOKWithData(tips))
}
