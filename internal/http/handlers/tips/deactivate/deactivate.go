// Package deactivate lets admins hide a tip from the listings.
package deactivate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

// Service hides tips.
type Service interface {
	Deactivate(ctx context.Context, id int64) error
}

// Handler serves POST /admin/tips/{id}/deactivate.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the deactivate handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Hide a tip
// @Description The tip leaves the listings but still counts in the analytics.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tip id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/tips/{id}/deactivate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tips.deactivate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid tip id"))
		return
	}

	err = h.service.Deactivate(r.Context(), id)
	if errors.Is(err, storage.ErrTipNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("tip not found"))
		return
	}
	if err != nil {
		log.Error("failed to deactivate tip", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not deactivate tip"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id, "is_active": false}))
}
