// Package insight asks the language model for a short pre-match note on a tip.
package insight

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
	insightsvc "github.com/tipsgolbr/tipsgol/internal/services/insight"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

// Service generates insights.
type Service interface {
	ForTip(ctx context.Context, id int64) (string, error)
}

// Handler serves POST /admin/tips/{id}/insight.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the insight handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Tip insight
// @Description Generates a one-paragraph analysis of the match of a tip.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tip id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /admin/tips/{id}/insight [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tips.insight"
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

	text, err := h.service.ForTip(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrTipNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("tip not found"))
		return
	case errors.Is(err, insightsvc.ErrDisabled):
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("insights are not configured"))
		return
	case err != nil:
		log.Error("failed to generate insight", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not generate insight"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{"tip_id": id, "insight": text}))
}
