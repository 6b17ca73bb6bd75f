// Package dashboard serves the performance analysis of the settled tips.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/settlement"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
)

// Service computes the dashboard.
type Service interface {
	Dashboard(ctx context.Context) (settlement.Result, error)
}

// Handler serves GET /analysis/dashboard.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the dashboard handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Performance dashboard
// @Description Per-method stake, net profit, yield and win/loss counts plus the monthly cumulative profit.
// @Tags Analysis
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /analysis/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.Dashboard(r.Context())
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build dashboard"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(result))
}
