// Package extract lets admins run the RSS extraction on demand.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/services/news"
)

// Service extracts news.
type Service interface {
	Extract(ctx context.Context) (int, error)
}

// Handler serves POST /admin/news/extract.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the extraction handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Extract news
// @Description Reads the configured feeds and stores the new articles.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/news/extract [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.news.extract"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stored, err := h.service.Extract(r.Context())
	if errors.Is(err, news.ErrAllFeedsFailed) {
		log.Warn("no feed could be read", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("no feed could be read"))
		return
	}
	if err != nil {
		log.Error("failed to extract news", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not extract news"))
		return
	}

	log.Info("news extracted", slog.Int("stored", stored))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"stored": stored}))
}
