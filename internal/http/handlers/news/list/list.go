// Package list serves the latest extracted news.
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

// Service lists news.
type Service interface {
	Latest(ctx context.Context) ([]models.News, error)
}

// Handler serves GET /news.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the news handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Latest news
// @Tags News
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /news [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.news.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	news, err := h.service.Latest(r.Context())
	if err != nil {
		log.Error("failed to list news", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list news"))
		return
	}
	if news == nil {
		news = []models.News{}
	}
	render.JSON(w, r, response.StatusOKWithData(news))
}
