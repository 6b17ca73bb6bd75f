// Package settle lets admins record the outcome of a tip.
package settle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
	"github.com/tipsgolbr/tipsgol/internal/services/tips"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

// Service settles tips.
type Service interface {
	Settle(ctx context.Context, id int64, in models.Settlement) error
}

// Handler serves PUT /admin/tips/{id}/settle.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New returns the settle handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Settle a tip
// @Description WIN needs profit, LOSS needs loss, VOID needs neither.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tip id"
// @Param request body models.Settlement true "Outcome"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/tips/{id}/settle [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tips.settle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Info("invalid tip id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid tip id"))
		return
	}

	var req models.Settlement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err = h.service.Settle(r.Context(), id, req)
	switch {
	case errors.Is(err, storage.ErrTipNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("tip not found"))
		return
	case errors.Is(err, tips.ErrInvalidSettlement), errors.Is(err, tips.ErrNegativeAmount):
		log.Info("settlement rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to settle tip", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not settle tip"))
		return
	}

	log.Info("tip settled", slog.Int64("id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id, "status": req.Status}))
}
