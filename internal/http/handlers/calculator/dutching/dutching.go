// Package dutching exposes the dutching calculator.
package dutching

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/settlement"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
)

// Request is the stake to split and the odds of each selection.
type Request struct {
	Total string   `json:"total" validate:"required,numeric"`
	Odds  []string `json:"odds" validate:"required,min=1,max=20,dive,required,numeric"`
}

// Handler serves POST /calculator/dutching.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New returns the calculator handler.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Dutching calculator
// @Description Splits a total stake across selections so each one returns the same amount.
// @Tags Calculator
// @Accept json
// @Produce json
// @Param request body Request true "Stake and odds"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /calculator/dutching [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.calculator.dutching"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil || !total.IsPositive() {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("total must be greater than 0"))
		return
	}
	odds := make([]decimal.Decimal, 0, len(req.Odds))
	for _, o := range req.Odds {
		d, err := decimal.NewFromString(o)
		if err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid odds"))
			return
		}
		odds = append(odds, d)
	}

	result, err := settlement.Dutch(total, odds...)
	if errors.Is(err, settlement.ErrInvalidOdds) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err != nil {
		log.Error("failed to split stake", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(result))
}
