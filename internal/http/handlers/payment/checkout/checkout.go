// Package checkout returns the gateway checkout link of a plan for the caller.
package checkout

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/middlewarectx"
	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/services/payment"
)

// Service builds checkout links.
type Service interface {
	CheckoutURL(username string, planID int) (string, error)
}

// Handler serves GET /checkout/{planID}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the checkout handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Checkout link
// @Description Returns the gateway checkout URL for the plan, tagged with the caller's reference.
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param planID path int true "Plan id (1, 3 or 6)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /checkout/{planID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := middlewarectx.Username(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	planID, err := strconv.Atoi(chi.URLParam(r, "planID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	link, err := h.service.CheckoutURL(username, planID)
	if errors.Is(err, payment.ErrUnknownPlan) {
		log.Info("unknown plan", slog.Int("plan_id", planID), sl.Err(err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to build checkout url", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build checkout url"))
		return
	}

	log.Info("checkout started", slog.String("username", username), slog.Int("plan_id", planID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"checkout_url": link}))
}
