// Package premium lets admins confirm a payment by hand, granting a plan to a user.
package premium

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
	premiumsvc "github.com/tipsgolbr/tipsgol/internal/services/premium"
)

// Request names the plan being granted.
type Request struct {
	PlanID int `json:"plan_id" validate:"required,oneof=1 3 6"`
}

// Service confirms payments.
type Service interface {
	ConfirmPayment(ctx context.Context, username string, planDays int) (*models.User, error)
}

// Handler serves POST /admin/users/{username}/premium.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New returns the manual confirmation handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Grant premium
// @Description Extends the user's premium by the plan days, as a confirmed payment would.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body Request true "Plan"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{username}/premium [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.premium"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	plan, _ := models.PlanByID(req.PlanID)

	user, err := h.service.ConfirmPayment(r.Context(), username, plan.Days)
	if errors.Is(err, premiumsvc.ErrUserNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to confirm payment", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm payment"))
		return
	}

	log.Info("premium granted", slog.String("username", username), slog.Int("days", plan.Days))
	render.JSON(w, r, response.StatusOKWithData(user))
}
