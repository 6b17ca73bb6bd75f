// Package premium serves the tips reserved to premium members.
//
// Access is decided from the user's expiration date at request time, so a
// member whose date has passed is refused even before the nightly sweep.
package premium

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/middlewarectx"
	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
	premiumsvc "github.com/tipsgolbr/tipsgol/internal/services/premium"
)

// AccessChecker returns the user with the premium flag recomputed.
type AccessChecker interface {
	RefreshAccess(ctx context.Context, username string) (*models.User, error)
}

// TipLister lists premium tips.
type TipLister interface {
	ListPremium(ctx context.Context) ([]models.Tip, error)
}

// Handler serves GET /tips/premium.
type Handler struct {
	log    *slog.Logger
	access AccessChecker
	tips   TipLister
}

// New returns the premium tips handler.
func New(log *slog.Logger, access AccessChecker, tips TipLister) *Handler {
	return &Handler{log: log, access: access, tips: tips}
}

// ServeHTTP godoc
// @Summary Premium tips
// @Description Lists the visible premium tips. Only members with a valid expiration date may call it.
// @Tags Tips
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /tips/premium [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tips.premium"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := middlewarectx.Username(r.Context())
	if !ok {
		log.Error("username not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.access.RefreshAccess(r.Context(), username)
	if errors.Is(err, premiumsvc.ErrUserNotFound) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	if err != nil {
		log.Error("failed to check access", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check access"))
		return
	}
	if !user.IsPremium {
		log.Info("premium access denied", slog.String("username", username))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("premium membership required"))
		return
	}

	tips, err := h.tips.ListPremium(r.Context())
	if err != nil {
		log.Error("failed to list premium tips", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tips"))
		return
	}
	if tips == nil {
		tips = []models.Tip{}
	}
	render.JSON(w, r, response.StatusOKWithData(tips))
}
