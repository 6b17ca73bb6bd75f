// Package me returns the profile of the authenticated user.
package me

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
	"github.com/tipsgolbr/tipsgol/internal/services/premium"
)

// Service loads the user with an up to date premium flag.
type Service interface {
	RefreshAccess(ctx context.Context, username string) (*models.User, error)
}

// Handler serves GET /me.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the profile handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Current user
// @Description Returns the profile with the premium state recomputed for today.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"
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

	user, err := h.service.RefreshAccess(r.Context(), username)
	if errors.Is(err, premium.ErrUserNotFound) {
		log.Info("user not found", slog.String("username", username))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load user"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(user))
}
