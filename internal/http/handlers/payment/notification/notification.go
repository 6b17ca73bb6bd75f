// Package notification receives the PagSeguro transaction notifications.
//
// The gateway posts a form with notificationCode and notificationType; the
// transaction itself is then fetched from the gateway, so the request carries
// no data that has to be trusted.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tipsgolbr/tipsgol/internal/http/response"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/paymentprovider"
	"github.com/tipsgolbr/tipsgol/internal/services/payment"
	"github.com/tipsgolbr/tipsgol/internal/services/premium"
)

// Service applies notifications.
type Service interface {
	HandleNotification(ctx context.Context, code, notificationType string) (payment.Outcome, error)
}

// Handler serves POST /payments/pagseguro/notification.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns the webhook handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary PagSeguro notification
// @Description Confirms or cancels the premium subscription named in the transaction reference.
// @Tags Payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param notificationCode formData string true "Notification code"
// @Param notificationType formData string true "Notification type" Enums(transaction)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /payments/pagseguro/notification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.notification"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Info("failed to parse form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form"))
		return
	}
	code := r.PostForm.Get("notificationCode")
	notificationType := r.PostForm.Get("notificationType")

	outcome, err := h.service.HandleNotification(r.Context(), code, notificationType)
	switch {
	case errors.Is(err, payment.ErrInvalidNotification), errors.Is(err, paymentprovider.ErrNotificationRejected):
		log.Warn("notification rejected", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid notification"))
		return
	case errors.Is(err, premium.ErrUserNotFound):
		log.Error("notification for unknown user", sl.Err(err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to process notification", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not process notification"))
		return
	}

	log.Info("notification processed", slog.String("outcome", string(outcome)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"outcome": outcome}))
}
