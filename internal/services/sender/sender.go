// Package sender emails the notices consumed from the notification queues.
package sender

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/lib/smtp"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// ErrMalformedMessage is returned for queue messages that can never be delivered.
var ErrMalformedMessage = errors.New("malformed message")

// Service sends notification emails.
type Service struct {
	transport smtp.TransportInterface
	siteURL   string
	log       *slog.Logger
}

// New returns a sender. siteURL is linked from the emails.
func New(transport smtp.TransportInterface, siteURL string, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		siteURL:   siteURL,
		log:       log,
	}
}

// SendPremiumExpiring emails the user named in body that their premium ends tomorrow.
func (s *Service) SendPremiumExpiring(body []byte) error {
	const op = "sender.SendPremiumExpiring"

	var notice models.PremiumNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedMessage, err)
	}
	if notice.Email == "" {
		return fmt.Errorf("%s: %w: missing email", op, ErrMalformedMessage)
	}

	subject := "Seu acesso Premium TipsGol termina amanhã"
	text := fmt.Sprintf("Olá, %s!\r\n\r\nSeu acesso Premium termina em %s.\r\n"+
		"Renove seu plano para continuar recebendo as tips exclusivas: %s/planos\r\n\r\nEquipe TipsGol",
		notice.Username, notice.ExpirationDate.Format("02/01/2006"), strings.TrimRight(s.siteURL, "/"))

	if err := s.sendEmail([]string{notice.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client close", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}

	s.log.Info("email sent", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
