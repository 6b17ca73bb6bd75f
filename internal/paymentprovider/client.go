// Package paymentprovider talks to the PagSeguro notifications API.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/tipsgolbr/tipsgol/internal/config"
)

// ErrNotificationRejected is returned when PagSeguro does not accept the notification code.
var ErrNotificationRejected = errors.New("notification rejected by gateway")

const maxBody = 1 << 20

// Client fetches transactions referenced by gateway notifications.
type Client struct {
	email           string
	token           string
	notificationURL string
	httpClient      *http.Client
}

// NewClient returns a PagSeguro client for the seller account in cfg.
func NewClient(cfg config.PagSeguro) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		email:           cfg.SellerEmail,
		token:           cfg.Token,
		notificationURL: cfg.NotificationURL,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// GetTransaction resolves a notification code into the transaction it refers to.
func (c *Client) GetTransaction(ctx context.Context, notificationCode string) (*Transaction, error) {
	const op = "paymentprovider.GetTransaction"

	q := url.Values{}
	q.Set("email", c.email)
	q.Set("token", c.token)
	endpoint := strings.TrimRight(c.notificationURL, "/") + "/" + url.PathEscape(notificationCode) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/xml;charset=ISO-8859-1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrNotificationRejected, describeErrors(body, resp.Status))
	default:
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var tx Transaction
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&tx); err != nil {
		return nil, fmt.Errorf("%s: decode transaction: %w", op, err)
	}
	return &tx, nil
}

func describeErrors(body []byte, status string) string {
	var doc errorsDoc
	if err := xml.Unmarshal(body, &doc); err != nil || len(doc.Errors) == 0 {
		return status
	}
	msgs := make([]string, 0, len(doc.Errors))
	for _, e := range doc.Errors {
		msgs = append(msgs, e.Code+" "+e.Message)
	}
	return strings.Join(msgs, "; ")
}
