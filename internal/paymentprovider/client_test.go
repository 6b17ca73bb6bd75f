package paymentprovider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsgolbr/tipsgol/internal/config"
)

const transactionXML = `<?xml version="1.0" encoding="UTF-8"?>
<transaction>
  <date>2025-06-01T10:00:00.000-03:00</date>
  <code>9E884542-81B3-4419-9A75-BCC6FB495EF1</code>
  <reference>ana|3</reference>
  <type>1</type>
  <status>3</status>
  <grossAmount>120.00</grossAmount>
</transaction>`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.PagSeguro{
		SellerEmail:     "seller@tipsgol.com",
		Token:           "secret-token",
		NotificationURL: srv.URL + "/v3/transactions/notifications/",
	})
}

func TestClient_GetTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/transactions/notifications/ABC-123", r.URL.Path)
		assert.Equal(t, "seller@tipsgol.com", r.URL.Query().Get("email"))
		assert.Equal(t, "secret-token", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(transactionXML))
	})

	tx, err := c.GetTransaction(context.Background(), "ABC-123")

	require.NoError(t, err)
	assert.Equal(t, "9E884542-81B3-4419-9A75-BCC6FB495EF1", tx.Code)
	assert.Equal(t, "ana|3", tx.Reference)
	assert.Equal(t, StatusPaid, tx.Status)
	assert.True(t, tx.Confirmed())
	assert.False(t, tx.Cancelled())
}

func TestClient_GetTransaction_Latin1(t *testing.T) {
	// "Jo\xe3o" is "João" in ISO-8859-1.
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><transaction><code>C1</code>" +
		"<reference>Jo\xe3o</reference><status>7</status></transaction>"
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(doc))
	})

	tx, err := c.GetTransaction(context.Background(), "C1")

	require.NoError(t, err)
	assert.Equal(t, "João", tx.Reference)
	assert.True(t, tx.Cancelled())
}

func TestClient_GetTransaction_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantRejected bool
		wantMsg      string
	}{
		{
			name:         "unknown code",
			status:       http.StatusNotFound,
			body:         `<errors><error><code>13003</code><message>invalid notification code</message></error></errors>`,
			wantRejected: true,
			wantMsg:      "13003 invalid notification code",
		},
		{name: "gateway down", status: http.StatusBadGateway, wantMsg: "unexpected status"},
		{name: "garbage body", status: http.StatusOK, body: "not xml", wantMsg: "decode transaction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetTransaction(context.Background(), "X")

			require.Error(t, err)
			assert.Equal(t, tt.wantRejected, errorsIsRejected(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func errorsIsRejected(err error) bool {
	return errors.Is(err, ErrNotificationRejected)
}

func TestTransaction_Statuses(t *testing.T) {
	for status, want := range map[int][2]bool{
		StatusAwaitingPayment: {false, false},
		StatusPaid:            {true, false},
		StatusAvailable:       {true, false},
		StatusCancelled:       {false, true},
		StatusReturned:        {false, false},
	} {
		tx := Transaction{Status: status}
		assert.Equal(t, want[0], tx.Confirmed(), "status %d", status)
		assert.Equal(t, want[1], tx.Cancelled(), "status %d", status)
	}
}
