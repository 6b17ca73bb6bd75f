package plans

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

type staticPlans []models.Plan

func (p staticPlans) Plans() []models.Plan { return p }

func TestPlansHandler(t *testing.T) {
	svc := staticPlans(models.Plans(map[int]string{1: "https://pag.ae/monthly"}))
	w := httptest.NewRecorder()

	New(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"name":"Plano Mensal"`)
	assert.Contains(t, body, `"checkout_url":"https://pag.ae/monthly"`)
	assert.Contains(t, body, `"price":"R$ 185,00"`)
}
