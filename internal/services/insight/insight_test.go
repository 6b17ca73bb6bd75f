package insight_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/models"
	"github.com/tipsgolbr/tipsgol/internal/services/insight"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

type TipReaderMock struct {
	mock.Mock
}

func (m *TipReaderMock) GetTip(ctx context.Context, id int64) (*models.Tip, error) {
	args := m.Called(ctx, id)
	tip, _ := args.Get(0).(*models.Tip)
	return tip, args.Error(1)
}

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var sampleTip = models.Tip{
	ID:         5,
	MatchTitle: "Flamengo x Palmeiras",
	League:     "Brasileirão",
	MatchDate:  time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
	Method:     models.MethodLay0x1,
	Odds:       decimal.RequireFromString("1.8"),
}

func TestPrompt(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	p := insight.Prompt(sampleTip, loc)

	assert.Contains(t, p, "Flamengo x Palmeiras (Brasileirão), em 01/06/2025 16:00")
	assert.Contains(t, p, "Mercado: LAY 0x1, odd 1.80")
}

func TestService_ForTip(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(r *TipReaderMock, g *GeneratorMock)
		want    string
		wantErr error
	}{
		{
			name: "generated",
			setup: func(r *TipReaderMock, g *GeneratorMock) {
				r.On("GetTip", mock.Anything, int64(5)).Return(&sampleTip, nil).Once()
				g.On("Generate", mock.Anything, insight.Prompt(sampleTip, time.UTC)).Return("  Jogo equilibrado.\n", nil).Once()
			},
			want: "Jogo equilibrado.",
		},
		{
			name: "unknown tip",
			setup: func(r *TipReaderMock, _ *GeneratorMock) {
				r.On("GetTip", mock.Anything, int64(5)).Return(nil, storage.ErrTipNotFound).Once()
			},
			wantErr: storage.ErrTipNotFound,
		},
		{
			name: "empty answer",
			setup: func(r *TipReaderMock, g *GeneratorMock) {
				r.On("GetTip", mock.Anything, int64(5)).Return(&sampleTip, nil).Once()
				g.On("Generate", mock.Anything, mock.Anything).Return(" ", nil).Once()
			},
			wantErr: insight.ErrEmptyInsight,
		},
		{
			name: "api error",
			setup: func(r *TipReaderMock, g *GeneratorMock) {
				r.On("GetTip", mock.Anything, int64(5)).Return(&sampleTip, nil).Once()
				g.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(TipReaderMock)
			g := new(GeneratorMock)
			tt.setup(r, g)
			svc := insight.New(r, g, time.UTC, newNoopLogger())

			got, err := svc.ForTip(context.Background(), 5)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.want == "":
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			r.AssertExpectations(t)
			g.AssertExpectations(t)
		})
	}
}

func TestService_Disabled(t *testing.T) {
	_, err := insight.NewGeminiGenerator(context.Background(), config.Gemini{})
	assert.ErrorIs(t, err, insight.ErrDisabled)

	_, err = insight.New(new(TipReaderMock), nil, time.UTC, newNoopLogger()).ForTip(context.Background(), 1)
	assert.ErrorIs(t, err, insight.ErrDisabled)
}
