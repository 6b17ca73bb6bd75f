// Package insight asks a generative model for a short pre-match note on a tip.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("insight generation is disabled")
	// ErrEmptyInsight is returned when the model answers with no text.
	ErrEmptyInsight = errors.New("model returned an empty insight")
)

const generateTimeout = 30 * time.Second

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator returns a generator for cfg, or ErrDisabled without an API key.
func NewGeminiGenerator(ctx context.Context, cfg config.Gemini) (*GeminiGenerator, error) {
	const op = "insight.NewGeminiGenerator"
	if cfg.GeminiAPIKey == "" {
		return nil, ErrDisabled
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &GeminiGenerator{client: client, model: cfg.GeminiModel}, nil
}

// Generate sends prompt as a single text turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "insight.Generate"
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.Text(), nil
}

// TipReader loads tips.
type TipReader interface {
	GetTip(ctx context.Context, id int64) (*models.Tip, error)
}

// Service builds insights for tips. A nil generator means the feature is off.
type Service struct {
	tips TipReader
	gen  Generator
	loc  *time.Location
	log  *slog.Logger
}

// New returns an insight service.
func New(tips TipReader, gen Generator, loc *time.Location, log *slog.Logger) *Service {
	return &Service{tips: tips, gen: gen, loc: loc, log: log}
}

// ForTip returns a one-paragraph note about the match of tip id.
func (s *Service) ForTip(ctx context.Context, id int64) (string, error) {
	const op = "insight.ForTip"
	if s.gen == nil {
		return "", fmt.Errorf("%s: %w", op, ErrDisabled)
	}

	tip, err := s.tips.GetTip(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, Prompt(*tip, s.loc))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyInsight)
	}
	s.log.Info("insight generated", slog.Int64("tip_id", id), slog.Int("chars", len(text)))
	return text, nil
}

// Prompt renders the question sent to the model for tip.
func Prompt(tip models.Tip, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Escreva um único parágrafo curto de análise pré-jogo para %s (%s), em %s.\n",
		tip.MatchTitle, tip.League, tip.MatchDate.In(loc).Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Mercado: %s, odd %s.\n", tip.Method.DisplayName(), tip.Odds.StringFixed(2))
	b.WriteString("Cite desfalques e a fase recente das equipes, sem prometer resultado.")
	return b.String()
}
