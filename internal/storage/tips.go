package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

const tipColumns = `id, match_title, league, match_date, method, odds, stake, profit_amount,
	loss_amount, final_result, bet_link, status, access_level, is_active`

func scanTip(row scanner) (models.Tip, error) {
	var t models.Tip
	var finalResult, betLink sql.NullString
	if err := row.Scan(&t.ID, &t.MatchTitle, &t.League, &t.MatchDate, &t.Method, &t.Odds,
		&t.Stake, &t.ProfitAmount, &t.LossAmount, &finalResult, &betLink, &t.Status,
		&t.AccessLevel, &t.IsActive); err != nil {
		return models.Tip{}, err
	}
	if finalResult.Valid {
		t.FinalResult = &finalResult.String
	}
	if betLink.Valid {
		t.BetLink = &betLink.String
	}
	return t, nil
}

func (s *Storage) queryTips(ctx context.Context, op, query string, args ...any) ([]models.Tip, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Tip{}
	for rows.Next() {
		t, err := scanTip(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateTip inserts a tip and returns its id.
func (s *Storage) CreateTip(ctx context.Context, tip models.Tip) (int64, error) {
	const op = "storage.CreateTip"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO tips (match_title, league, match_date, method, odds, stake,
			      bet_link, status, access_level, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		tip.MatchTitle, tip.League, tip.MatchDate, tip.Method, tip.Odds, tip.Stake,
		tip.BetLink, tip.Status, tip.AccessLevel, tip.IsActive).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetTip returns a tip by id, hidden or not.
func (s *Storage) GetTip(ctx context.Context, id int64) (*models.Tip, error) {
	const op = "storage.GetTip"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	t, err := scanTip(s.conn(ctx).QueryRowContext(ctx, `SELECT `+tipColumns+` FROM tips WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrTipNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// ListVisibleTips returns the newest visible tips of one access level.
func (s *Storage) ListVisibleTips(ctx context.Context, access models.AccessLevel, limit int) ([]models.Tip, error) {
	const op = "storage.ListVisibleTips"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + tipColumns + `
			  FROM tips
			  WHERE is_active = TRUE AND access_level = $1
			  ORDER BY match_date DESC, id DESC
			  LIMIT $2`
	return s.queryTips(ctx, op, query, access, limit)
}

// ListSettledTips returns every WIN or LOSS tip, hidden ones included.
func (s *Storage) ListSettledTips(ctx context.Context) ([]models.Tip, error) {
	const op = "storage.ListSettledTips"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + tipColumns + `
			  FROM tips
			  WHERE status IN ('WIN', 'LOSS')
			  ORDER BY match_date, id`
	return s.queryTips(ctx, op, query)
}

// SettleTip records the outcome of a tip.
func (s *Storage) SettleTip(ctx context.Context, id int64, status models.Status,
	profit, loss decimal.Decimal, finalResult *string) error {
	const op = "storage.SettleTip"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE tips
			  SET status = $1, profit_amount = $2, loss_amount = $3, final_result = $4
			  WHERE id = $5`
	res, err := s.conn(ctx).ExecContext(ctx, query, status, profit, loss, finalResult, id)
	return affectedOne(op, res, err, ErrTipNotFound)
}

// SetTipActive shows or hides a tip.
func (s *Storage) SetTipActive(ctx context.Context, id int64, active bool) error {
	const op = "storage.SetTipActive"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE tips SET is_active = $1 WHERE id = $2`, active, id)
	return affectedOne(op, res, err, ErrTipNotFound)
}

func affectedOne(op string, res sql.Result, err error, notFound error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
