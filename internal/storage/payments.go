package storage

import (
	"context"
	"fmt"
)

// RecordTransaction marks a gateway transaction as applied. It reports false when
// the code was already recorded.
func (s *Storage) RecordTransaction(ctx context.Context, code, username string, planDays int) (bool, error) {
	const op = "storage.RecordTransaction"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `INSERT INTO payment_transactions (code, username, plan_days)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (code) DO NOTHING`
	res, err := s.conn(ctx).ExecContext(ctx, query, code, username, planDays)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}
