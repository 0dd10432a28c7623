package profile

import (
	"context"
	"database/sql"
	"fmt"
	"rovify-backend/database"
	"rovify-backend/model"
	"rovify-backend/response"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	walletColumns      = `id, user_id, transaction_type, amount, currency, usd_value, status, description, reference_id, transaction_hash, created_at`
	defaultWalletLimit = 20
)

var walletTypes = map[string]bool{
	"deposit":        true,
	"withdrawal":     true,
	"event_purchase": true,
}

// WalletFilter narrows the transaction list. Stats always cover every completed transaction.
type WalletFilter struct {
	Type   string
	Limit  int
	Offset int
}

func (p *Profile) Wallet(ctx context.Context, db *sql.DB, userID string, f WalletFilter) (*model.Wallet, error) {
	limit := limitOr(f.Limit, defaultWalletLimit)
	if f.Offset < 0 {
		f.Offset = 0
	}

	txs, total, err := walletTransactions(ctx, db, userID, f.Type, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}

	var deposits, withdrawals, spent float64
	err = db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'withdrawal'), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'event_purchase'), 0)
		FROM user_wallet_transactions
		WHERE user_id = $1 AND status = 'completed'`, userID).Scan(&deposits, &withdrawals, &spent)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}

	return &model.Wallet{
		Transactions: txs,
		Stats:        walletStats(deposits, withdrawals, spent),
		Total:        total,
		HasMore:      int64(f.Offset+len(txs)) < total,
	}, nil
}

// RecordTransaction stores a pending wallet transaction.
func (p *Profile) RecordTransaction(ctx context.Context, db *sql.DB, userID string, in *model.WalletInput) (*model.WalletTransaction, error) {
	in.TransactionType = strings.TrimSpace(in.TransactionType)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if !walletTypes[in.TransactionType] {
		return nil, response.BadRequest("Invalid transaction_type", fmt.Sprintf("recordTransaction: type %q", in.TransactionType))
	}
	if in.Amount <= 0 {
		return nil, response.BadRequest("Amount must be greater than zero", "recordTransaction: non-positive amount")
	}
	if in.Currency == "" {
		return nil, response.BadRequest("Currency is required", "recordTransaction: missing currency")
	}

	t := model.WalletTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		TransactionType: in.TransactionType,
		Amount:          in.Amount,
		Currency:        in.Currency,
		USDValue:        in.USDValue,
		Status:          "pending",
		Description:     in.Description,
		ReferenceID:     in.ReferenceID,
		TransactionHash: in.TransactionHash,
		CreatedAt:       time.Now().UTC(),
	}
	err := database.Insert(ctx, db, "user_wallet_transactions", strings.Split(walletColumns, ", "), []interface{}{
		t.ID, t.UserID, t.TransactionType, t.Amount, t.Currency, t.USDValue, t.Status, t.Description, t.ReferenceID, t.TransactionHash, t.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("recordTransaction: %w", err)
	}
	return &t, nil
}

func walletTransactions(ctx context.Context, db database.Querier, userID, kind string, limit, offset int) ([]model.WalletTransaction, int64, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if kind != "" {
		where += ` AND transaction_type = $2`
		args = append(args, kind)
	}

	total, err := database.Count(ctx, db, `SELECT COUNT(*) FROM user_wallet_transactions `+where, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM user_wallet_transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		walletColumns, where, len(args)+1, len(args)+2)
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.WalletTransaction{}
	for rows.Next() {
		var t model.WalletTransaction
		err := rows.Scan(&t.ID, &t.UserID, &t.TransactionType, &t.Amount, &t.Currency, &t.USDValue, &t.Status,
			&t.Description, &t.ReferenceID, &t.TransactionHash, &t.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func walletStats(deposits, withdrawals, spent float64) model.WalletStats {
	return model.WalletStats{
		Balance:          deposits - withdrawals - spent,
		TotalDeposits:    deposits,
		TotalWithdrawals: withdrawals,
		TotalSpent:       spent,
	}
}
