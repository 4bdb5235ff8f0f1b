package pgsql

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	"github.com/quantabook/ledgercore/internal/utils/pagination"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for the journal and its
// derived caches.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const lineColumns = `line_id, transaction_id, account_full_name, side, amount, currency_code, rate_used, occurred_at`

// SaveTransaction commits the transaction, its lines, the balance and turnover
// deltas, and the rate audit events as one database transaction. A unique
// violation on the idempotency key means a concurrent identical posting won
// the race; the committed winner is returned instead of an error.
func (r *PgxJournalRepository) SaveTransaction(
	ctx context.Context,
	txn domain.Transaction,
	balanceDeltas map[string]decimal.Decimal,
	turnovers []domain.DailyTurnover,
	events []domain.ExchangeRateEvent,
) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	txnQuery := `
		INSERT INTO transactions (transaction_id, memo, occurred_at, meta, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, txnQuery,
		txn.TransactionID,
		txn.Memo,
		txn.OccurredAt,
		txn.Meta,
		txn.IdempotencyKey,
		txn.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && txn.IdempotencyKey != nil {
			// Lost the race. Roll back and return the committed winner.
			_ = r.Rollback(ctx, tx)
			return r.FindTransactionByIdempotencyKey(ctx, *txn.IdempotencyKey)
		}
		return nil, apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, line := range txn.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			line.TransactionID,
			line.AccountFullName,
			line.Side,
			line.Amount,
			line.CurrencyCode,
			line.RateUsed,
			line.OccurredAt,
		)
	}

	balanceQuery := `
		INSERT INTO account_balances (account_full_name, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_full_name) DO UPDATE SET
			balance = account_balances.balance + EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at;
	`
	// Upsert in account-name order so concurrent postings over overlapping
	// account sets take row locks in the same order.
	for _, accountName := range sortedAccountNames(balanceDeltas) {
		batch.Queue(balanceQuery, accountName, balanceDeltas[accountName], txn.CreatedAt)
	}

	turnoverQuery := `
		INSERT INTO daily_turnovers (account_full_name, day, debit_total, credit_total)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_full_name, day) DO UPDATE SET
			debit_total = daily_turnovers.debit_total + EXCLUDED.debit_total,
			credit_total = daily_turnovers.credit_total + EXCLUDED.credit_total;
	`
	for _, turnover := range turnovers {
		batch.Queue(turnoverQuery, turnover.AccountFullName, turnover.Day, turnover.DebitTotal, turnover.CreditTotal)
	}

	eventQuery := `
		INSERT INTO exchange_rate_events (event_id, currency_code, rate, observed_at, source)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, event := range events {
		batch.Queue(eventQuery, event.EventID, event.CurrencyCode, event.Rate, event.ObservedAt, event.Source)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to execute write batch for transaction "+txn.TransactionID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *PgxJournalRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, memo, occurred_at, meta, idempotency_key, created_at
		FROM transactions
		WHERE idempotency_key = $1;
	`
	return r.findTransaction(ctx, query, key)
}

func (r *PgxJournalRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, memo, occurred_at, meta, idempotency_key, created_at
		FROM transactions
		WHERE transaction_id = $1;
	`
	return r.findTransaction(ctx, query, transactionID)
}

func (r *PgxJournalRepository) findTransaction(ctx context.Context, query string, arg any) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction", err)
	}

	lines, err := r.findLinesByTransactionIDs(ctx, []string{txn.TransactionID})
	if err != nil {
		return nil, err
	}
	txn.Lines = lines[txn.TransactionID]
	return txn, nil
}

// ListTransactions pages the ledger of an account and its descendants, newest
// first, using a keyset cursor over (occurred_at, created_at).
func (r *PgxJournalRepository) ListTransactions(ctx context.Context, query portsrepo.LedgerQuery) ([]domain.Transaction, *string, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	// One extra row decides whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT DISTINCT t.transaction_id, t.memo, t.occurred_at, t.meta, t.idempotency_key, t.created_at
		FROM transactions t
		JOIN entry_lines l ON l.transaction_id = t.transaction_id
		WHERE (l.account_full_name = $1 OR l.account_full_name LIKE $1 || ':%')
		  AND t.occurred_at >= $2 AND t.occurred_at < $3
	`
	args := []any{query.AccountFullName, query.From, query.To}

	if len(query.MetaFilter) > 0 {
		args = append(args, query.MetaFilter)
		baseQuery += ` AND t.meta @> $` + strconv.Itoa(len(args))
	}

	if query.NextToken != nil && *query.NextToken != "" {
		lastOccurredAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*query.NextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", decodeErr.Error())
		}
		args = append(args, lastOccurredAt, lastCreatedAt)
		baseQuery += ` AND (t.occurred_at, t.created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	fullQuery := baseQuery + `
		ORDER BY t.occurred_at DESC, t.created_at DESC
		LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, fullQuery, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger for "+query.AccountFullName, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.OccurredAt, last.CreatedAt)
		nextToken = &token
	}

	if len(txns) > 0 {
		ids := make([]string, len(txns))
		for i := range txns {
			ids[i] = txns[i].TransactionID
		}
		linesByTxn, err := r.findLinesByTransactionIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for i := range txns {
			txns[i].Lines = linesByTxn[txns[i].TransactionID]
		}
	}

	return txns, nextToken, nil
}

func (r *PgxJournalRepository) ListLinesByAccount(ctx context.Context, accountFullName string, upTo time.Time) ([]domain.EntryLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM entry_lines
		WHERE account_full_name = $1 AND occurred_at <= $2
		ORDER BY occurred_at, line_id;
	`
	return r.queryLines(ctx, query, accountFullName, upTo)
}

func (r *PgxJournalRepository) ListLinesByAccountPrefix(ctx context.Context, accountFullName string, upTo time.Time) ([]domain.EntryLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM entry_lines
		WHERE (account_full_name = $1 OR account_full_name LIKE $1 || ':%') AND occurred_at <= $2
		ORDER BY occurred_at, line_id;
	`
	return r.queryLines(ctx, query, accountFullName, upTo)
}

func (r *PgxJournalRepository) queryLines(ctx context.Context, query string, args ...any) ([]domain.EntryLine, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entry lines", err)
	}
	defer rows.Close()

	lines := []domain.EntryLine{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry line row", err)
		}
		lines = append(lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry line rows", err)
	}
	return lines, nil
}

func (r *PgxJournalRepository) findLinesByTransactionIDs(ctx context.Context, transactionIDs []string) (map[string][]domain.EntryLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM entry_lines
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines by transaction ids", err)
	}
	defer rows.Close()

	linesByTxn := make(map[string][]domain.EntryLine, len(transactionIDs))
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry line row", err)
		}
		linesByTxn[line.TransactionID] = append(linesByTxn[line.TransactionID], *line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry line rows", err)
	}
	return linesByTxn, nil
}

func sortedAccountNames(balanceDeltas map[string]decimal.Decimal) []string {
	names := make([]string, 0, len(balanceDeltas))
	for name := range balanceDeltas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.Memo,
		&txn.OccurredAt,
		&txn.Meta,
		&txn.IdempotencyKey,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func scanLine(row pgx.Row) (*domain.EntryLine, error) {
	var line domain.EntryLine
	err := row.Scan(
		&line.LineID,
		&line.TransactionID,
		&line.AccountFullName,
		&line.Side,
		&line.Amount,
		&line.CurrencyCode,
		&line.RateUsed,
		&line.OccurredAt,
	)
	if err != nil {
		return nil, err
	}
	return &line, nil
}
