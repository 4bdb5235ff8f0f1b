package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency and rate data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

const currencyColumns = `currency_code, name, symbol, is_base, rate_to_base, rate_observations, rate_updated_at, created_at`

// SaveCurrency inserts a currency. An existing code is left untouched so that
// re-registration never clobbers accumulated rate state.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (currency_code, name, symbol, is_base, rate_to_base, rate_observations, rate_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (currency_code) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		currency.Code,
		currency.Name,
		currency.Symbol,
		currency.IsBase,
		currency.RateToBase,
		currency.RateObservations,
		currency.RateUpdatedAt,
		currency.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save currency "+currency.Code, err)
	}
	return nil
}

func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_code = $1;`
	currency, err := scanCurrency(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find currency "+code, err)
	}
	return currency, nil
}

func (r *PgxCurrencyRepository) FindCurrenciesByCodes(ctx context.Context, codes []string) (map[string]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query currencies by codes", err)
	}
	defer rows.Close()

	currencies := make(map[string]domain.Currency, len(codes))
	for rows.Next() {
		currency, err := scanCurrency(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan currency row", err)
		}
		currencies[currency.Code] = *currency
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating currency rows", err)
	}
	return currencies, nil
}

func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies ORDER BY currency_code;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list currencies", err)
	}
	defer rows.Close()

	currencies := []domain.Currency{}
	for rows.Next() {
		currency, err := scanCurrency(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan currency row", err)
		}
		currencies = append(currencies, *currency)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating currency rows", err)
	}
	return currencies, nil
}

// FindBaseCurrency relies on the partial unique index keeping at most one row
// with is_base set.
func (r *PgxCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_base;`
	currency, err := scanCurrency(r.Pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find base currency", err)
	}
	return currency, nil
}

// ApplyRateUpdates writes the new rate state, appends the audit events and
// optionally promotes setBase, all in one database transaction. The prior base
// is unset in the same statement ordering, so no reader ever observes two
// bases or none where one existed.
func (r *PgxCurrencyRepository) ApplyRateUpdates(ctx context.Context, updates []portsrepo.RateUpdate, events []domain.ExchangeRateEvent, setBase *string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE currencies
		SET rate_to_base = $2, rate_observations = $3, rate_updated_at = $4
		WHERE currency_code = $1;
	`
	for _, update := range updates {
		tag, err := tx.Exec(ctx, updateQuery, update.Code, update.Rate, update.ObservationCount, update.UpdatedAt)
		if err != nil {
			return apperrors.NewAppError(500, "failed to update rate for "+update.Code, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("currency " + update.Code)
		}
	}

	if len(events) > 0 {
		batch := &pgx.Batch{}
		eventQuery := `
			INSERT INTO exchange_rate_events (event_id, currency_code, rate, observed_at, source)
			VALUES ($1, $2, $3, $4, $5);
		`
		for _, event := range events {
			batch.Queue(eventQuery, event.EventID, event.CurrencyCode, event.Rate, event.ObservedAt, event.Source)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(500, "failed to append rate audit events", err)
		}
	}

	if setBase != nil {
		if _, err := tx.Exec(ctx, `UPDATE currencies SET is_base = FALSE WHERE is_base;`); err != nil {
			return apperrors.NewAppError(500, "failed to unset prior base currency", err)
		}
		tag, err := tx.Exec(ctx, `UPDATE currencies SET is_base = TRUE WHERE currency_code = $1;`, *setBase)
		if err != nil {
			return apperrors.NewAppError(500, "failed to promote base currency "+*setBase, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("currency " + *setBase)
		}
	}

	return r.Commit(ctx, tx)
}

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var currency domain.Currency
	err := row.Scan(
		&currency.Code,
		&currency.Name,
		&currency.Symbol,
		&currency.IsBase,
		&currency.RateToBase,
		&currency.RateObservations,
		&currency.RateUpdatedAt,
		&currency.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &currency, nil
}
