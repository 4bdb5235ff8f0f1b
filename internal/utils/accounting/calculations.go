// Package accounting holds the pure ledger math shared by services and
// repositories: cache deltas, base-currency conversion and the double-entry
// check. Everything here is deterministic and side-effect free so the balance
// and turnover caches can always be rebuilt by replaying the line history.
package accounting

import (
	"fmt"
	"time"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/shopspring/decimal"
)

// SignedDelta is the balance-cache contribution of one line in the account's
// own currency: +amount for a debit, -amount for a credit. Deltas are plain
// additions, so applying them is commutative and the result never depends on
// commit order.
func SignedDelta(line domain.EntryLine) decimal.Decimal {
	if line.Side == domain.Debit {
		return line.Amount
	}
	return line.Amount.Neg()
}

// ApplyDelta folds one line into a running balance. Used both on the posting
// write path and when replaying history for a recompute.
func ApplyDelta(balance decimal.Decimal, line domain.EntryLine) decimal.Decimal {
	return balance.Add(SignedDelta(line))
}

// ConvertedToBase converts a line amount into base currency using the line's
// recorded rate, quantized to money precision. Base-currency lines carry an
// implicit rate of 1.
func ConvertedToBase(q quantize.Policy, line domain.EntryLine, baseCode string) decimal.Decimal {
	if line.CurrencyCode == baseCode {
		return q.Money(line.Amount)
	}
	return q.Money(line.Amount.Mul(line.RateUsed))
}

// DayUTC buckets a timestamp into its UTC day (midnight).
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateBalanced enforces the double-entry invariant: at least two lines,
// strictly positive amounts, and converted debits equal to converted credits
// after quantization. The unbalanced failure carries both totals.
func ValidateBalanced(q quantize.Policy, lines []domain.EntryLine, baseCode string) error {
	if baseCode == "" {
		return apperrors.NewDomainError(apperrors.CodeMissingBaseCurrency, "no base currency is configured")
	}
	if len(lines) < 2 {
		return apperrors.NewValidationError("lines", fmt.Sprintf("transaction requires at least 2 lines, got %d", len(lines)))
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i, line := range lines {
		if !line.Amount.IsPositive() {
			return apperrors.NewValidationError(
				fmt.Sprintf("lines[%d].amount", i),
				fmt.Sprintf("amount must be positive, got %s", line.Amount.String()),
			)
		}
		converted := ConvertedToBase(q, line, baseCode)
		switch line.Side {
		case domain.Debit:
			debits = debits.Add(converted)
		case domain.Credit:
			credits = credits.Add(converted)
		default:
			return apperrors.NewValidationError(
				fmt.Sprintf("lines[%d].side", i),
				fmt.Sprintf("side must be DEBIT or CREDIT, got %q", line.Side),
			)
		}
	}

	if !debits.Equal(credits) {
		return &apperrors.DomainError{
			Code:   apperrors.CodeUnbalancedLedger,
			Detail: fmt.Sprintf("converted debits %s != converted credits %s", debits.String(), credits.String()),
		}
	}
	return nil
}

// TurnoverKey groups lines by account and UTC day for turnover upserts.
type TurnoverKey struct {
	AccountFullName string
	Day             time.Time
}

// CacheDeltas aggregates one transaction's lines into per-account balance
// deltas and per-(account, day) turnover deltas, ready to be applied in the
// same atomic unit as the journal insert.
func CacheDeltas(lines []domain.EntryLine) (map[string]decimal.Decimal, map[TurnoverKey]domain.DailyTurnover) {
	balances := make(map[string]decimal.Decimal, len(lines))
	turnovers := make(map[TurnoverKey]domain.DailyTurnover, len(lines))

	for _, line := range lines {
		balances[line.AccountFullName] = balances[line.AccountFullName].Add(SignedDelta(line))

		key := TurnoverKey{AccountFullName: line.AccountFullName, Day: DayUTC(line.OccurredAt)}
		agg, ok := turnovers[key]
		if !ok {
			agg = domain.DailyTurnover{
				AccountFullName: key.AccountFullName,
				Day:             key.Day,
				DebitTotal:      decimal.Zero,
				CreditTotal:     decimal.Zero,
			}
		}
		if line.Side == domain.Debit {
			agg.DebitTotal = agg.DebitTotal.Add(line.Amount)
		} else {
			agg.CreditTotal = agg.CreditTotal.Add(line.Amount)
		}
		turnovers[key] = agg
	}
	return balances, turnovers
}
