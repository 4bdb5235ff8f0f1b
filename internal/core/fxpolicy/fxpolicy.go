// Package fxpolicy folds newly observed exchange rates into the stored
// rate-to-base. The per-currency smoothing state is an explicit value passed in
// and returned updated, never a hidden global, so replays are deterministic.
package fxpolicy

import (
	"fmt"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Mode selects how an observed rate replaces or blends with the stored one.
type Mode string

const (
	// LastWrite takes every observation at face value.
	LastWrite Mode = "last_write"
	// WeightedAverage blends the observation into the running mean, weighting
	// the stored rate by how many observations produced it.
	WeightedAverage Mode = "weighted_average"
)

// ParseMode validates a mode string coming from a caller.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case LastWrite, WeightedAverage:
		return Mode(s), nil
	default:
		return "", apperrors.NewValidationError("policy_mode", fmt.Sprintf("unknown rate policy mode %q", s))
	}
}

// State is the per-currency smoothing state threaded through each Apply call.
type State struct {
	PreviousRate     decimal.Decimal
	ObservationCount int64
}

// Apply folds one observed rate into the state under the given mode and
// returns the new stored rate together with the updated state.
//
// Weighted average recursion: with no usable previous rate the observation is
// taken verbatim with count 1; the first smoothing is the plain midpoint of
// the two rates; afterwards the stored rate is weighted by its observation
// count. Rates [1.0, 2.0] from empty state therefore yield 1.5, not a running
// mean over an unbounded history.
func Apply(mode Mode, state State, observed decimal.Decimal) (decimal.Decimal, State, error) {
	if !observed.IsPositive() {
		return decimal.Zero, state, apperrors.NewDomainError(
			apperrors.CodeInvalidRate,
			fmt.Sprintf("observed rate must be positive, got %s", observed.String()),
		)
	}

	switch mode {
	case LastWrite:
		return observed, State{PreviousRate: observed, ObservationCount: state.ObservationCount + 1}, nil

	case WeightedAverage:
		if !state.PreviousRate.IsPositive() {
			next := State{PreviousRate: observed, ObservationCount: 1}
			return observed, next, nil
		}
		var blended decimal.Decimal
		if state.ObservationCount == 1 {
			blended = state.PreviousRate.Add(observed).Div(decimal.NewFromInt(2))
		} else {
			count := decimal.NewFromInt(state.ObservationCount)
			blended = state.PreviousRate.Mul(count).Add(observed).Div(count.Add(decimal.NewFromInt(1)))
		}
		next := State{PreviousRate: blended, ObservationCount: state.ObservationCount + 1}
		return blended, next, nil

	default:
		return decimal.Zero, state, apperrors.NewValidationError("policy_mode", fmt.Sprintf("unknown rate policy mode %q", mode))
	}
}
