package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quantabook/ledgercore/internal/apperrors"
)

// validate is shared; validator instances cache struct metadata and are
// safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct tag validation and maps failures onto the
// apperrors.ErrValidation kind with the first offending field attached.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return apperrors.NewValidationError(
			strings.ToLower(first.Namespace()),
			fmt.Sprintf("failed %q validation", first.Tag()),
		)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
}
