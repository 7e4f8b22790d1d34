package pool

import (
	"fmt"

	"poolkeeper/internal/errs"
)

var errInvalid = errs.ErrValidation

var (
	ErrNameRequired     = fmt.Errorf("%w: name is required", errs.ErrValidation)
	ErrFrequencyTooLow  = fmt.Errorf("%w: frequency_days must be >= 1", errs.ErrValidation)
	ErrDuplicateName    = fmt.Errorf("%w: a task with this name already exists", errs.ErrValidation)
	ErrInvalidCadence   = fmt.Errorf("%w: cadence must be daily or weekly", errs.ErrValidation)
	ErrInvalidWeekday   = fmt.Errorf("%w: days_of_week entries must be between 0 (Sunday) and 6 (Saturday)", errs.ErrValidation)
	ErrWeeklyNeedsDays  = fmt.Errorf("%w: weekly alerts need at least one day", errs.ErrValidation)
	ErrInvalidPage      = fmt.Errorf("%w: page must be >= 1", errs.ErrValidation)
	ErrInvalidPageSize  = fmt.Errorf("%w: page_size must be between 1 and %d", errs.ErrValidation, MaxPageSize)
	ErrUnitRequired     = fmt.Errorf("%w: unit is required", errs.ErrValidation)
	ErrNegativeQuantity = fmt.Errorf("%w: quantities must not be negative", errs.ErrValidation)
	ErrSlugRequired     = fmt.Errorf("%w: slug is required", errs.ErrValidation)
	ErrDuplicateSlug    = fmt.Errorf("%w: reading type with this slug already exists", errs.ErrValidation)
	ErrUnknownSlug      = fmt.Errorf("%w: unknown reading type", errs.ErrValidation)
)
