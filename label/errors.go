package label

import "errors"

var (
	ErrInvalidLabelName    = errors.New("label: invalid label name")
	ErrDuplicateLabelName  = errors.New("label: duplicate label name")
	ErrDuplicateValue      = errors.New("label: duplicate value in fixed set")
	ErrTooManyDynamic      = errors.New("label: too many dynamic dimensions")
	ErrCardinalityOverflow = errors.New("label: cardinality overflows int")
	ErrIndexOutOfRange     = errors.New("label: index out of range")
	ErrNotDense            = errors.New("label: group set has no dense encoding")
)
