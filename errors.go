package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/common/model"
)

var (
	ErrInvalidName        = errors.New("metrics: invalid metric name")
	ErrDuplicateFamily    = errors.New("metrics: family already registered")
	ErrFamilyTypeMismatch = errors.New("metrics: family registered with a different type")
	ErrUnknownLabelValue  = errors.New("metrics: label group cannot be encoded")
	ErrInvalidBuckets     = errors.New("metrics: invalid histogram buckets")
	ErrReservedLabel      = errors.New("metrics: reserved label name")
)

// ValidateName reports whether name can be used as a metric name or namespace.
func ValidateName(name string) error {
	if !model.IsValidLegacyMetricName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
