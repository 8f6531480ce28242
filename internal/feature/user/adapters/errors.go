package adapters

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"

	"evolve_backend/internal/feature/user/domain"
)

// translateError maps driver errors onto the domain taxonomy.
// Domain errors pass through unchanged; anything unrecognised is returned as is.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrUpstreamUnavailable):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	case IsUnavailable(err):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return err
}

// IsUnavailable reports whether err means the backing service could not be reached in time.
func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
