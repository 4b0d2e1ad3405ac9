package service

import (
	"errors"

	"barriored/internal/moderation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPInvalid         = errors.New("otp invalid or expired")
	ErrOTPCooldown        = errors.New("otp requested too often")
	ErrSessionIssue       = errors.New("session issue failed")
)

// storeErr 领域错误原样返回，其余都当作上游故障
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, moderation.ErrNotFound),
		errors.Is(err, moderation.ErrConflict),
		errors.Is(err, moderation.ErrIllegalTransition),
		errors.Is(err, moderation.ErrForbidden),
		errors.Is(err, moderation.ErrUnauthenticated):
		return err
	}
	var verr *moderation.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return moderation.Upstream(op, err)
}

func fieldError(field, msg string) error {
	verr := moderation.NewValidationError()
	verr.Add(field, msg)
	return verr
}
