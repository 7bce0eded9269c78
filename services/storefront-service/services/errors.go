package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

// NotFound maps gorm's missing-record error to a NotFound with msg.
func NotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrNotFound, msg, nil)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, "", err)
}
