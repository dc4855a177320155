package repository

import (
	"gorm.io/gorm"

	pkgErrors "agile-pm/pkg/errors"
)

// translateNotFound 将gorm的未找到错误翻译为业务错误
func translateNotFound(err error, message string) error {
	if err == gorm.ErrRecordNotFound {
		return pkgErrors.ErrRecordNotFound
	}
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, message, err)
}
