package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// IsUsername 是一个自定义的校验函数，用于验证用户名格式
func IsUsername(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}
