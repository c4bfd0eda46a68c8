package handler

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SimasDei/dev-bastion/internal/apperror"
)

// validationError converts the first validator violation into the
// application's ValidationFailed error so writeError maps it to 400 like
// every other validation failure.
func validationError(err error) error {
	if violations, ok := err.(validator.ValidationErrors); ok && len(violations) > 0 {
		v := violations[0]
		field := strings.ToLower(v.Field()[:1]) + v.Field()[1:]
		return apperror.ValidationFailed(field,
			fmt.Sprintf("field '%s' failed on the '%s' rule", field, v.Tag()))
	}
	return apperror.ValidationFailed("", "invalid request body")
}
