package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"cardionote-be/internal/apperror"
)

var validate = validator.New()

// ValidateRequest checks struct tags on a request DTO and converts
// violations into a ValidationError for the error middleware.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", fe.Field(), fe.Tag()))
	}
	return apperror.NewValidationError("%s", strings.Join(msgs, "; "))
}
