package service

import (
	"fmt"

	"go-doc-ledger/pkg/validator"
)

// validateInput runs struct tag validation and reports the first failure.
func validateInput(op string, input interface{}) error {
	errs := validator.ValidateStruct(input)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	msg := fmt.Sprintf("failed on tag '%s'", first.Tag)
	if first.Value != "" {
		msg = fmt.Sprintf("failed on tag '%s=%s'", first.Tag, first.Value)
	}
	return validationError(op, first.FailedField, msg)
}
