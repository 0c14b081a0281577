package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeArguments decodes function call arguments into out and validates it
// against its `validate` tags. Malformed JSON produced by the model is repaired
// before giving up.
func DecodeArguments(arguments string, out any) error {
	if arguments == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), out); err != nil {
		fixed, repairErr := jsonrepair.JSONRepair(arguments)
		if repairErr != nil {
			return fmt.Errorf("decode arguments: %w", err)
		}
		if err := json.Unmarshal([]byte(fixed), out); err != nil {
			return fmt.Errorf("decode repaired arguments: %w", err)
		}
	}
	if err := validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// out is not a struct, nothing to validate
			return nil
		}
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
