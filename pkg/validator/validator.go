package validator

import (
	"fmt"

	validate "github.com/go-playground/validator/v10"
)

// Validator validates structs tagged with `validate` rules.
type Validator struct {
	v *validate.Validate
}

func New() *Validator {
	return &Validator{v: validate.New(validate.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		if errs, ok := err.(validate.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field %s failed on rule %q", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}

// Var validates a single value against the given rules.
func (v *Validator) Var(value interface{}, rules string) error {
	return v.v.Var(value, rules)
}
