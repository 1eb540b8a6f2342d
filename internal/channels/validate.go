package channels

// Validator checks a composed payload before it is sent. Implementations
// return a *SchemaError on violation and must not perform I/O.
type Validator interface {
	Validate(payload any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(payload any) error

func (f ValidatorFunc) Validate(payload any) error { return f(payload) }

// Check runs v against payload; a nil Validator accepts everything.
func Check(v Validator, payload any) error {
	if v == nil {
		return nil
	}
	return v.Validate(payload)
}
