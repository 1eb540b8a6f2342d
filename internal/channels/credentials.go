package channels

// Field is one credential field checked by the configuration gate.
type Field struct {
	Name     string
	Value    string
	Required bool
}

// MissingFields returns the names of required fields with empty values, in order.
func MissingFields(fields []Field) []string {
	var missing []string
	for _, f := range fields {
		if f.Required && f.Value == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// MergeString returns update unless it is empty.
func MergeString(current, update string) string {
	if update == "" {
		return current
	}
	return update
}
