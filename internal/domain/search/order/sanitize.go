package order

// Sanitize resolves one user-supplied field/direction pair against the
// whitelist. Unknown fields fall back to the default field in ascending order;
// ordering requests are never fatal.
func Sanitize(field, direction string, fields Fields) Term {
	col, ok := fields.Lookup(field)
	if !ok {
		return Term{Column: fields.Default().Column, Direction: Asc}
	}
	return Term{Column: col, Direction: ParseDirection(direction)}
}

// Default returns the single-term spec used when no ordering is requested.
func Default(fields Fields) Spec {
	return Spec{{Column: fields.Default().Column, Direction: Asc}}
}
