package users

type SortField string

const (
	SortByName      SortField = "name"
	SortByEmail     SortField = "email"
	SortByCreatedAt SortField = "created_at"
)

// ResolveSortField maps a requested sort key to the allow-list. Anything
// outside the allow-list, including the empty string, falls back to
// created_at instead of erroring.
func ResolveSortField(s string) SortField {
	switch SortField(s) {
	case SortByName, SortByEmail, SortByCreatedAt:
		return SortField(s)
	default:
		return SortByCreatedAt
	}
}
