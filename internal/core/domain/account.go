package domain

import (
	"strings"
	"time"
)

// AccountSeparator splits the segments of a hierarchical account name.
const AccountSeparator = ":"

// Account represents a financial account within the core domain. Accounts form
// a hierarchy through their ':'-separated full name (e.g. "Assets:Cash");
// parent accounts aggregate their children by name prefix, no tree table needed.
type Account struct {
	FullName     string    `json:"fullName"` // Primary Key, materialized path
	CurrencyCode string    `json:"currencyCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChildPrefix returns the prefix matching all descendants of name, excluding
// name itself.
func ChildPrefix(name string) string {
	return name + AccountSeparator
}

// IsDescendant reports whether candidate sits under parent in the hierarchy.
func IsDescendant(parent, candidate string) bool {
	return strings.HasPrefix(candidate, ChildPrefix(parent))
}
