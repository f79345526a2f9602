package query

import "strings"

// Normalizer rewrites raw query text before execution. Normalization is a
// separate, swappable step so it can be tested independently and replaced if
// upstream generation behavior changes.
type Normalizer interface {
	Normalize(query string) string
}

// BackslashStripper removes backslash characters from the query text.
// LLM-generated SQL sometimes arrives with escaping artifacts such as
// `SELECT \* FROM employees`; stripping is lossy but matches what the
// orchestrating agent expects. Keep string literals with legitimate escapes
// out of generated queries.
type BackslashStripper struct{}

// Normalize removes every backslash from the query.
func (BackslashStripper) Normalize(query string) string {
	return strings.ReplaceAll(query, `\`, "")
}

// Chain applies normalizers in order.
type Chain []Normalizer

// Normalize runs each normalizer over the output of the previous one.
func (c Chain) Normalize(query string) string {
	for _, n := range c {
		query = n.Normalize(query)
	}
	return query
}

// TrimSpace removes leading and trailing whitespace.
type TrimSpace struct{}

// Normalize trims surrounding whitespace from the query.
func (TrimSpace) Normalize(query string) string {
	return strings.TrimSpace(query)
}

// DefaultNormalizer is the normalization applied by the query executor tool:
// trim surrounding whitespace, then strip backslashes.
func DefaultNormalizer() Normalizer {
	return Chain{TrimSpace{}, BackslashStripper{}}
}
