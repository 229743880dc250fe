package store

import (
	"strings"

	"github.com/lib/pq"
)

// QuoteIdent quotes a plain or schema-qualified identifier part by part.
func QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func QuoteIdents(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = QuoteIdent(name)
	}
	return quoted
}

func QuoteLiteral(value string) string {
	return pq.QuoteLiteral(value)
}
