package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	commentRegex = regexp.MustCompile(`(?m)^\s*--.*$`)
	stringRegex  = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"`)
)

// SplitStatements breaks a semicolon-separated script into single statements.
// Semicolons inside quoted literals or identifiers do not split.
func SplitStatements(sql string) []string {
	sql = commentRegex.ReplaceAllString(sql, "")
	if strings.TrimSpace(sql) == "" {
		return nil
	}

	quoted := make(map[int]bool)
	for _, match := range stringRegex.FindAllStringIndex(sql, -1) {
		for i := match[0]; i < match[1]; i++ {
			quoted[i] = true
		}
	}

	statements := make([]string, 0, strings.Count(sql, ";")+1)
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i, char := range sql {
		if char == ';' && !quoted[i] {
			flush()
			continue
		}
		current.WriteRune(char)
	}
	flush()

	return statements
}

// ExecScript runs every statement of script on conn, stopping at the first failure.
func ExecScript(ctx context.Context, conn Conn, script string) error {
	for _, stmt := range SplitStatements(script) {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrQueryFailed, stmt, err)
		}
	}
	return nil
}
