// Package strutil provides case conversion and SQL naming helpers
// used throughout the Ormer codebase.
package strutil

import (
	"sort"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// -----------------------------------------------------------------------------
// Case Conversion
// -----------------------------------------------------------------------------

// ToSnakeCase converts a string to snake_case.
// Examples: userName -> user_name, UserName -> user_name, HTTPServer -> http_server
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// ToPascalCase converts a string to PascalCase, keeping existing inner capitals.
// Examples: user_name -> UserName, user -> User, blogPost -> BlogPost
func ToPascalCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upperNext := true
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// IsPascalCase reports whether s starts with an uppercase letter and contains
// only letters, digits and underscores.
func IsPascalCase(s string) bool {
	for i, r := range s {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

// IsIdentifier reports whether s is a valid member name.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}

// -----------------------------------------------------------------------------
// SQL Naming
// -----------------------------------------------------------------------------

// TableName returns the default table name for a model.
// Examples: User -> users, BlogPost -> blog_posts, Category -> categories
func TableName(model string) string {
	return inflect.Pluralize(ToSnakeCase(model))
}

// JoinTableName returns the name of the join table for a many-to-many
// relation between two models. Model names are sorted so both sides agree.
// Example: JoinTableName("Tag", "Post") -> "_post_to_tag"
func JoinTableName(a, b string) string {
	pair := []string{ToSnakeCase(a), ToSnakeCase(b)}
	sort.Strings(pair)
	return "_" + pair[0] + "_to_" + pair[1]
}

// JoinColumn returns the join table column for one side of a many-to-many
// relation. Example: JoinColumn("Post", "id") -> "post_id"
func JoinColumn(model, primaryKey string) string {
	return inflect.Singularize(ToSnakeCase(model)) + "_" + ToSnakeCase(primaryKey)
}

// FKColumn returns the conventional foreign key member name pointing at a model.
// Example: FKColumn("User", "id") -> "userId"
func FKColumn(model, primaryKey string) string {
	return inflect.CamelizeDownFirst(model) + ToPascalCase(primaryKey)
}

// -----------------------------------------------------------------------------
// Formatting
// -----------------------------------------------------------------------------

// Indent indents each non-empty line of text with the given number of spaces.
func Indent(text string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// QuoteSQL quotes a SQL identifier with double quotes, escaping embedded quotes.
func QuoteSQL(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteMySQL quotes a MySQL identifier with backticks, escaping embedded backticks.
func QuoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
