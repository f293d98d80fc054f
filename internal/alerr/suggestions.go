package alerr

import (
	"strings"
)

// directiveHints maps annotation tokens borrowed from other schema languages
// to the spelling this compiler understands.
var directiveHints = map[string]string{
	"@primary":        "use @id to mark the primary key",
	"@pk":             "use @id to mark the primary key",
	"@key":            "use @id to mark the primary key",
	"@autoincrement":  "use @default(@autoInc)",
	"@auto":           "use @default(@autoInc)",
	"@serial":         "use @default(@autoInc)",
	"@uuid":           "generators go inside a default: @default(@uuid)",
	"@now":            "generators go inside a default: @default(@now)",
	"@autoinc":        "generators go inside a default: @default(@autoInc)",
	"@optional":       "append ? to the type to make a member optional",
	"@nullable":       "append ? to the type to make a member optional",
	"@list":           "append [] to the type to make a member a list",
	"@rel":            "relations are declared with @relation(...)",
	"@ref":            "relations are declared with @relation(...)",
	"@references":     "relations are declared with @relation(fields:[...], references:[...])",
	"uuid()":          "use @default(@uuid)",
	"now()":           "use @default(@now)",
	"autoincrement()": "use @default(@autoInc)",
}

// generatorHints covers common misspellings of @default bodies.
var generatorHints = map[string]string{
	"uuid":            "@uuid",
	"uuid()":          "@uuid",
	"now":             "@now",
	"now()":           "@now",
	"autoinc":         "@autoInc",
	"autoincrement":   "@autoInc",
	"autoincrement()": "@autoInc",
	"@autoincrement":  "@autoInc",
	"auto":            "@autoInc",
	"cuid":            "@uuid",
	"@cuid":           "@uuid",
	"timestamp":       "@now",
	"@timestamp":      "@now",
}

// SuggestForToken returns a help line for a leftover annotation token,
// or "" when the token is not a known foreign spelling.
func SuggestForToken(token string) string {
	lower := strings.ToLower(strings.TrimSpace(token))

	if hint, ok := directiveHints[lower]; ok {
		return hint
	}

	// @primary(...) style calls
	if i := strings.IndexByte(lower, '('); i > 0 {
		if hint, ok := directiveHints[lower[:i]]; ok {
			return hint
		}
	}

	return ""
}

// SuggestGenerator returns the generator the user most likely meant
// for an unknown @default body.
func SuggestGenerator(body string) string {
	lower := strings.ToLower(strings.TrimSpace(body))
	if g, ok := generatorHints[lower]; ok {
		return "use @default(" + g + ")"
	}
	if g, ok := ClosestMatch(body, []string{"@autoInc", "@uuid", "@now"}); ok {
		return "use @default(" + g + ")"
	}
	return "available generators: @autoInc, @uuid, @now"
}
