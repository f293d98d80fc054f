package strutil

import "testing"

// -----------------------------------------------------------------------------
// Case Conversion Tests
// -----------------------------------------------------------------------------

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"user", "user"},
		{"User", "user"},
		{"userName", "user_name"},
		{"BlogPost", "blog_post"},
		{"HTTPServer", "http_server"},
		{"userID", "user_id"},
		{"post2Tag", "post2_tag"},
		{"already_snake", "already_snake"},
		{"kebab-case", "kebab_case"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToSnakeCase(tt.input); got != tt.want {
				t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"user", "User"},
		{"user_name", "UserName"},
		{"blogPost", "BlogPost"},
		{"id", "Id"},
		{"kebab-case", "KebabCase"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToPascalCase(tt.input); got != tt.want {
				t.Errorf("ToPascalCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"User", true},
		{"BlogPost2", true},
		{"Blog_Post", true},
		{"user", false},
		{"", false},
		{"User-Name", false},
		{"_User", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsPascalCase(tt.input); got != tt.want {
				t.Errorf("IsPascalCase(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"id", true},
		{"userId", true},
		{"_private", true},
		{"field2", true},
		{"2field", false},
		{"", false},
		{"has space", false},
		{"dash-name", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsIdentifier(tt.input); got != tt.want {
				t.Errorf("IsIdentifier(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// SQL Naming Tests
// -----------------------------------------------------------------------------

func TestTableName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"User", "users"},
		{"BlogPost", "blog_posts"},
		{"Category", "categories"},
		{"Tag", "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := TableName(tt.model); got != tt.want {
				t.Errorf("TableName(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestJoinTableName(t *testing.T) {
	if got := JoinTableName("Tag", "Post"); got != "_post_to_tag" {
		t.Errorf("JoinTableName(Tag, Post) = %q", got)
	}
	if JoinTableName("Tag", "Post") != JoinTableName("Post", "Tag") {
		t.Error("JoinTableName should not depend on argument order")
	}
}

func TestJoinColumn(t *testing.T) {
	if got := JoinColumn("BlogPost", "id"); got != "blog_post_id" {
		t.Errorf("JoinColumn = %q, want blog_post_id", got)
	}
}

func TestFKColumn(t *testing.T) {
	if got := FKColumn("User", "id"); got != "userId" {
		t.Errorf("FKColumn = %q, want userId", got)
	}
}

// -----------------------------------------------------------------------------
// Formatting Tests
// -----------------------------------------------------------------------------

func TestIndent(t *testing.T) {
	got := Indent("a\n\nb", 2)
	if got != "  a\n\n  b" {
		t.Errorf("Indent = %q", got)
	}
}

func TestQuoting(t *testing.T) {
	if got := QuoteSQL(`we"ird`); got != `"we""ird"` {
		t.Errorf("QuoteSQL = %s", got)
	}
	if got := QuoteMySQL("we`ird"); got != "`we``ird`" {
		t.Errorf("QuoteMySQL = %s", got)
	}
}
