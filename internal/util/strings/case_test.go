package strings

import "testing"

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"User", "user"},
		{"BlogPost", "blog_post"},
		{"HTTPRequest", "http_request"},
		{"userID", "user_id"},
		{"already_snake", "already_snake"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ToSnakeCase(tt.input); got != tt.expected {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user", "users"},
		{"company", "companies"},
		{"address", "addresses"},
		{"box", "boxes"},
		{"branch", "branches"},
		{"day", "days"},
		{"person", "people"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Pluralize(tt.input); got != tt.expected {
			t.Errorf("Pluralize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
