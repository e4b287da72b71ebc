package application

import (
	"strings"
	"testing"
)

func TestGenerateTitleFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"hyphenated", "my-beach-photo.jpg", "My Beach Photo"},
		{"pascal case with underscore", "ProductImage_Final.png", "Product Image Final"},
		{"trailing digits", "SummerVacation2024.jpg", "Summer Vacation 2024"},
		{"uploads path", "/uploads/my_photo.jpg", "My Photo"},
		{"nested directories", "/var/www/wp-content/uploads/2024/05/red-Car.webp", "Red Car"},
		{"windows separators", `C:\uploads\Blue_sky.png`, "Blue Sky"},
		{"no extension", "/uploads/sunset", "Sunset"},
		{"double extension keeps first", "archive.tar.gz", "Archive.tar"},
		{"upper case run", "IMG_1234.jpg", "I M G 1234"},
		{"space already before capital", "my Photo.jpg", "My Photo"},
		{"repeated separators", "__hello--world__.jpg", "Hello World"},
		{"lower cases the rest", "hELLO.png", "H E L L O"},
		{"unicode", "éclair_Über.jpg", "Éclair Über"},
		{"empty", "", ""},
		{"dot file", "/uploads/.htaccess", ""},
		{"only separators", "/uploads/-_-.jpg", ""},
		{"directory only", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateTitleFromFilename(tt.path); got != tt.expected {
				t.Errorf("GenerateTitleFromFilename(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestGenerateTitleFromFilename_NoSeparators(t *testing.T) {
	inputs := []string{
		"a-b_c.jpg", "-", "_", "--x--", "x_-_y", "Already-Title-Case_Name.gif",
		"tab\tand-newline\n_file.png", "CamelCase-with_MIXED-separators2024.jpeg",
	}

	for _, in := range inputs {
		got := GenerateTitleFromFilename(in)
		if strings.ContainsAny(got, "-_") {
			t.Errorf("GenerateTitleFromFilename(%q) = %q contains a separator", in, got)
		}
		if got != strings.TrimSpace(got) || strings.Contains(got, "  ") {
			t.Errorf("GenerateTitleFromFilename(%q) = %q has stray whitespace", in, got)
		}
	}
}

func TestNormalizeDisplayText(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Sunset-Beach", "Sunset Beach"},
		{"snake_case_title", "snake case title"},
		{"a - b", "a   b"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeDisplayText(tt.in); got != tt.expected {
				t.Errorf("NormalizeDisplayText(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestNormalizeDisplayText_Idempotent(t *testing.T) {
	inputs := []string{"", "-", "_-_", "Sunset-Beach", "a__b--c", "no separators", "ünï-cödé_"}
	for _, in := range inputs {
		once := NormalizeDisplayText(in)
		if twice := NormalizeDisplayText(once); twice != once {
			t.Errorf("NormalizeDisplayText not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
