package render

import (
	"strings"
	"testing"
)

func TestThemeByName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"dark", true},
		{"light", true},
		{"", false},
		{"tokyonight", false},
	}

	for _, tt := range tests {
		theme, ok := ThemeByName(tt.name)
		if ok != tt.ok {
			t.Errorf("ThemeByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
		if ok && theme.Name != tt.name {
			t.Errorf("theme name = %q, want %q", theme.Name, tt.name)
		}
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("light")

	if !SetTheme("dark") {
		t.Fatal("SetTheme(dark) should succeed")
	}
	if GetTheme().Name != "dark" {
		t.Errorf("active theme = %q, want dark", GetTheme().Name)
	}

	// Unknown names leave the active theme alone
	if SetTheme("blue") {
		t.Error("SetTheme(blue) should fail")
	}
	if GetTheme().Name != "dark" {
		t.Error("failed SetTheme must not change the active theme")
	}
}

func TestThemeMarkdownStyles(t *testing.T) {
	if DarkTheme.MarkdownStyle != "dark" {
		t.Errorf("DarkTheme.MarkdownStyle = %q", DarkTheme.MarkdownStyle)
	}
	if LightTheme.MarkdownStyle != "light" {
		t.Errorf("LightTheme.MarkdownStyle = %q", LightTheme.MarkdownStyle)
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
	}{
		{"simple markdown", "# Header\n\nThis is **bold** text.", 80},
		{"empty input", "", 80},
		{"long input", strings.Repeat("word ", 100), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := MarkdownWithWidth(tt.input, tt.width)
			if err != nil {
				t.Errorf("MarkdownWithWidth failed: %v", err)
			}
			if output == "" && tt.input != "" {
				t.Error("expected non-empty output for non-empty input")
			}
		})
	}
}

func TestMarkdownPoolReuse(t *testing.T) {
	opts := DefaultOptions().WithWidth(60)

	// Render twice with identical options; the second call exercises the
	// pooled renderer path. Words are asserted individually because the
	// output interleaves ANSI color spans between them.
	for i := 0; i < 2; i++ {
		out, err := Markdown("- alpha\n- omega", opts)
		if err != nil {
			t.Fatalf("Markdown failed on pass %d: %v", i, err)
		}
		for _, word := range []string{"alpha", "omega"} {
			if !strings.Contains(out, word) {
				t.Errorf("pass %d output missing %q: %q", i, word, out)
			}
		}
	}
}
