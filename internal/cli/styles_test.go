package cli

import (
	"strings"
	"testing"
)

func TestRenderPanel_Plain(t *testing.T) {
	tests := []struct {
		kind    PanelKind
		content string
		want    string
	}{
		{PanelSuccess, "4 models", "✓ schema is valid\n4 models\n"},
		{PanelError, "", "✗ schema is valid\n"},
		{PanelWarning, "x", "! schema is valid\nx\n"},
		{PanelInfo, "x", "→ schema is valid\nx\n"},
	}
	for _, tt := range tests {
		if got := RenderPanel(tt.kind, "schema is valid", tt.content); got != tt.want {
			t.Errorf("RenderPanel(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestRenderPanel_Colored(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)
	SetDefault(&Config{Mode: ModeTTY})

	got := RenderPanel(PanelSuccess, "schema is valid", "4 models")
	for _, want := range []string{"╭", "schema is valid", "4 models", "╯"} {
		if !strings.Contains(got, want) {
			t.Errorf("colored panel missing %q:\n%s", want, got)
		}
	}
}

func TestRenderBadge_Plain(t *testing.T) {
	if got := RenderBadge(PanelSuccess, "OK"); got != "[OK]" {
		t.Errorf("RenderBadge = %q, want [OK]", got)
	}
}
