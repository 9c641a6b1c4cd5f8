package langmeta

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"de", "Deutsch"},
		{"de-DE", "Deutsch"},
		{"pt-BR", "Português (Brasil)"},
		{"pt-br", "Português (Brasil)"},
		{"pt_BR", "Português (Brasil)"},
		{"fr-FR", "Français"},
		{"en-us", "English (US)"},
		{"xx", "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := Resolve(tt.code); got.Name != tt.want {
				t.Fatalf("Resolve(%q).Name = %q, want %q", tt.code, got.Name, tt.want)
			}
		})
	}
}

func TestResolveUnknownKeepsCode(t *testing.T) {
	got := Resolve("tlh-KX")
	if got.Name != "tlh-KX" || got.Flag != "" {
		t.Fatalf("Resolve unknown = %+v", got)
	}
}
