package config

import (
	"testing"

	"go.ghostpane.dev/ghostpane/internal/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BackendURL == "" {
		t.Fatal("expected non-empty backend URL")
	}
	if cfg.Opacity != defaultOpacity {
		t.Fatalf("expected opacity %v, got %v", defaultOpacity, cfg.Opacity)
	}
	if !cfg.AlwaysOnTop {
		t.Fatal("expected always-on-top by default")
	}
	if cfg.Language != types.LangJavaScript {
		t.Fatalf("expected javascript default language, got %s", cfg.Language)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	SetDir(t.TempDir())
	t.Cleanup(func() { SetDir("") })

	cfg := Default()
	cfg.Language = types.LangGo
	cfg.Opacity = 0.5
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Language != types.LangGo {
		t.Fatalf("language = %s, want go", got.Language)
	}
	if got.Opacity != 0.5 {
		t.Fatalf("opacity = %v, want 0.5", got.Opacity)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want func(*Config) bool
	}{
		{
			"opacity_too_high",
			Config{Opacity: 1.5},
			func(c *Config) bool { return c.Opacity == defaultOpacity },
		},
		{
			"opacity_zero",
			Config{},
			func(c *Config) bool { return c.Opacity == defaultOpacity },
		},
		{
			"opacity_valid_kept",
			Config{Opacity: 0.5},
			func(c *Config) bool { return c.Opacity == 0.5 },
		},
		{
			"unknown_language_reset",
			Config{Language: "cobol"},
			func(c *Config) bool { return c.Language == types.LangJavaScript },
		},
		{
			"empty_backend_reset",
			Config{},
			func(c *Config) bool { return c.BackendURL == defaultBackendURL },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.normalize()
			if !tt.want(&cfg) {
				t.Fatalf("normalize produced %+v", cfg)
			}
		})
	}
}
