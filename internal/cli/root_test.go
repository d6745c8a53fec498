package cli

import (
	"strings"
	"testing"

	"github.com/Faultbox/meshquant/internal/config"
)

// Flag Changed state is process-global, so the untouched assertions run
// before any Set calls inside the same test.
func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg)
	if cfg.Quantization.Bins != config.Default().Quantization.Bins {
		t.Errorf("untouched bins flag changed config to %d", cfg.Quantization.Bins)
	}
	if cfg.Input.MeshDir != "data" {
		t.Errorf("untouched mesh-dir flag changed config to %q", cfg.Input.MeshDir)
	}

	pf := rootCmd.PersistentFlags()
	for name, value := range map[string]string{
		"bins":    "4096",
		"method":  "sphere",
		"workers": "3",
		"out":     "elsewhere",
	} {
		if err := pf.Set(name, value); err != nil {
			t.Fatalf("setting --%s: %v", name, err)
		}
	}

	applyOverrides(cfg)
	if cfg.Quantization.Bins != 4096 {
		t.Errorf("bins = %d, want 4096", cfg.Quantization.Bins)
	}
	if len(cfg.Quantization.Methods) != 1 || cfg.Quantization.Methods[0] != "sphere" {
		t.Errorf("methods = %v, want [sphere]", cfg.Quantization.Methods)
	}
	if cfg.Run.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Run.Workers)
	}
	if cfg.Output.Dir != "elsewhere" {
		t.Errorf("output dir = %q, want elsewhere", cfg.Output.Dir)
	}
	if cfg.Input.MeshDir != "data" {
		t.Errorf("mesh dir = %q, want untouched default", cfg.Input.MeshDir)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"init":        false,
		"stats":       false,
		"run":         false,
		"quantize":    false,
		"reconstruct": false,
		"metrics":     false,
		"report":      false,
		"runs":        false,
		"version":     false,
	}
	for _, cmd := range rootCmd.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestEmptyAsNA(t *testing.T) {
	if got := emptyAsNA(""); got != "n/a" {
		t.Errorf("emptyAsNA(\"\") = %q", got)
	}
	if got := emptyAsNA("abc123"); got != "abc123" {
		t.Errorf("emptyAsNA(abc123) = %q", got)
	}
}
