package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Poll.IntervalSec != 5 {
		t.Errorf("IntervalSec = %d, want 5", cfg.Poll.IntervalSec)
	}
	if cfg.Provider.Default != "guerrillamail" {
		t.Errorf("Provider.Default = %q", cfg.Provider.Default)
	}
	if cfg.Provider.PreferredDomains == nil {
		t.Error("PreferredDomains not initialized")
	}
	if cfg.DataDir == "" {
		t.Error("DataDir empty")
	}
}

func TestLoadConfigClampsInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "poll:\n  interval_sec: -3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Poll.IntervalSec != 5 {
		t.Errorf("IntervalSec = %d, want clamped to 5", cfg.Poll.IntervalSec)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &AppConfig{
		DataDir: "/tmp/tempmail-test",
		Poll:    PollConfig{IntervalSec: 30},
		Provider: ProviderConfig{
			Default:          "mailgw",
			PreferredDomains: map[string]string{"mailgw": "mail.gw"},
		},
	}

	if err := SaveConfig(path, in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.DataDir != in.DataDir {
		t.Errorf("DataDir = %q", out.DataDir)
	}
	if out.Poll.IntervalSec != 30 {
		t.Errorf("IntervalSec = %d", out.Poll.IntervalSec)
	}
	if out.Provider.Default != "mailgw" {
		t.Errorf("Provider.Default = %q", out.Provider.Default)
	}
	if out.Provider.PreferredDomains["mailgw"] != "mail.gw" {
		t.Errorf("PreferredDomains = %v", out.Provider.PreferredDomains)
	}
}
