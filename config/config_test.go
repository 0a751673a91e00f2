package config_test

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/digitorus/svtvalidate/config"
)

func TestConfigDecode(t *testing.T) {
	const configContent = `
[validation]
RootsFile = "ca-bundle.pem"
AllowUntrustedRoots = false
ExternalRevocation = true
ValidateTimestampCerts = true
HTTPTimeout = "10s"

[issuer]
Identity = "https://tsa.example/svt"
DefaultBasicValidation = true
Algorithm = "RS256"
`

	var c config.Config
	if _, err := toml.Decode(configContent, &c); err != nil {
		t.Fatal(err)
	}

	if c.Validation.RootsFile != "ca-bundle.pem" {
		t.Errorf("RootsFile = %q, want ca-bundle.pem", c.Validation.RootsFile)
	}
	if !c.Validation.ExternalRevocation {
		t.Error("expected ExternalRevocation to be true")
	}
	if c.Validation.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", c.Validation.HTTPTimeout)
	}
	if c.Issuer.Identity != "https://tsa.example/svt" {
		t.Errorf("Identity = %q, want https://tsa.example/svt", c.Issuer.Identity)
	}
	if c.Issuer.Algorithm != "RS256" {
		t.Errorf("Algorithm = %q, want RS256", c.Issuer.Algorithm)
	}
}

func TestConfigDecodeEmpty(t *testing.T) {
	var c config.Config
	if _, err := toml.Decode("", &c); err != nil {
		t.Fatal(err)
	}
	if c.Validation.RootsFile != "" {
		t.Errorf("expected zero-value Validation, got %+v", c.Validation)
	}
}
