// Package config loads validator and issuer settings from a TOML file,
// the same way pdfsign's CLI reads its signing defaults.
package config

import (
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// DefaultLocation is the default path the CLI looks for a config file.
	DefaultLocation string = "./svtvalidate.conf"

	// Settings holds the config loaded by Read. Populated once at startup.
	Settings Config
)

// Config is the root of the config file.
type Config struct {
	Validation Validation
	Issuer     Issuer
}

// Validation controls how ValidateCommand builds its path validator.
type Validation struct {
	RootsFile              string
	AllowUntrustedRoots    bool
	ExternalRevocation     bool
	ValidateTimestampCerts bool
	HTTPTimeout            time.Duration
}

// Issuer controls the identity and default policy recorded on tokens
// produced by IssueCommand.
type Issuer struct {
	Identity               string
	DefaultBasicValidation bool
	Algorithm              string
}

// Read loads configfile into Settings. The file must exist; a missing
// config is treated as a fatal startup error, not silently skipped.
func Read(configfile string) {
	_, err := os.Stat(configfile)
	if err != nil {
		log.Fatal("Config file is missing: ", configfile)
	}

	var c Config
	if _, err := toml.DecodeFile(configfile, &c); err != nil {
		log.Fatal("Failed to parse config file: ", err)
	}

	Settings = c
}
