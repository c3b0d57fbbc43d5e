// Package config resolves tpsync settings from defaults, an optional YAML
// file, environment variables, and command-line flags, in that order.
// The resolved Config is built once in cmd and passed down explicitly.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkoosis/tpsync/pkg/fuzzy"
)

// Environment variables. Credentials come from the AZURE_DEVOPS_* set the
// original tooling established; TPSYNC_* override non-credential knobs.
const (
	EnvPAT     = "AZURE_DEVOPS_PAT"
	EnvOrg     = "AZURE_DEVOPS_ORG"
	EnvProject = "AZURE_DEVOPS_PROJECT"

	EnvMinScore   = "TPSYNC_MIN_SCORE"
	EnvWorkers    = "TPSYNC_WORKERS"
	EnvTheme      = "TPSYNC_THEME"
	EnvAPIVersion = "TPSYNC_API_VERSION"
)

// Defaults.
const (
	DefaultAPIVersion = "7.1"
	DefaultWorkers    = 4
	DefaultTheme      = "default"
)

// Source identifies which layer a setting came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Config is the fully resolved configuration.
type Config struct {
	OrgURL     string
	Project    string
	PAT        string
	APIVersion string
	MinScore   int
	Workers    int
	Theme      string
	NoColor    bool
	Verbose    bool

	// Path is the config file that was loaded, empty when none was found.
	Path string

	sources map[string]Source
}

// Overrides carries explicitly set flag values. Empty strings and zero ints
// mean "not set"; booleans pair with a Set marker since false is a value.
type Overrides struct {
	OrgURL     string
	Project    string
	PAT        string
	APIVersion string
	Theme      string
	MinScore   int
	Workers    int
	NoColor    bool
	NoColorSet bool
	Verbose    bool
	VerboseSet bool
}

func defaults() *Config {
	return &Config{
		APIVersion: DefaultAPIVersion,
		MinScore:   fuzzy.DefaultMinScore,
		Workers:    DefaultWorkers,
		Theme:      DefaultTheme,
		sources:    make(map[string]Source),
	}
}

// Source reports which layer supplied the named setting ("org_url",
// "project", "pat", "api_version", "min_score", "workers", "theme",
// "no_color").
func (c *Config) Source(name string) Source {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

func (c *Config) setSource(name string, s Source) {
	if c.sources == nil {
		c.sources = make(map[string]Source)
	}
	c.sources[name] = s
}

// MissingError reports every required setting that stayed unresolved, so a
// user fixes their environment in one pass instead of one variable per run.
type MissingError struct {
	Missing []string
}

func (e *MissingError) Error() string {
	sorted := append([]string(nil), e.Missing...)
	sort.Strings(sorted)
	return "missing required configuration: " + strings.Join(sorted, ", ")
}

// Validate checks the settings every service-facing command needs.
func (c *Config) Validate() error {
	var missing []string
	if c.OrgURL == "" {
		missing = append(missing, EnvOrg)
	}
	if c.Project == "" {
		missing = append(missing, EnvProject)
	}
	if c.PAT == "" {
		missing = append(missing, EnvPAT)
	}
	if len(missing) > 0 {
		return &MissingError{Missing: missing}
	}
	return nil
}

// PATPreview returns a redacted display form of a token. The full token is
// never shown.
func PATPreview(pat string) string {
	if pat == "" {
		return "not set"
	}
	if len(pat) <= 14 {
		return fmt.Sprintf("%s (length: %d)", strings.Repeat("*", len(pat)), len(pat))
	}
	return fmt.Sprintf("%s...%s (length: %d)", pat[:10], pat[len(pat)-4:], len(pat))
}
