package config

import (
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const fileName = ".tpsync.yaml"

// fileConfig is the YAML shape of .tpsync.yaml. The token deliberately has
// no file field; it comes from the environment or a flag.
type fileConfig struct {
	OrgURL     string `yaml:"org_url"`
	Project    string `yaml:"project"`
	APIVersion string `yaml:"api_version"`
	MinScore   int    `yaml:"min_score"`
	Workers    int    `yaml:"workers"`
	Theme      string `yaml:"theme"`
	NoColor    *bool  `yaml:"no_color"`
}

// Load resolves defaults, then the config file, then the environment.
// Flag values are layered on afterwards with Apply. Load never fails: an
// unreadable or malformed file logs a warning and the remaining layers win.
func Load() *Config {
	cfg := defaults()
	loadFile(cfg)
	loadEnv(cfg)
	return cfg
}

func loadFile(cfg *Config) {
	path := configPath()
	if path == "" {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Warnf("could not read config file %s", path)
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		log.WithError(err).Warnf("could not parse config file %s", path)
		return
	}
	cfg.Path = path

	if fc.OrgURL != "" {
		cfg.OrgURL = fc.OrgURL
		cfg.setSource("org_url", SourceFile)
	}
	if fc.Project != "" {
		cfg.Project = fc.Project
		cfg.setSource("project", SourceFile)
	}
	if fc.APIVersion != "" {
		cfg.APIVersion = fc.APIVersion
		cfg.setSource("api_version", SourceFile)
	}
	if fc.MinScore > 0 {
		cfg.MinScore = fc.MinScore
		cfg.setSource("min_score", SourceFile)
	}
	if fc.Workers > 0 {
		cfg.Workers = fc.Workers
		cfg.setSource("workers", SourceFile)
	}
	if fc.Theme != "" {
		cfg.Theme = fc.Theme
		cfg.setSource("theme", SourceFile)
	}
	if fc.NoColor != nil {
		cfg.NoColor = *fc.NoColor
		cfg.setSource("no_color", SourceFile)
	}
}

func loadEnv(cfg *Config) {
	if v := os.Getenv(EnvOrg); v != "" {
		cfg.OrgURL = v
		cfg.setSource("org_url", SourceEnv)
	}
	if v := os.Getenv(EnvProject); v != "" {
		cfg.Project = v
		cfg.setSource("project", SourceEnv)
	}
	if v := os.Getenv(EnvPAT); v != "" {
		cfg.PAT = v
		cfg.setSource("pat", SourceEnv)
	}
	if v := os.Getenv(EnvAPIVersion); v != "" {
		cfg.APIVersion = v
		cfg.setSource("api_version", SourceEnv)
	}
	if v := os.Getenv(EnvMinScore); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinScore = n
			cfg.setSource("min_score", SourceEnv)
		} else {
			log.Warnf("ignoring %s=%q: not a positive integer", EnvMinScore, v)
		}
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
			cfg.setSource("workers", SourceEnv)
		} else {
			log.Warnf("ignoring %s=%q: not a positive integer", EnvWorkers, v)
		}
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = v
		cfg.setSource("theme", SourceEnv)
	}
	// Presence alone disables color, per the NO_COLOR convention.
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
		cfg.setSource("no_color", SourceEnv)
	}
}

// Apply layers explicitly set flag values over the loaded config.
func (c *Config) Apply(o Overrides) {
	if o.OrgURL != "" {
		c.OrgURL = o.OrgURL
		c.setSource("org_url", SourceFlag)
	}
	if o.Project != "" {
		c.Project = o.Project
		c.setSource("project", SourceFlag)
	}
	if o.PAT != "" {
		c.PAT = o.PAT
		c.setSource("pat", SourceFlag)
	}
	if o.APIVersion != "" {
		c.APIVersion = o.APIVersion
		c.setSource("api_version", SourceFlag)
	}
	if o.MinScore > 0 {
		c.MinScore = o.MinScore
		c.setSource("min_score", SourceFlag)
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
		c.setSource("workers", SourceFlag)
	}
	if o.Theme != "" {
		c.Theme = o.Theme
		c.setSource("theme", SourceFlag)
	}
	if o.NoColorSet {
		c.NoColor = o.NoColor
		c.setSource("no_color", SourceFlag)
	}
	if o.VerboseSet {
		c.Verbose = o.Verbose
	}
}

// configPath finds the config file: current directory first, then the user
// config directory under a tpsync subdirectory.
func configPath() string {
	if _, err := os.Stat(fileName); err == nil {
		return fileName
	}
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	path := filepath.Join(configHome, "tpsync", fileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
