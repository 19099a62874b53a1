// Package config handles configuration for pipegen.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cavspipes/pipegen/pkg/core"
)

// Environment variables that override file configuration.
const (
	EnvPrefix     = "PIPEGEN_"
	envToolPrefix = EnvPrefix + "TOOL_"
	envShell      = EnvPrefix + "SHELL"
	envKraken2DB  = EnvPrefix + "KRAKEN2_DB"
	envRefseqURL  = EnvPrefix + "REFSEQ_URL"
)

// Config represents the pipegen configuration (pipegen.yaml).
type Config struct {
	// Make file settings
	Shell                 string `yaml:"shell" validate:"omitempty,startswith=/"`
	AllowDuplicateTargets bool   `yaml:"allowDuplicateTargets"`

	// Tool name -> executable path
	Tools map[string]string `yaml:"tools" validate:"dive,keys,required,endkeys,required"`

	// Reference data
	Kraken2DB string `yaml:"kraken2DB"`
	RefseqURL string `yaml:"refseqURL" validate:"omitempty,url"`
}

// Default returns the tool locations of the CAVS analysis hosts.
func Default() *Config {
	return &Config{
		Shell: "/bin/bash",
		Tools: map[string]string{
			"fastqc":   "/usr/local/FastQC-0.11.9/fastqc",
			"kraken2":  "/usr/local/kraken2-2.1.2/kraken2",
			"krona":    "/usr/local/KronaTools-2.8.1/bin/ktImportTaxonomy",
			"multiqc":  "/usr/local/bin/multiqc",
			"spades":   "/usr/local/SPAdes-3.15.5/bin/spades.py",
			"seqsero2": "/usr/local/SeqSero2/bin/SeqSero2_package.py",
			"sistr":    "/home/atks/miniconda3/envs/sistr/bin/sistr",
			"mlst":     "/usr/local/mlst-2.23.0/bin/mlst",
			"bwa":      "/usr/local/bwa-0.7.17/bwa",
			"samtools": "/usr/local/samtools-1.17/bin/samtools",
			"bcftools": "/usr/local/bcftools-1.17/bin/bcftools",
			"wget":     "wget",
		},
		Kraken2DB: "/usr/local/ref/kraken2/20210908_standard",
		RefseqURL: "https://ftp.ncbi.nlm.nih.gov/refseq/release",
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithDetails(map[string]interface{}{"path": path}).WithCause(err)
	}

	return &cfg, nil
}

// LoadFromDir looks for pipegen.yaml or pipegen.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"pipegen.yaml", "pipegen.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// LoadDefault reads the configuration stored in the pipegen home directory.
func LoadDefault() (*Config, error) {
	return LoadFromDir(GetHome())
}

// Resolve builds the effective configuration: defaults, then the file at
// path (or the home directory config when path is empty), then environment
// overrides. The result is validated.
func Resolve(path, envFile string) (*Config, error) {
	var (
		file *Config
		err  error
	)
	if path != "" {
		file, err = Load(path)
	} else {
		file, err = LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Merge(file)
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays the non-empty values of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Shell != "" {
		c.Shell = other.Shell
	}
	if other.AllowDuplicateTargets {
		c.AllowDuplicateTargets = true
	}
	if len(other.Tools) > 0 && c.Tools == nil {
		c.Tools = make(map[string]string, len(other.Tools))
	}
	for name, path := range other.Tools {
		c.Tools[name] = path
	}
	if other.Kraken2DB != "" {
		c.Kraken2DB = other.Kraken2DB
	}
	if other.RefseqURL != "" {
		c.RefseqURL = other.RefseqURL
	}
}

// ApplyEnv loads envFile (".env" when empty) without overriding variables
// already set, then applies the PIPEGEN_* variables.
// A missing env file is not an error.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.ErrInvalidConfig.WithDetails(map[string]interface{}{"path": envFile}).WithCause(err)
	}

	if v := os.Getenv(envShell); v != "" {
		c.Shell = v
	}
	if v := os.Getenv(envKraken2DB); v != "" {
		c.Kraken2DB = v
	}
	if v := os.Getenv(envRefseqURL); v != "" {
		c.RefseqURL = v
	}

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(key, envToolPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, envToolPrefix))
		if name == "" {
			continue
		}
		if c.Tools == nil {
			c.Tools = make(map[string]string)
		}
		c.Tools[name] = value
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the configuration values.
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c); err != nil {
		return core.ErrInvalidConfig.WithCause(err)
	}
	return nil
}

// Tool returns the configured executable for name, or name itself so the
// shell resolves it from PATH.
func (c *Config) Tool(name string) string {
	if path, ok := c.Tools[name]; ok && path != "" {
		return path
	}
	return name
}

// ToolNames returns the configured tool names, sorted.
func (c *Config) ToolNames() []string {
	names := make([]string, 0, len(c.Tools))
	for name := range c.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
