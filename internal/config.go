package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is looked up in the user's home directory
const DefaultConfigName = ".dexcom-tools.yaml"

// EnvPrefix prefixes environment overrides, e.g. DEXCOM_CONVERT_TIMEZONE
const EnvPrefix = "DEXCOM"

// Config holds defaults for the merge and convert commands. Values are
// layered: built-in defaults, the YAML file, DEXCOM_* environment variables,
// then command line flags.
type Config struct {
	Merge   MergeConfig   `yaml:"merge"`
	Convert ConvertConfig `yaml:"convert"`
}

// MergeConfig holds merge defaults
type MergeConfig struct {
	Path      string `yaml:"path"`
	Output    string `yaml:"output"`
	Terse     bool   `yaml:"terse"`
	CSV       bool   `yaml:"csv"`
	DeviceGen bool   `yaml:"device_gen" split_words:"true"`
	Serial    bool   `yaml:"serial"`
}

// ConvertConfig holds convert defaults. An empty Output names the result
// after the input file.
type ConvertConfig struct {
	Timezone string `yaml:"timezone"`
	Format   string `yaml:"format" validate:"omitempty,oneof=json jsonl yaml yml md markdown"`
	Output   string `yaml:"output"`
	Policy   Policy `yaml:"policy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Merge: MergeConfig{
			Output: "merged-dexcom.csv",
		},
		Convert: ConvertConfig{
			Format: "json",
			Policy: DefaultPolicy(),
		},
	}
}

// DefaultConfigPath returns ~/.dexcom-tools.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigName), nil
}

// LoadConfig reads a YAML config over the defaults, then applies environment
// overrides. An empty path means the default location, which may be absent.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultConfigPath(); err != nil {
			LogDebug("No default config: %v", err)
		} else {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			LogDebug("Loaded config from %s", path)
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return nil, &FileError{Path: path, Op: "read", Err: err}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the output format and the segmentation policy
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	return c.Convert.Policy.Validate()
}
