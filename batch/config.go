package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where `reqflat init` writes its configuration.
const DefaultConfigPath = ".reqflat.yaml"

// Config represents the overall configuration of a run.
type Config struct {
	Name string `yaml:"name"`
	// Root overrides the root area named by the world file.
	Root    string `yaml:"root,omitempty"`
	Verify  bool   `yaml:"verify"`
	Workers int    `yaml:"workers" validate:"min=1,max=256"`
	Format  string `yaml:"format" validate:"oneof=text json yaml"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Name:    "reqflat",
		Workers: runtime.NumCPU(),
		Format:  "text",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig reads the configuration at path on top of DefaultConfig.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, config.Validate()
}

// WriteConfig writes c to path as YAML.
func WriteConfig(path string, c Config) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
