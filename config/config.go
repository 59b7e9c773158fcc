// Package config loads the draftflow runtime configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/draftflow/draftflow-go/completion"
)

// Config is the full runtime configuration.
type Config struct {
	Model completion.ModelConfig `yaml:"model"`

	// Pipeline tuning.
	QualityThreshold float64 `yaml:"quality_threshold"`
	RefineIterations int     `yaml:"refine_iterations"`

	// Input and output locations.
	CVDir  string `yaml:"cv_dir"`
	JobDir string `yaml:"job_dir"`

	OutputDir    string `yaml:"output_dir"`
	DatabasePath string `yaml:"database_path"`

	// Optional event streaming to an AMQP broker.
	AMQP AMQPConfig `yaml:"amqp"`
}

// AMQPConfig enables streaming run events to a broker when URL is set.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Model: completion.ModelConfig{
			Model: "gpt-4o-mini",
		},
		QualityThreshold: 0.85,
		RefineIterations: 1,
		CVDir:            "input/cvs",
		JobDir:           "input/job_descriptions",
		OutputDir:        "output",
		DatabasePath:     "data/draftflow.db",
	}
}

// Load reads the configuration file at path, applying defaults for
// absent fields. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Model.Model == "" {
		return fmt.Errorf("config: model.model must be set")
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("config: quality_threshold must be in [0, 1], got %v", c.QualityThreshold)
	}
	if c.RefineIterations < 1 {
		return fmt.Errorf("config: refine_iterations must be >= 1, got %d", c.RefineIterations)
	}
	return nil
}

// APIKey resolves the model API key, falling back to the environment.
func (c Config) APIKey() string {
	if c.Model.APIKey != "" {
		return c.Model.APIKey
	}
	if key := os.Getenv("DRAFTFLOW_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}
