// Package config loads and validates the swagsync configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v4"

	"github.com/swagsync/swagsync/pysrc"
)

// DefaultFile is the conventional configuration file name, looked up in the
// working directory when no explicit path is given.
const DefaultFile = ".swagsync.yaml"

// Markers configures the documentation-block delimiters.
type Markers struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// Decorators configures the recognized decorator names.
type Decorators struct {
	Route     string `yaml:"route" validate:"required"`
	Static    string `yaml:"static" validate:"required"`
	Pattern   string `yaml:"pattern" validate:"required"`
	Component string `yaml:"component" validate:"required"`
	Property  string `yaml:"property" validate:"required"`
	Attribute string `yaml:"attribute" validate:"required"`
}

// Report configures coverage-report output.
type Report struct {
	Format string `yaml:"format" validate:"omitempty,oneof=json text markdown xml"`
	Output string `yaml:"output"`
	Badge  string `yaml:"badge"`
}

// Config is the full swagsync configuration.
type Config struct {
	// HandlersDir is the root of the HTTP handler tree.
	HandlersDir string `yaml:"handlers" validate:"required"`
	// ModelsDir is the root of the model tree. Empty disables model
	// scanning.
	ModelsDir string `yaml:"models"`
	// SwaggerFile is the hand-authored document kept in sync.
	SwaggerFile string `yaml:"swagger" validate:"required"`
	// ProjectRoot anchors absolute-import alias resolution. Defaults to
	// the handlers directory's parent when empty.
	ProjectRoot string `yaml:"project_root"`

	Strict           bool              `yaml:"strict"`
	IgnorePatterns   []string          `yaml:"ignore_patterns"`
	VersionValues    map[string]string `yaml:"version_values"`
	ValidateDocument bool              `yaml:"validate_document"`

	Markers    Markers    `yaml:"markers"`
	Decorators Decorators `yaml:"decorators"`
	Report     Report     `yaml:"report"`
}

// Default returns the configuration with every optional field at its
// built-in value.
func Default() *Config {
	return &Config{
		VersionValues: map[string]string{"VERSION": "v1"},
		Markers: Markers{
			Start: pysrc.DefaultBlockStart,
			End:   pysrc.DefaultBlockEnd,
		},
		Decorators: Decorators{
			Route:     "route",
			Static:    "static_route",
			Pattern:   "pattern_route",
			Component: "component",
			Property:  "doc_property",
			Attribute: "doc_attribute",
		},
		Report: Report{Format: "text"},
	}
}

// Load reads and validates a configuration file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration YAML, fills unset fields with their defaults,
// and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.VersionValues == nil {
		c.VersionValues = d.VersionValues
	}
	if c.Markers.Start == "" {
		c.Markers.Start = d.Markers.Start
	}
	if c.Markers.End == "" {
		c.Markers.End = d.Markers.End
	}
	if c.Decorators.Route == "" {
		c.Decorators.Route = d.Decorators.Route
	}
	if c.Decorators.Static == "" {
		c.Decorators.Static = d.Decorators.Static
	}
	if c.Decorators.Pattern == "" {
		c.Decorators.Pattern = d.Decorators.Pattern
	}
	if c.Decorators.Component == "" {
		c.Decorators.Component = d.Decorators.Component
	}
	if c.Decorators.Property == "" {
		c.Decorators.Property = d.Decorators.Property
	}
	if c.Decorators.Attribute == "" {
		c.Decorators.Attribute = d.Decorators.Attribute
	}
	if c.Report.Format == "" {
		c.Report.Format = d.Report.Format
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its schema.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
