package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rgonek/button-block/attachment"
	"gopkg.in/yaml.v3"
)

var markerClassPattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

// Config holds deployment-specific settings for the button extension.
type Config struct {
	DefaultLabel       string   `json:"defaultLabel,omitempty" yaml:"default_label"`
	DefaultTarget      string   `json:"defaultTarget,omitempty" yaml:"default_target"`
	ToolbarButtonName  string   `json:"toolbarButtonName,omitempty" yaml:"toolbar_button_name"`
	ToolbarButtonLabel string   `json:"toolbarButtonLabel,omitempty" yaml:"toolbar_button_label"`
	ImportPriority     int      `json:"importPriority,omitempty" yaml:"import_priority"`
	MarkerClasses      []string `json:"markerClasses,omitempty" yaml:"marker_classes"`
	WidgetTemplate     string   `json:"widgetTemplate,omitempty" yaml:"widget_template"`
}

func (c Config) applyDefaults() Config {
	if c.DefaultLabel == "" {
		c.DefaultLabel = attachment.DefaultLabel
	}
	if c.DefaultTarget == "" {
		c.DefaultTarget = attachment.DefaultTarget
	}
	if c.ToolbarButtonName == "" {
		c.ToolbarButtonName = "insert-button"
	}
	if c.ToolbarButtonLabel == "" {
		c.ToolbarButtonLabel = "Insert Button"
	}
	if c.ImportPriority == 0 {
		c.ImportPriority = attachment.ImportPriority
	}
	if len(c.MarkerClasses) == 0 {
		c.MarkerClasses = []string{attachment.MarkerClass}
	}
	return c
}

// clone returns a deep copy of Config for slice-backed fields.
func (c Config) clone() Config {
	cloned := c
	if c.MarkerClasses != nil {
		cloned.MarkerClasses = append([]string(nil), c.MarkerClasses...)
	}
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DefaultLabel) == "" {
		return fmt.Errorf("defaultLabel must not be blank")
	}
	if strings.TrimSpace(c.DefaultTarget) == "" {
		return fmt.Errorf("defaultTarget must not be blank")
	}
	if strings.ContainsAny(c.ToolbarButtonName, " \t\n\"") || c.ToolbarButtonName == "" {
		return fmt.Errorf("invalid toolbarButtonName %q", c.ToolbarButtonName)
	}
	if strings.TrimSpace(c.ToolbarButtonLabel) == "" {
		return fmt.Errorf("toolbarButtonLabel must not be blank")
	}
	if c.ImportPriority < 0 {
		return fmt.Errorf("importPriority must not be negative, got %d", c.ImportPriority)
	}
	for _, class := range c.MarkerClasses {
		if !markerClassPattern.MatchString(class) {
			return fmt.Errorf("invalid markerClasses entry %q", class)
		}
	}
	return nil
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}.applyDefaults(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg = cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
