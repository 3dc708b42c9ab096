// Package config loads settings for patch graphs.
//
// Settings are layered. Built-in defaults are overridden by every YAML file
// passed to Load, in order, and finally by PATCH_* environment variables.
// Values are converted to the type of the default, so "7" or "true" in a file
// or in the environment are accepted for numeric and boolean settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to upper-cased setting names to form env variables.
const envPrefix = "PATCH_"

// ErrUnknownVariable is returned when a setting name does not exist.
var ErrUnknownVariable = errors.New("unknown config variable")

// Config holds the settings of a graph.
type Config struct {
	// Caching is the default for outputs that don't set caching explicitly.
	Caching bool `mapstructure:"caching" yaml:"caching"`
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// Default returns built-in settings.
func Default() Config {
	return Config{
		Caching: true,
	}
}

// Load applies YAML files and environment on top of defaults. Files that
// don't exist are skipped.
func Load(paths ...string) (Config, error) {
	vars, err := Default().vars()
	if err != nil {
		return Config{}, err
	}
	for _, path := range paths {
		layer, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := merge(vars, layer); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := merge(vars, environ(vars)); err != nil {
		return Config{}, err
	}
	return decode(vars)
}

// Set changes a single setting. The value is converted to the setting type.
func (c *Config) Set(name string, value interface{}) error {
	vars, err := c.vars()
	if err != nil {
		return err
	}
	if err := merge(vars, map[string]interface{}{name: value}); err != nil {
		return err
	}
	result, err := decode(vars)
	if err != nil {
		return err
	}
	*c = result
	return nil
}

// Save writes settings into YAML file.
func (c Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// vars converts settings into a map keyed by setting names.
func (c Config) vars() (map[string]interface{}, error) {
	vars := make(map[string]interface{})
	if err := mapstructure.Decode(c, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func readFile(path string) (map[string]interface{}, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	layer := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &layer); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return layer, nil
}

// environ returns values of env variables for known settings.
func environ(vars map[string]interface{}) map[string]interface{} {
	layer := make(map[string]interface{})
	for name := range vars {
		if v, ok := os.LookupEnv(envPrefix + strings.ToUpper(name)); ok {
			layer[name] = v
		}
	}
	return layer
}

// merge copies layer into vars. Only known names are accepted.
func merge(vars, layer map[string]interface{}) error {
	for name, v := range layer {
		name = strings.ToLower(name)
		if _, ok := vars[name]; !ok {
			return fmt.Errorf("%q: %w", name, ErrUnknownVariable)
		}
		vars[name] = v
	}
	return nil
}

func decode(vars map[string]interface{}) (Config, error) {
	var c Config
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &c,
	})
	if err != nil {
		return Config{}, err
	}
	if err := d.Decode(vars); err != nil {
		return Config{}, err
	}
	return c, nil
}
