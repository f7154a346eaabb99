package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration into the base config. Files ending in
// .yaml or .yml are YAML; anything else is JSON with unknown fields rejected.
func LoadFromFile(path string, base Config) (Config, error) {
	return decodeFile(path, base, false)
}

// Load loads config from file (if provided), applies env overrides and
// validates the result.
func Load(path, envPrefix string) (Config, error) {
	cfg := Default()
	var err error
	if path != "" {
		cfg, err = LoadFromFile(path, cfg)
		if err != nil {
			return cfg, err
		}
	}
	if envPrefix != "" {
		cfg = LoadFromEnv(envPrefix, cfg)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeFile[T any](path string, base T, allowMissing bool) (T, error) {
	file, err := os.Open(path)
	if err != nil {
		if allowMissing && os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&base); err != nil {
			return base, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&base); err != nil {
			return base, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return base, nil
}
