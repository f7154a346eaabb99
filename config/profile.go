package config

// Profile describes layered config sources. Each path may be JSON or YAML.
type Profile struct {
	BasePath     string
	EnvPath      string
	SecretsPath  string
	EnvPrefix    string
	AllowMissing bool
}

// Loader composes layered config with defaults and validation.
type Loader[T any] struct {
	Defaults func() T
	ApplyEnv func(prefix string, base T) T
	Validate func(cfg T) error
}

// Load merges profile layers into a typed config.
func (l Loader[T]) Load(profile Profile) (T, error) {
	var cfg T
	if l.Defaults != nil {
		cfg = l.Defaults()
	}

	var err error
	if profile.BasePath != "" {
		cfg, err = decodeFile(profile.BasePath, cfg, profile.AllowMissing)
		if err != nil {
			return cfg, err
		}
	}
	if profile.EnvPath != "" {
		cfg, err = decodeFile(profile.EnvPath, cfg, profile.AllowMissing)
		if err != nil {
			return cfg, err
		}
	}
	if profile.SecretsPath != "" {
		cfg, err = decodeFile(profile.SecretsPath, cfg, profile.AllowMissing)
		if err != nil {
			return cfg, err
		}
	}
	if profile.EnvPrefix != "" && l.ApplyEnv != nil {
		cfg = l.ApplyEnv(profile.EnvPrefix, cfg)
	}
	if l.Validate != nil {
		if err := l.Validate(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// LoadProfile loads Config from a layered profile with validation.
func LoadProfile(profile Profile) (Config, error) {
	loader := Loader[Config]{
		Defaults: Default,
		ApplyEnv: LoadFromEnv,
		Validate: Validate,
	}
	return loader.Load(profile)
}
