package config

// Load returns the file configuration when path is set, otherwise the
// environment configuration. opts apply to the environment source only.
func Load(path string, opts ...LoadOption) (*StaticConfig, error) {
	if path != "" {
		cfg, err := LoadFileConfig(path)
		if err != nil {
			return nil, err
		}
		return &cfg.StaticConfig, nil
	}

	cfg, err := LoadEnvConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &cfg.StaticConfig, nil
}
