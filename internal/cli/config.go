package cli

import (
	"os"

	"github.com/goccy/go-yaml"
)

// fileConfig is nlu-cli's optional defaults file (nlu-cli.yaml), read from
// the current directory or --config if set. Every field can still be
// overridden by its matching flag.
type fileConfig struct {
	ModelDir string `yaml:"model_dir"`
	Debug    bool   `yaml:"debug"`
	LogFile  string `yaml:"log_file"`
}

// loadConfig reads path if it exists; a missing file is not an error, since
// the config file itself is optional.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
