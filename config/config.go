package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/beatdex/constants"
	"github.com/jsphweid/beatdex/util"
)

// Config is read from a YAML file; environment variables override it.
type Config struct {
	DataHome string       `yaml:"data_home"`
	Dataset  string       `yaml:"dataset"`
	Server   ServerConfig `yaml:"server"`
	Log      LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

func Default() Config {
	return Config{
		DataHome: constants.DefaultDataHome,
		Dataset:  constants.DefaultDataset,
		Server: ServerConfig{
			Addr:           constants.DefaultAddr,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// unless required is set. Values from .env and the process environment
// win over the file.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	// .env is optional
	_ = godotenv.Load()

	if util.FileExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "could not read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "could not parse config %s", path)
		}
	} else if required {
		return cfg, errors.Errorf("config file %s not found", path)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DataHome = constants.GetDataHome(cfg.DataHome)
	if v := os.Getenv(constants.DatasetEnv); v != "" {
		cfg.Dataset = v
	}
	if v := os.Getenv(constants.AddrEnv); v != "" {
		cfg.Server.Addr = v
	}
}
