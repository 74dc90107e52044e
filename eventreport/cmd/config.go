package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds the settings that can be given through the environment.
type Config struct {
	LogLevel string `env:"EVENTREPORT_LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"EVENTREPORT_DB_PATH"`
	HTTPAddr string `env:"EVENTREPORT_HTTP_ADDR" envDefault:"localhost:0"`
}

// LoadConfig reads the optional .env files and parses the environment into a
// Config. Variables that are already set win over the files.
func LoadConfig(envFiles ...string) (Config, error) {
	var cfg Config

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// applyFlags overrides the configuration with the flags that are set on the
// command line.
func (c *Config) applyFlags(cmd *cobra.Command) {
	override := func(name string, target *string) {
		f := cmd.Flags().Lookup(name)
		if f != nil && f.Changed {
			*target = f.Value.String()
		}
	}

	override("log-level", &c.LogLevel)
	override("db", &c.DBPath)
	override("addr", &c.HTTPAddr)
}

func mustLoadConfig(cmd *cobra.Command) Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	cfg.applyFlags(cmd)

	return cfg
}
