package cmd

import (
	"github.com/spf13/viper"
)

// Config carries the tool's file based configuration, overridable by
// flags and environment variables.
type Config struct {
	// Archive is the root directory holding one archive per unit
	Archive string `json:"archive" yaml:"archive"`
	// LogLevel is one of debug, info, none
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

func newConfig() (*Config, error) {
	c := new(Config)
	if err := viper.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}

// setRootParams fills root flags left unset from the configuration.
func (c *Config) setRootParams(flags *flagsT) {
	if flags.root.archive == "" {
		flags.root.archive = c.Archive
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
}
