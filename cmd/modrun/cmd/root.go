package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modrun",
	Short: "Modrun manages versioned loadable units",
	Long: `Modrun manages versioned loadable units.

A unit is an installable package with a manifest and named resources.
Every update of a unit appends a revision rather than replacing it, so
consumers of a superseded revision keep working until a refresh.

Unit archives live under a local archive root, one directory per unit.`,
}

var config *Config

// used to patch over calls to os.Exit() during test
var logFatalln = log.Fatalln
var logFatalf = log.Fatalf

func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(msg)
	} else {
		logFatalf("%v", fmt.Errorf(msg+": %w", err))
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
	addArchiveFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addFormatFlag(rootCmd)
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("archive", ".modrun/archive")
	viper.SetDefault("logLevel", "none")
	if os.Getenv("MODRUN_CONFIG") != "" {
		// Use config file from the flag.
		viper.SetConfigFile(os.Getenv("MODRUN_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.modrun")
		viper.AddConfigPath("/etc/modrun")
		viper.SetConfigName("modrun")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setRootParams(&modrunFlags)
}
