package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"videomorph/internal/dirs"
)

// Keys shared by the flags, the config file and VIDEOMORPH_* variables.
const (
	KeyOutDir    = "out_dir"
	KeyVerbose   = "verbose"
	KeyConverter = "converter"
	KeyProfiles  = "profiles"
	KeyThreads   = "threads"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
)

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	_ = dirs.EnsureConfigDir()

	// Setup config search path
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: VIDEOMORPH_*
	viper.SetEnvPrefix("VIDEOMORPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyOutDir, ".")
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogFormat, "text")

	// Bind root persistent flags to Viper keys
	flags := root.PersistentFlags()
	for key, flag := range map[string]string{
		KeyOutDir:    "out-dir",
		KeyVerbose:   "verbose",
		KeyConverter: "converter",
		KeyProfiles:  "profiles",
		KeyThreads:   "threads",
		KeyLogLevel:  "log-level",
	} {
		if f := flags.Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	// Read config file if present (ignore not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}
