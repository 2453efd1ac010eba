package config

import (
	"github.com/pseudomuto/pgtidy/pkg/consts"
	"go.uber.org/fx"
)

var Module = fx.Module("config", fx.Provide(
	// Loads pgtidy.yaml from the working directory, falling back to the
	// built-in defaults when the file does not exist. The root command reloads
	// it after --dir changes the working directory.
	func() (*Config, error) {
		return LoadConfigFileOrDefaults(consts.ConfigFile)
	},
))
