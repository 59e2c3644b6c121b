package config

const (
	defaultConfigPath       = "~/.config/subforge/config.toml"
	defaultUndoLevels       = 100
	defaultAutosaveRetain   = 10
	defaultTimePrecision    = "centiseconds"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogMaxSizeMB     = 10
	defaultLogMaxBackups    = 3
	minUndoLevels           = 2
	logLevelEnv             = "SUBFORGE_LOG_LEVEL"
	autosaveDirSubdirectory = "autosave"
	catalogDirSubdirectory  = "catalog"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		History: History{
			UndoLevels: defaultUndoLevels,
		},
		Autosave: Autosave{
			Enabled: true,
			Dir:     defaultDataDir(autosaveDirSubdirectory),
			Retain:  defaultAutosaveRetain,
		},
		Format: Format{
			TimePrecision: defaultTimePrecision,
		},
		Catalog: Catalog{
			Dir: defaultDataDir(catalogDirSubdirectory),
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
	}
}
