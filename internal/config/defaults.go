package config

const (
	defaultDataDir       = "~/.local/share/magf"
	defaultLogDir        = "~/.local/share/magf/logs"
	defaultAPIBind       = "127.0.0.1:7490"
	defaultFPS           = 15
	defaultDecodeWorkers = 1
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	defaultConfigPath  = "~/.config/magf/config.toml"
	projectConfigName  = "magf.toml"
	apiBindEnv         = "MAGF_API_BIND"
	catalogFileName    = "catalog.db"
	daemonLockFileName = "magfd.lock"
	logFileName        = "magf.log"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Encoding: Encoding{
			DefaultFPS: defaultFPS,
		},
		Player: Player{
			DecodeWorkers: defaultDecodeWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
