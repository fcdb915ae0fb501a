package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Game   GameConfig
	Outbox OutboxConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGame()
	if err != nil {
		return AppConfig{}, err
	}
	outboxCfg, err := LoadOutbox()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Game:   gameCfg,
		Outbox: outboxCfg,
	}, nil
}
