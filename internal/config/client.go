package config

type ClientConfig struct {
	Debug bool `toml:"debug" comment:"enables debug logging, the -debug flag overrides this"`
}

type ClientConfigManager struct {
	BaseConfigManager[ClientConfig]
}

func (a *ClientConfigManager) Verify() error {
	return nil
}

func NewClientConfigManager(config *ClientConfig, mgr *Manager) *ClientConfigManager {
	j := ClientConfigManager{}
	j.conf = config
	j.mgr = mgr

	return &j
}
