package app

import (
	"github.com/LeoCommon/locationsim/internal/config"
	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/LeoCommon/locationsim/pkg/sinks/dbussink"
	"github.com/LeoCommon/locationsim/pkg/sinks/kafkasink"
	"github.com/LeoCommon/locationsim/pkg/sinks/logsink"
	"github.com/LeoCommon/locationsim/pkg/sinks/mqttsink"
	"github.com/LeoCommon/locationsim/pkg/sinks/nmeasink"
	"github.com/LeoCommon/locationsim/pkg/sinks/restsink"
	"github.com/LeoCommon/locationsim/pkg/sinks/wssink"
	"go.uber.org/zap"
)

type sinkFactory struct {
	name    string
	enabled func(c config.SinksConfig) bool
	create  func(a *App, c config.SinksConfig) (location.Listener, error)
}

var sinkFactories = []sinkFactory{
	{
		name:    "log",
		enabled: func(c config.SinksConfig) bool { return c.Log.Enabled },
		create: func(a *App, _ config.SinksConfig) (location.Listener, error) {
			return logsink.New(a.debug), nil
		},
	},
	{
		name:    "mqtt",
		enabled: func(c config.SinksConfig) bool { return c.MQTT.Enabled },
		create: func(_ *App, c config.SinksConfig) (location.Listener, error) {
			return mqttsink.Connect(mqttsink.Config{
				Broker:   c.MQTT.Broker,
				ClientID: c.MQTT.ClientID,
				Topic:    c.MQTT.Topic,
				QoS:      c.MQTT.QoS,
				Retained: c.MQTT.Retained,
			})
		},
	},
	{
		name:    "kafka",
		enabled: func(c config.SinksConfig) bool { return c.Kafka.Enabled },
		create: func(_ *App, c config.SinksConfig) (location.Listener, error) {
			return kafkasink.New(kafkasink.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.Topic}), nil
		},
	},
	{
		name:    "websocket",
		enabled: func(c config.SinksConfig) bool { return c.WebSocket.Enabled },
		create: func(a *App, c config.SinksConfig) (location.Listener, error) {
			s := wssink.New(a.describeProviders)
			if err := s.Serve(wssink.Config{Listen: c.WebSocket.Listen, Path: c.WebSocket.Path}); err != nil {
				return nil, err
			}
			return s, nil
		},
	},
	{
		name:    "nmea",
		enabled: func(c config.SinksConfig) bool { return c.NMEA.Enabled },
		create: func(_ *App, c config.SinksConfig) (location.Listener, error) {
			return nmeasink.Open(nmeasink.Config{Port: c.NMEA.Port, BaudRate: c.NMEA.BaudRate})
		},
	},
	{
		name:    "dbus",
		enabled: func(c config.SinksConfig) bool { return c.DBus.Enabled },
		create: func(_ *App, c config.SinksConfig) (location.Listener, error) {
			return dbussink.Connect(dbussink.Config{Bus: c.DBus.Bus, Device: c.DBus.Device})
		},
	},
	{
		name:    "rest",
		enabled: func(c config.SinksConfig) bool { return c.REST.Enabled },
		create: func(a *App, c config.SinksConfig) (location.Listener, error) {
			conf := restsink.Config{
				URL:           c.REST.Url,
				AllowInsecure: c.REST.AllowInsecure,
				Retries:       c.REST.Retries,
				Debug:         a.debug,
			}
			if c.REST.Basic != nil {
				username, password := c.REST.Basic.Credentials()
				conf.Basic = &restsink.BasicAuth{Username: username, Password: password}
			}
			return restsink.New(conf), nil
		},
	},
}

// setupSinks subscribes every enabled sink to the provider, a sink that
// cannot be set up is skipped
func (a *App) setupSinks(provider string) {
	conf := a.Conf.Sinks().C()

	for _, f := range sinkFactories {
		if !f.enabled(conf) {
			continue
		}

		sink, err := f.create(a, conf)
		if err != nil {
			log.Error("sink could not be set up, skipping it", zap.String("sink", f.name), zap.Error(err))
			continue
		}

		a.Sinks[f.name] = a.Manager.Subscribe(provider, sink)
		log.Info("sink subscribed", zap.String("sink", f.name), zap.String("provider", provider))
	}
}

func (a *App) describeProviders() []location.Description {
	names := a.Manager.Providers()
	descriptions := make([]location.Description, 0, len(names))

	for _, name := range names {
		p, err := a.Manager.Provider(name)
		if err != nil {
			continue
		}
		descriptions = append(descriptions, location.Describe(p))
	}

	return descriptions
}
