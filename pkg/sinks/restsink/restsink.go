// Package restsink posts samples to a REST backend
package restsink

import (
	"context"
	"crypto/tls"
	"net/url"
	"time"

	"github.com/LeoCommon/locationsim/pkg/location"
	"github.com/LeoCommon/locationsim/pkg/log"
	"github.com/imroc/req/v3"
	"go.uber.org/zap"
)

const (
	RequestTimeout          = 1 * time.Second
	RequestRetryMinWaitTime = 100 * time.Millisecond
	RequestRetryMaxWaitTime = 2 * time.Second

	LocationsPath = "locations/"
)

type BasicAuth struct {
	Username string
	Password string
}

type Config struct {
	URL           string
	AllowInsecure bool
	Basic         *BasicAuth
	Retries       int
	Debug         bool
}

type Sink struct {
	client *req.Client
}

func New(conf Config) *Sink {
	client := req.C()

	if conf.Debug {
		client.EnableDebugLog()
	}

	client.SetBaseURL(conf.URL)

	if conf.Basic != nil && conf.Basic.Username != "" {
		log.Info("using basic auth mechanism", zap.String("username", conf.Basic.Username))
		client.SetCommonBasicAuth(conf.Basic.Username, conf.Basic.Password)
	}

	if conf.AllowInsecure {
		// Skip TLS verification upon request
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})

		log.Warn("!WARNING WARNING WARNING! DISABLED TLS CERTIFICATE VERIFICATION! !WARNING WARNING WARNING!")
	}

	client.SetTimeout(RequestTimeout)
	if conf.Retries > 0 {
		client.SetCommonRetryCount(conf.Retries)
		client.SetCommonRetryBackoffInterval(RequestRetryMinWaitTime, RequestRetryMaxWaitTime)
	}

	log.Info("rest sink created", zap.String("url", conf.URL))
	return &Sink{client: client}
}

// GetClient Use this for tests to set the transport to mock
func (s *Sink) GetClient() *req.Client {
	return s.client
}

func (s *Sink) OnLocationChanged(ctx context.Context, loc location.Location) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(loc).
		Post(LocationsPath + url.PathEscape(loc.Provider))

	return ErrorFromResponse(err, resp)
}

func (s *Sink) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}
