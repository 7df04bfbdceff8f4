package xrpl

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	XRPLWSAddress           string `envconfig:"XRPL_WS_ADDRESS" required:"true"` //e.g. wss://s.altnet.rippletest.net:51233
	XRPLHandshakeTimeout    int    `envconfig:"XRPL_HANDSHAKE_TIMEOUT" default:"15"` // in seconds
	XRPLRequestTimeout      int    `envconfig:"XRPL_REQUEST_TIMEOUT" default:"30"`   // in seconds
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
