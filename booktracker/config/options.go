package config

import (
	"go.uber.org/zap/zapcore"
)

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithRoute(route string) Option {
	return func(c *Config) {
		if route != "" {
			c.Route = route
		}
	}
}

func WithAPIURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.API.URL = url
		}
	}
}

func WithFakeServerPort(port string) Option {
	return func(c *Config) {
		if port != "" {
			c.FakeHTTPServer.Port = port
		}
	}
}
