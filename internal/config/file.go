package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration overlay. Any value left unset in
// the file falls back to the environment-variable defaults.
type File struct {
	Listen struct {
		Port string `yaml:"port"`
	} `yaml:"listen"`
	AppName  string `yaml:"app_name"`
	Env      string `yaml:"env"`
	Upstream struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"upstream"`
	Cors struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
	Cookies struct {
		Secure *bool `yaml:"secure"`
	} `yaml:"cookies"`
}

// LoadFile reads a YAML configuration file and returns a Config that prefers
// file values over environment variables.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return fileConfig{file: f}, nil
}

type fileConfig struct {
	mainConfig
	file File
}

var _ Config = fileConfig{}

func (c fileConfig) GetPort() string {
	if c.file.Listen.Port != "" {
		port := c.file.Listen.Port
		if port[0] != ':' {
			port = ":" + port
		}
		return port
	}
	return c.mainConfig.GetPort()
}

func (c fileConfig) GetAppName() string {
	if c.file.AppName != "" {
		return c.file.AppName
	}
	return c.mainConfig.GetAppName()
}

func (c fileConfig) GetEnv() string {
	if c.file.Env != "" {
		return c.file.Env
	}
	return c.mainConfig.GetEnv()
}

func (c fileConfig) GetUpstreamBaseURL() string {
	if c.file.Upstream.BaseURL != "" {
		return c.file.Upstream.BaseURL
	}
	return c.mainConfig.GetUpstreamBaseURL()
}

func (c fileConfig) GetUpstreamTimeout() time.Duration {
	if c.file.Upstream.TimeoutSeconds > 0 {
		return time.Duration(c.file.Upstream.TimeoutSeconds) * time.Second
	}
	return c.mainConfig.GetUpstreamTimeout()
}

func (c fileConfig) GetAllowedOrigins() AllowedOrigins {
	if len(c.file.Cors.Origins) > 0 {
		origins := AllowedOrigins{}
		for _, origin := range c.file.Cors.Origins {
			origins[origin] = nullValue{}
		}
		return origins
	}
	return c.mainConfig.GetAllowedOrigins()
}

func (c fileConfig) GetCookieSecure() bool {
	if c.file.Cookies.Secure != nil {
		return *c.file.Cookies.Secure
	}
	return c.mainConfig.GetCookieSecure()
}
