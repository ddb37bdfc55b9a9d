package client

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jesusruizlopez/pusher-java-client/pkg/auth"
)

// FileConfig is the YAML shape accepted by LoadOptions. All fields are
// optional; absent fields keep their defaults.
type FileConfig struct {
	APIKey    string `yaml:"api_key"`
	Encrypted *bool  `yaml:"encrypted"`
	Cluster   string `yaml:"cluster"`
	Host      string `yaml:"host"`
	WsPort    int    `yaml:"ws_port"`
	WssPort   int    `yaml:"wss_port"`

	Auth struct {
		Endpoint string            `yaml:"endpoint"`
		Headers  map[string]string `yaml:"headers"`
		Params   map[string]string `yaml:"params"`
	} `yaml:"auth"`
}

// LoadOptions reads a YAML config file and converts it into Options
// plus the application key it names. An auth endpoint in the file is
// turned into an HTTP authorizer.
func LoadOptions(path string) (string, *Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return "", nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	options := NewOptions()
	if fc.Encrypted != nil {
		options.SetEncrypted(*fc.Encrypted)
	}
	if fc.Cluster != "" {
		options.SetCluster(fc.Cluster)
	}
	if fc.Host != "" {
		options.SetHost(fc.Host)
	}
	if fc.WsPort != 0 {
		options.SetWsPort(fc.WsPort)
	}
	if fc.WssPort != 0 {
		options.SetWssPort(fc.WssPort)
	}

	if fc.Auth.Endpoint != "" {
		authorizer := auth.NewHTTPAuthorizer(fc.Auth.Endpoint)
		for name, value := range fc.Auth.Headers {
			authorizer.SetHeader(name, value)
		}
		for name, value := range fc.Auth.Params {
			authorizer.SetParam(name, value)
		}
		options.SetAuthorizer(authorizer)
	}

	return fc.APIKey, options, nil
}
