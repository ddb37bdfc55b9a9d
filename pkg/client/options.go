package client

import (
	"fmt"

	"github.com/jesusruizlopez/pusher-java-client/pkg/auth"
	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
)

// LibVersion is reported to the server in the connection URL.
const LibVersion = "0.1.0"

const (
	defaultHost    = "ws.pusherapp.com"
	defaultWsPort  = 80
	defaultWssPort = 443

	// The wire protocol revision spoken over the connection.
	protocolVersion = 5

	clientName = "go-client"
)

// Options configure a Client. The zero value is not usable, construct
// with NewOptions. Setters return the receiver so they can be chained.
type Options struct {
	encrypted  bool
	host       string
	cluster    string
	wsPort     int
	wssPort    int
	authorizer auth.Authorizer
	logger     log.Logger
}

// NewOptions returns options with the production endpoint defaults.
// Connections are encrypted unless SetEncrypted(false) is called.
func NewOptions() *Options {
	return &Options{
		encrypted: true,
		host:      defaultHost,
		wsPort:    defaultWsPort,
		wssPort:   defaultWssPort,
	}
}

// SetEncrypted selects between the ws and wss endpoints.
func (o *Options) SetEncrypted(encrypted bool) *Options {
	o.encrypted = encrypted
	return o
}

// Encrypted reports whether the wss endpoint is used.
func (o *Options) Encrypted() bool {
	return o.encrypted
}

// SetHost overrides the endpoint host. It takes precedence over any
// cluster set before or after.
func (o *Options) SetHost(host string) *Options {
	o.host = host
	return o
}

// Host returns the effective endpoint host.
func (o *Options) Host() string {
	if o.host != defaultHost || o.cluster == "" {
		return o.host
	}
	return fmt.Sprintf("ws-%s.pusher.com", o.cluster)
}

// SetCluster routes the connection to a regional endpoint, for example
// "eu" or "ap1".
func (o *Options) SetCluster(cluster string) *Options {
	o.cluster = cluster
	return o
}

// Cluster returns the configured cluster name, empty for the default.
func (o *Options) Cluster() string {
	return o.cluster
}

// SetWsPort overrides the plaintext port.
func (o *Options) SetWsPort(port int) *Options {
	o.wsPort = port
	return o
}

// WsPort returns the plaintext port.
func (o *Options) WsPort() int {
	return o.wsPort
}

// SetWssPort overrides the TLS port.
func (o *Options) SetWssPort(port int) *Options {
	o.wssPort = port
	return o
}

// WssPort returns the TLS port.
func (o *Options) WssPort() int {
	return o.wssPort
}

// SetAuthorizer installs the authorizer used for private and presence
// subscriptions. It is nil by default.
func (o *Options) SetAuthorizer(authorizer auth.Authorizer) *Options {
	o.authorizer = authorizer
	return o
}

// Authorizer returns the configured authorizer, nil when unset.
func (o *Options) Authorizer() auth.Authorizer {
	return o.authorizer
}

// SetLogger installs a protocol event logger. Without one, protocol
// events are discarded.
func (o *Options) SetLogger(logger log.Logger) *Options {
	o.logger = logger
	return o
}

// Logger returns the configured logger, nil when unset.
func (o *Options) Logger() log.Logger {
	return o.logger
}

// BuildURL assembles the endpoint URL for the given application key.
func (o *Options) BuildURL(apiKey string) string {
	scheme := "wss"
	port := o.wssPort
	if !o.encrypted {
		scheme = "ws"
		port = o.wsPort
	}

	return fmt.Sprintf("%s://%s:%d/app/%s?client=%s&protocol=%d&version=%s",
		scheme, o.Host(), port, apiKey, clientName, protocolVersion, LibVersion)
}
