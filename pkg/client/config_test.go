package client

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pusher.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadOptionsFull(t *testing.T) {
	path := writeConfig(t, `
api_key: 4PI_K3Y
encrypted: false
host: subdomain.example.com
ws_port: 8080
wss_port: 8181
auth:
  endpoint: https://example.com/pusher/auth
  headers:
    Authorization: Bearer token
  params:
    tenant: acme
`)

	apiKey, options, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if apiKey != "4PI_K3Y" {
		t.Errorf("api key = %q, want %q", apiKey, "4PI_K3Y")
	}
	if options.Encrypted() {
		t.Error("Encrypted() = true, want false")
	}
	if got := options.Host(); got != "subdomain.example.com" {
		t.Errorf("Host() = %q, want %q", got, "subdomain.example.com")
	}
	if options.WsPort() != 8080 || options.WssPort() != 8181 {
		t.Errorf("ports = %d/%d, want 8080/8181", options.WsPort(), options.WssPort())
	}
	if options.Authorizer() == nil {
		t.Error("Authorizer() = nil, want HTTP authorizer from auth endpoint")
	}

	want := "ws://subdomain.example.com:8080/app/4PI_K3Y?client=go-client&protocol=5&version=" + LibVersion
	if got := options.BuildURL(apiKey); got != want {
		t.Errorf("BuildURL() = %q, want %q", got, want)
	}
}

func TestLoadOptionsMinimal(t *testing.T) {
	path := writeConfig(t, "api_key: k3y\n")

	apiKey, options, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if apiKey != "k3y" {
		t.Errorf("api key = %q, want %q", apiKey, "k3y")
	}
	if !options.Encrypted() {
		t.Error("Encrypted() = false, want true by default")
	}
	if options.Authorizer() != nil {
		t.Error("Authorizer() != nil without auth endpoint")
	}
	if got := options.Host(); got != "ws.pusherapp.com" {
		t.Errorf("Host() = %q, want default host", got)
	}
}

func TestLoadOptionsCluster(t *testing.T) {
	path := writeConfig(t, "api_key: k3y\ncluster: eu\n")

	_, options, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if got := options.Host(); got != "ws-eu.pusher.com" {
		t.Errorf("Host() = %q, want cluster host", got)
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	if _, _, err := LoadOptions(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadOptions(missing) error = nil, want failure")
	}
}

func TestLoadOptionsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "api_key: [unclosed\n")
	if _, _, err := LoadOptions(path); err == nil {
		t.Error("LoadOptions(malformed) error = nil, want failure")
	}
}
