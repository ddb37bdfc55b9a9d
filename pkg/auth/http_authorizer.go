package auth

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single authorization request.
const DefaultTimeout = 30 * time.Second

// HTTPAuthorizer authorizes restricted channel subscriptions by POSTing a
// form-encoded request to an application endpoint.
//
// The request body carries channel_name and socket_id plus any configured
// extra parameters. The endpoint must answer 200 with a JSON body holding
// "auth" and, for presence channels, "channel_data".
type HTTPAuthorizer struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
	params   url.Values
}

// NewHTTPAuthorizer creates an authorizer for the given endpoint URL.
func NewHTTPAuthorizer(endpoint string) *HTTPAuthorizer {
	return &HTTPAuthorizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		headers:  make(map[string]string),
		params:   make(url.Values),
	}
}

// SetHTTPClient replaces the underlying HTTP client.
// Useful for custom timeouts or transports.
func (a *HTTPAuthorizer) SetHTTPClient(client *http.Client) *HTTPAuthorizer {
	a.client = client
	return a
}

// SetHeader adds a header sent with every authorization request.
func (a *HTTPAuthorizer) SetHeader(name, value string) *HTTPAuthorizer {
	a.headers[name] = value
	return a
}

// SetParam adds a form parameter sent with every authorization request.
func (a *HTTPAuthorizer) SetParam(name, value string) *HTTPAuthorizer {
	a.params.Set(name, value)
	return a
}

// Authorize POSTs the channel name and socket ID to the endpoint and returns
// the raw response body. Any transport failure or non-200 status is reported
// as ErrAuthorizationFailed.
func (a *HTTPAuthorizer) Authorize(channel, socketID string) (string, error) {
	form := url.Values{}
	for name, values := range a.params {
		form[name] = values
	}
	form.Set("channel_name", channel)
	form.Set("socket_id", socketID)

	req, err := http.NewRequest(http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for name, value := range a.headers {
		req.Header.Set(name, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrAuthorizationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: endpoint returned status %d", ErrAuthorizationFailed, resp.StatusCode)
	}

	return string(body), nil
}

// Compile-time interface satisfaction check.
var _ Authorizer = (*HTTPAuthorizer)(nil)
