package domain

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
)

// Credentials stores the Basic-Auth principal and secret for the Jira
// instance. The password field also accepts a platform API token, which
// Jira treats interchangeably with a password for Basic authentication.
type Credentials struct {
	Username string
	Password string
}

// Validate checks that both parts of the credential pair are present.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required for basic authentication")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required for basic authentication")
	}
	return nil
}

// NewAuthenticatedClient returns an HTTP client whose transport attaches
// a Basic Authorization header to every request. When TLS verification is
// disabled in the configuration, the transport also skips certificate
// checks; that path exists for self-signed test instances only.
//
// The client carries no request timeout of its own. Per-attempt deadlines
// are applied by the caller through the request context.
func NewAuthenticatedClient(config *Config) (*http.Client, error) {
	creds := Credentials{
		Username: config.Username,
		Password: config.Password,
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	base := http.DefaultTransport
	if !config.TLSVerify {
		base = insecureTransport()
	}

	return &http.Client{
		Transport: &authenticatedTransport{
			base:        base,
			credentials: creds,
		},
	}, nil
}

// insecureTransport clones the default transport with certificate
// verification disabled. Constructed once at startup; the client built
// around it is shared for the life of the process.
func insecureTransport() http.RoundTripper {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return transport
}

// authenticatedTransport is an http.RoundTripper that adds the Basic
// Authorization header.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials Credentials
}

// RoundTrip implements http.RoundTripper by adding the Authorization
// header to a clone of the request.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())

	auth := t.credentials.Username + ":" + t.credentials.Password
	encodedAuth := base64.StdEncoding.EncodeToString([]byte(auth))
	clonedReq.Header.Set("Authorization", "Basic "+encodedAuth)

	return t.base.RoundTrip(clonedReq)
}
