package endpoint

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"

	"github.com/docker/docker/api/types"
	dockerapi "github.com/docker/docker/client"
	"github.com/docker/go-connections/tlsconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// EngineAPI is the part of the docker engine API a Client needs
type EngineAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ServerVersion(ctx context.Context) (types.Version, error)
	Close() error
}

// Connector creates an EngineAPI for a docker host (tcp://host:port) using the given http client
type Connector func(host string, httpClient *http.Client) (EngineAPI, error)

// NewEngine is the default Connector backed by the docker client library
func NewEngine(host string, httpClient *http.Client) (EngineAPI, error) {
	apiClient, err := dockerapi.NewClientWithOpts(
		dockerapi.WithHost(host),
		dockerapi.WithHTTPClient(httpClient),
		dockerapi.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	return apiClient, nil
}

// Client is a docker engine handle bound to a repository
type Client struct {
	engine     EngineAPI
	endpoint   string
	repository string
}

// Engine returns the underlying engine API; with the default Connector it is a *client.Client
func (c *Client) Engine() EngineAPI {
	return c.engine
}

// Endpoint returns the daemon URL the client was built for
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Repository returns the repository the client is tagged with
func (c *Client) Repository() string {
	return c.repository
}

// Ping sends liveness probe to the daemon
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.engine.Ping(ctx); err != nil {
		return errors.Wrap(err, "failed to ping docker daemon")
	}
	return nil
}

// Version returns daemon version information
func (c *Client) Version(ctx context.Context) (types.Version, error) {
	v, err := c.engine.ServerVersion(ctx)
	if err != nil {
		return types.Version{}, errors.Wrap(err, "failed to get docker daemon version")
	}
	return v, nil
}

// Close releases resources held by the engine client
func (c *Client) Close() error {
	return c.engine.Close()
}

// ResolveClient builds a Client for endpoint using the certificates in certsDir when the
// endpoint scheme is https. It does not check that the daemon is reachable.
func ResolveClient(endpoint, certsDir, repository string) (*Client, error) {
	return NewValidator().ResolveClient(endpoint, certsDir, repository)
}

// ResolveClient builds a Client with the validator connector; see ResolveClient
func (v *Validator) ResolveClient(endpoint, certsDir, repository string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, newError(ConstructionFailure, errors.Wrap(err, "failed to parse docker daemon url"))
	}
	var tlsCfg *tls.Config
	if u.Scheme == "https" {
		tlsCfg, err = tlsconfig.Client(ResolveCertificateBundle(certsDir).tlsOptions())
		if err != nil {
			return nil, newError(ConstructionFailure, errors.Wrap(err, "failed to load TLS certificates"))
		}
	}
	host := dockerHost(u)
	log.WithFields(log.Fields{
		"host": host,
		"tls":  tlsCfg != nil,
	}).Debug("creating docker client")
	engine, err := v.connect(host, httpClient(tlsCfg, v.dialTimeout))
	if err != nil {
		return nil, newError(ConstructionFailure, err)
	}
	return &Client{engine: engine, endpoint: endpoint, repository: repository}, nil
}
