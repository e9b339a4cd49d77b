package endpoint

import (
	"context"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dockping/dockping/pkg/util"
)

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

// Args connection parameters to validate
type Args struct {
	Endpoint   string
	Repository string
	// Certs directory with key.pem, cert.pem and ca.pem; used only for https endpoints
	Certs string
}

// Validator checks connection parameters and produces a live Client
type Validator struct {
	// Timeout bounds the liveness probe; zero waits for a single definitive response
	Timeout     time.Duration
	dialTimeout time.Duration
	connect     Connector
}

// Option configures a Validator
type Option func(*Validator)

// WithTimeout sets liveness probe timeout
func WithTimeout(timeout time.Duration) Option {
	return func(v *Validator) {
		v.Timeout = timeout
	}
}

// WithDialTimeout sets TCP connect timeout used by the transport
func WithDialTimeout(timeout time.Duration) Option {
	return func(v *Validator) {
		v.dialTimeout = timeout
	}
}

// WithConnector replaces the function used to create the engine client
func WithConnector(connect Connector) Option {
	return func(v *Validator) {
		v.connect = connect
	}
}

// NewValidator creates Validator with default docker connector
func NewValidator(opts ...Option) *Validator {
	v := &Validator{dialTimeout: DialTimeout, connect: NewEngine}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks args with the default Validator
func Validate(ctx context.Context, args Args) (*Client, error) {
	return NewValidator().Validate(ctx, args)
}

// Validate checks args in order and returns the first failure; on success
// the returned Client has answered a ping.
func (v *Validator) Validate(ctx context.Context, args Args) (*Client, error) {
	logger := log.WithFields(log.Fields{
		"endpoint":   args.Endpoint,
		"repository": args.Repository,
	})
	u, ok := parseEndpoint(args.Endpoint)
	if !ok {
		logger.Debug("invalid endpoint")
		return nil, newError(InvalidEndpoint, nil)
	}
	if !util.IsAlphanumeric(args.Repository) {
		logger.Debug("invalid repository")
		return nil, newError(InvalidRepository, nil)
	}
	// certificates are checked for https only, even if a certs path was given
	if u.Scheme == schemeHTTPS {
		logger = logger.WithField("certs", args.Certs)
		if !dirExists(args.Certs) {
			logger.Debug("invalid certs path")
			return nil, newError(InvalidCertsPath, nil)
		}
		if err := ResolveCertificateBundle(args.Certs).check(); err != nil {
			logger.WithField("kind", err.Kind.String()).Debug("missing certificate")
			return nil, err
		}
	}
	client, err := v.ResolveClient(args.Endpoint, args.Certs, args.Repository)
	if err != nil {
		logger.WithError(err).Debug("failed to build client")
		return nil, err
	}
	pingCtx := ctx
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}
	if err = client.Ping(pingCtx); err != nil {
		logger.WithError(err).Debug("docker API not responding")
		if cerr := client.Close(); cerr != nil {
			logger.WithError(cerr).Debug("failed to close docker client")
		}
		return nil, newError(APINotResponding, err)
	}
	logger.Debug("docker API is responding")
	return client, nil
}

// parseEndpoint accepts absolute http/https URLs with a host
func parseEndpoint(endpoint string) (*url.URL, bool) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, false
	}
	if u.Scheme != schemeHTTP && u.Scheme != schemeHTTPS {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}
