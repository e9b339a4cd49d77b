package endpoint

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DialTimeout bounds TCP connect to the daemon
const DialTimeout = 30 * time.Second

// dockerHost converts http(s)://host:port into the tcp:// form expected by the docker client
func dockerHost(u *url.URL) string {
	return (&url.URL{Scheme: "tcp", Host: u.Host, Path: u.Path}).String()
}

// httpClient creates http client used to reach the docker daemon;
// a nil tlsConfig produces a plain http transport
func httpClient(tlsConfig *tls.Config, timeout time.Duration) *http.Client {
	httpTransport := &http.Transport{
		TLSClientConfig: tlsConfig,
		Proxy:           http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, network, addr) //nolint:wrapcheck
		},
	}
	return &http.Client{Transport: httpTransport}
}
