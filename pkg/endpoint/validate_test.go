package endpoint

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dockping/dockping/mocks"
)

type connectCall struct {
	host string
	tls  bool
}

// mockConnector returns engine for every call and records the requested hosts
func mockConnector(engine EngineAPI, calls *[]connectCall) Connector {
	return func(host string, httpClient *http.Client) (EngineAPI, error) {
		tr, _ := httpClient.Transport.(*http.Transport)
		*calls = append(*calls, connectCall{host: host, tls: tr != nil && tr.TLSClientConfig != nil})
		return engine, nil
	}
}

func failingConnector(t *testing.T) Connector {
	return func(host string, _ *http.Client) (EngineAPI, error) {
		t.Fatalf("connector must not be called, got host %s", host)
		return nil, nil
	}
}

func TestValidate_InvalidEndpoint(t *testing.T) {
	endpoints := []string{
		"",
		"not-a-url",
		"ftp://host",
		"tcp://10.0.0.1:2375",
		"unix:///var/run/docker.sock",
		"10.0.0.1:2375",
		"http://",
		"https:///path",
		"http://10.0.0.1:port",
	}
	v := NewValidator(WithConnector(failingConnector(t)))
	for _, ep := range endpoints {
		t.Run(ep, func(t *testing.T) {
			client, err := v.Validate(context.TODO(), Args{Endpoint: ep, Repository: "my-repo", Certs: "/nowhere"})
			assert.Nil(t, client)
			assert.True(t, errors.Is(err, InvalidEndpoint), "got %v", err)
		})
	}
}

func TestValidate_InvalidRepository(t *testing.T) {
	repositories := []string{"", "my-repo", "repo name", "library/redis", "repo.1", "rep@"}
	v := NewValidator(WithConnector(failingConnector(t)))
	for _, repo := range repositories {
		t.Run(repo, func(t *testing.T) {
			client, err := v.Validate(context.TODO(), Args{Endpoint: "https://10.0.0.1:2376", Repository: repo})
			assert.Nil(t, client)
			assert.Equal(t, InvalidRepository, KindOf(err))
		})
	}
}

func TestValidate_InvalidCertsPath(t *testing.T) {
	dir := t.TempDir()
	writeFakeCerts(t, dir, KeyFile)
	tests := []struct {
		name  string
		certs string
	}{
		{"empty", ""},
		{"missing dir", filepath.Join(dir, "missing")},
		{"file instead of dir", filepath.Join(dir, KeyFile)},
	}
	v := NewValidator(WithConnector(failingConnector(t)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := v.Validate(context.TODO(), Args{Endpoint: "https://10.0.0.1:2376", Repository: "myrepo", Certs: tt.certs})
			assert.Nil(t, client)
			assert.Equal(t, InvalidCertsPath, KindOf(err))
		})
	}
}

func TestValidate_MissingCertificates(t *testing.T) {
	tests := []struct {
		name    string
		present []string
		want    Kind
	}{
		{"key missing", []string{CertFile, CAFile}, MissingKeyCertificate},
		{"cert missing", []string{KeyFile, CAFile}, MissingCertCertificate},
		{"ca missing", []string{KeyFile, CertFile}, MissingCaCertificate},
		{"nothing", nil, MissingKeyCertificate},
	}
	v := NewValidator(WithConnector(failingConnector(t)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFakeCerts(t, dir, tt.present...)
			client, err := v.Validate(context.TODO(), Args{Endpoint: "https://10.0.0.1:2376", Repository: "myrepo", Certs: dir})
			assert.Nil(t, client)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestValidate_InsecureSkipsCertificates(t *testing.T) {
	engine := mocks.NewEngineAPI()
	engine.On("Ping", mock.Anything).Return(types.Ping{APIVersion: "1.42"}, nil)
	var calls []connectCall
	v := NewValidator(WithConnector(mockConnector(engine, &calls)))

	for _, certs := range []string{"", "/definitely/not/here", t.TempDir()} {
		client, err := v.Validate(context.TODO(), Args{Endpoint: "http://10.0.0.1:2375", Repository: "myrepo", Certs: certs})
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "myrepo", client.Repository())
		assert.Equal(t, "http://10.0.0.1:2375", client.Endpoint())
	}
	require.Len(t, calls, 3)
	for _, call := range calls {
		assert.Equal(t, connectCall{host: "tcp://10.0.0.1:2375", tls: false}, call)
	}
	engine.AssertNumberOfCalls(t, "Ping", 3)
}

func TestValidate_SecureSuccess(t *testing.T) {
	dir := t.TempDir()
	writeCerts(t, dir)
	engine := mocks.NewEngineAPI()
	engine.On("Ping", mock.Anything).Return(types.Ping{APIVersion: "1.42"}, nil)
	var calls []connectCall
	v := NewValidator(WithConnector(mockConnector(engine, &calls)))

	client, err := v.Validate(context.TODO(), Args{Endpoint: "https://10.0.0.1:2376", Repository: "myrepo", Certs: dir})

	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "myrepo", client.Repository())
	assert.Same(t, engine, client.Engine())
	assert.Equal(t, []connectCall{{host: "tcp://10.0.0.1:2376", tls: true}}, calls)
	engine.AssertExpectations(t)
}

func TestValidate_SecureBadCertificates(t *testing.T) {
	dir := t.TempDir()
	writeFakeCerts(t, dir, KeyFile, CertFile, CAFile)
	v := NewValidator(WithConnector(failingConnector(t)))

	client, err := v.Validate(context.TODO(), Args{Endpoint: "https://10.0.0.1:2376", Repository: "myrepo", Certs: dir})

	assert.Nil(t, client)
	assert.Equal(t, ConstructionFailure, KindOf(err))
}

func TestValidate_ConnectorError(t *testing.T) {
	connect := func(string, *http.Client) (EngineAPI, error) {
		return nil, errors.New("boom")
	}
	v := NewValidator(WithConnector(connect))

	client, err := v.Validate(context.TODO(), Args{Endpoint: "http://10.0.0.1:2375", Repository: "myrepo"})

	assert.Nil(t, client)
	assert.Equal(t, ConstructionFailure, KindOf(err))
	assert.EqualError(t, err, "failed to create docker client: boom")
}

func TestValidate_APINotResponding(t *testing.T) {
	engine := mocks.NewEngineAPI()
	engine.On("Ping", mock.Anything).Return(types.Ping{}, errors.New("connection refused"))
	engine.On("Close").Return(nil)
	var calls []connectCall
	v := NewValidator(WithConnector(mockConnector(engine, &calls)))

	client, err := v.Validate(context.TODO(), Args{Endpoint: "http://10.0.0.1:2375", Repository: "myrepo"})

	assert.Nil(t, client)
	assert.Equal(t, APINotResponding, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	engine.AssertExpectations(t)
}

func TestValidate_PingTimeout(t *testing.T) {
	engine := mocks.NewEngineAPI()
	engine.On("Ping", mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "ping context must carry deadline")
			<-ctx.Done()
		}).
		Return(types.Ping{}, context.DeadlineExceeded)
	engine.On("Close").Return(nil)
	var calls []connectCall
	v := NewValidator(WithTimeout(20*time.Millisecond), WithConnector(mockConnector(engine, &calls)))

	client, err := v.Validate(context.TODO(), Args{Endpoint: "http://10.0.0.1:2375", Repository: "myrepo"})

	assert.Nil(t, client)
	assert.Equal(t, APINotResponding, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	engine.AssertExpectations(t)
}

func TestValidate_NoTimeoutByDefault(t *testing.T) {
	engine := mocks.NewEngineAPI()
	engine.On("Ping", mock.Anything).
		Run(func(args mock.Arguments) {
			_, ok := args.Get(0).(context.Context).Deadline()
			assert.False(t, ok, "ping context must not carry deadline")
		}).
		Return(types.Ping{}, nil)
	var calls []connectCall
	v := NewValidator(WithConnector(mockConnector(engine, &calls)))

	_, err := v.Validate(context.TODO(), Args{Endpoint: "http://10.0.0.1:2375", Repository: "myrepo"})

	require.NoError(t, err)
	assert.Zero(t, v.Timeout)
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		ok       bool
		scheme   string
	}{
		{"http://10.0.0.1:2375", true, "http"},
		{"https://docker.example.com:2376", true, "https"},
		{"http://localhost", true, "http"},
		{"https://[::1]:2376", true, "https"},
		{"HTTP://10.0.0.1:2375", true, "http"},
		{"ftp://host", false, ""},
		{"not-a-url", false, ""},
		{"http://", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			u, ok := parseEndpoint(tt.endpoint)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.scheme, u.Scheme)
			}
		})
	}
}
