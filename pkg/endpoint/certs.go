package endpoint

import (
	"os"
	"path/filepath"

	"github.com/docker/go-connections/tlsconfig"
)

// fixed certificate file names expected inside a certs directory
const (
	KeyFile  = "key.pem"
	CertFile = "cert.pem"
	CAFile   = "ca.pem"
)

// Bundle holds the paths of the TLS material used to reach a secure daemon
type Bundle struct {
	Key  string
	Cert string
	CA   string
}

// ResolveCertificateBundle joins certsDir with the fixed file names.
// It does not touch the filesystem.
func ResolveCertificateBundle(certsDir string) Bundle {
	return Bundle{
		Key:  filepath.Join(certsDir, KeyFile),
		Cert: filepath.Join(certsDir, CertFile),
		CA:   filepath.Join(certsDir, CAFile),
	}
}

// check verifies the bundle files exist in key, cert, ca order
func (b Bundle) check() *Error {
	if !fileExists(b.Key) {
		return newError(MissingKeyCertificate, nil)
	}
	if !fileExists(b.Cert) {
		return newError(MissingCertCertificate, nil)
	}
	if !fileExists(b.CA) {
		return newError(MissingCaCertificate, nil)
	}
	return nil
}

// tlsOptions convert bundle into options for the go-connections TLS helper
func (b Bundle) tlsOptions() tlsconfig.Options {
	return tlsconfig.Options{
		CAFile:   b.CA,
		CertFile: b.Cert,
		KeyFile:  b.Key,
	}
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
