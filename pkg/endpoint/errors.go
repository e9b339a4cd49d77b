package endpoint

import (
	"errors"
	"fmt"
)

// Kind classifies a validation failure
type Kind int

const (
	// Unknown is returned by KindOf for errors not produced by this package
	Unknown Kind = iota
	// InvalidEndpoint endpoint is not a valid http/https URL
	InvalidEndpoint
	// InvalidRepository repository name is not alphanumeric
	InvalidRepository
	// InvalidCertsPath certs directory is missing (https endpoints only)
	InvalidCertsPath
	// MissingKeyCertificate key.pem is absent from the certs directory
	MissingKeyCertificate
	// MissingCertCertificate cert.pem is absent from the certs directory
	MissingCertCertificate
	// MissingCaCertificate ca.pem is absent from the certs directory
	MissingCaCertificate
	// APINotResponding liveness probe failed
	APINotResponding
	// ConstructionFailure the docker client could not be built
	ConstructionFailure
)

var kindMessages = map[Kind]string{
	Unknown:                "unknown error",
	InvalidEndpoint:        "Please specify a valid Docker endpoint.",
	InvalidRepository:      "Please specify a valid Docker repository.",
	InvalidCertsPath:       "Please specify a valid Docker certs path.",
	MissingKeyCertificate:  "key.pem is missing.",
	MissingCertCertificate: "cert.pem is missing.",
	MissingCaCertificate:   "ca.pem is missing.",
	APINotResponding:       "Docker API not responding.",
	ConstructionFailure:    "failed to create docker client",
}

var kindNames = map[Kind]string{
	Unknown:                "Unknown",
	InvalidEndpoint:        "InvalidEndpoint",
	InvalidRepository:      "InvalidRepository",
	InvalidCertsPath:       "InvalidCertsPath",
	MissingKeyCertificate:  "MissingKeyCertificate",
	MissingCertCertificate: "MissingCertCertificate",
	MissingCaCertificate:   "MissingCaCertificate",
	APINotResponding:       "APINotResponding",
	ConstructionFailure:    "ConstructionFailure",
}

// String returns kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error returns the fixed human readable message of the kind, so a Kind can be
// used as an errors.Is target
func (k Kind) Error() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return k.String()
}

// Error is returned by Validate and ResolveClient. Every call builds its own
// value; Err holds the underlying cause, if any.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.Error(), e.Err)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a Kind or another *Error of the same kind
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind
	}
	return false
}

// KindOf returns the kind of err, or Unknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
