// Package config loads batch validation targets from a YAML file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dockping/dockping/pkg/endpoint"
)

// DefaultEnvFile is loaded by LoadEnv when no file is given; it may be absent
const DefaultEnvFile = ".env"

// File batch validation file
type File struct {
	// Parallel max number of concurrent validations; 0 means all targets at once
	Parallel int `yaml:"parallel"`
	// Timeout default liveness probe timeout
	Timeout string `yaml:"timeout"`
	// Interval re-validation interval; empty means run once
	Interval string   `yaml:"interval"`
	Targets  []Target `yaml:"targets"`
}

// Target single endpoint to validate
type Target struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	Repository string `yaml:"repository"`
	Certs      string `yaml:"certs"`
	// Timeout overrides File.Timeout for this target
	Timeout string `yaml:"timeout"`
}

// Args converts target into validator arguments
func (t Target) Args() endpoint.Args {
	return endpoint.Args{
		Endpoint:   t.Endpoint,
		Repository: t.Repository,
		Certs:      t.Certs,
	}
}

// ProbeTimeout returns the target timeout, falling back to def when unset
func (t Target) ProbeTimeout(def time.Duration) (time.Duration, error) {
	if t.Timeout == "" {
		return def, nil
	}
	timeout, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "target %s: bad timeout", t.Name)
	}
	return timeout, nil
}

// LoadEnv loads dotenv files into the process environment. Without files it
// tries DefaultEnvFile and ignores its absence.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		files = []string{DefaultEnvFile}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Wrap(err, "failed to load env file")
	}
	log.WithField("files", files).Debug("loaded env files")
	return nil
}

// Load reads the YAML file at path, expanding ${VAR} references from the environment
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	log.WithFields(log.Fields{
		"path":    path,
		"targets": len(f.Targets),
	}).Debug("loaded config file")
	return f, nil
}

// Parse decodes and checks config data
func Parse(data []byte) (*File, error) {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to decode yaml")
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) check() error {
	if f.Parallel < 0 {
		return errors.New("parallel must not be negative")
	}
	if len(f.Targets) == 0 {
		return errors.New("no targets defined")
	}
	names := make(map[string]struct{}, len(f.Targets))
	for i, t := range f.Targets {
		if t.Name == "" {
			return fmt.Errorf("target #%d: missing name", i+1)
		}
		if _, ok := names[t.Name]; ok {
			return fmt.Errorf("target %s: duplicate name", t.Name)
		}
		names[t.Name] = struct{}{}
	}
	return nil
}
