package util

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// IsAlphanumeric checks that s is a non-empty string of ASCII letters and digits
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// GetIntervalValue get interval value from string duration
func GetIntervalValue(interval string) (time.Duration, error) {
	// get recurrent time interval
	if interval == "" {
		log.Debug("no interval specified, running only once")
		return 0, nil
	} else if i, err := time.ParseDuration(interval); err == nil {
		log.WithField("interval", interval).Debug("setting validation interval")
		return i, nil
	} else {
		log.WithError(err).WithField("interval", interval).Error("failed to parse interval")
		return 0, err
	}
}

// GetTimeoutValue get probe timeout and make sure it's shorter than interval
func GetTimeoutValue(timeoutStr string, interval time.Duration) (time.Duration, error) {
	if timeoutStr == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.WithError(err).WithField("timeout", timeoutStr).Error("failed to parse timeout")
		return 0, err
	}
	if timeout < 0 {
		log.WithField("timeout", timeoutStr).Error("negative timeout")
		return 0, errors.New("timeout must not be negative")
	}
	if interval != 0 && timeout >= interval {
		log.Error("timeout must be shorter than interval")
		return 0, errors.New("timeout must be shorter than interval")
	}
	return timeout, nil
}
