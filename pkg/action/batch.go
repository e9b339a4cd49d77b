package action

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dockping/dockping/pkg/config"
	"github.com/dockping/dockping/pkg/endpoint"
)

// Options batch run options
type Options struct {
	// Parallel max concurrent validations; 0 or less means one goroutine per target
	Parallel int
	// Timeout default liveness probe timeout for targets without their own
	Timeout time.Duration
	// Interval between validation rounds in Watch; 0 runs a single round
	Interval time.Duration
}

// Result outcome of a single target validation
type Result struct {
	Target     string
	Endpoint   string
	Repository string
	// Version and APIVersion are reported by the daemon when it is reachable
	Version    string
	APIVersion string
	Duration   time.Duration
	Err        error
}

// OK returns true when the target passed validation
func (r Result) OK() bool {
	return r.Err == nil
}

// Run validates all targets concurrently and returns results in target order.
// A failed target never stops the others.
func Run(ctx context.Context, v *endpoint.Validator, targets []config.Target, opts Options) []Result {
	results := make([]Result, len(targets))
	var g errgroup.Group
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			results[i] = validateTarget(ctx, v, target, opts.Timeout)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func validateTarget(ctx context.Context, v *endpoint.Validator, target config.Target, defTimeout time.Duration) Result {
	res := Result{Target: target.Name, Endpoint: target.Endpoint, Repository: target.Repository}
	logger := log.WithFields(log.Fields{
		"target":     target.Name,
		"endpoint":   target.Endpoint,
		"repository": target.Repository,
	})
	timeout, err := target.ProbeTimeout(defTimeout)
	if err != nil {
		res.Err = err
		return res
	}
	tv := *v
	tv.Timeout = timeout

	start := time.Now()
	client, err := tv.Validate(ctx, target.Args())
	res.Duration = time.Since(start)
	if err != nil {
		logger.WithError(err).WithField("kind", endpoint.KindOf(err).String()).Warn("validation failed")
		res.Err = err
		return res
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logger.WithError(cerr).Debug("failed to close docker client")
		}
	}()
	// version is informational, the target already answered the ping
	version, err := client.Version(ctx)
	if err != nil {
		logger.WithError(err).Debug("failed to get docker version")
	} else {
		res.Version = version.Version
		res.APIVersion = version.APIVersion
	}
	logger.WithField("duration", res.Duration).Info("docker endpoint is valid")
	return res
}

// Failed counts failed results
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// Watch runs validation rounds every opts.Interval until ctx is done, passing
// each round results to report. With zero interval it runs a single round.
func Watch(ctx context.Context, v *endpoint.Validator, targets []config.Target, opts Options, report func([]Result)) error {
	var tick <-chan time.Time
	if opts.Interval > 0 {
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		report(Run(ctx, v, targets, opts))
		if opts.Interval <= 0 || ctx.Err() != nil {
			return nil
		}
		// wait for next timer tick or cancel
		select {
		case <-ctx.Done():
			return nil // not to leak the goroutine
		case <-tick:
			log.Debug("next validation round (tick) ...")
		}
	}
}
