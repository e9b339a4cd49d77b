package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/dockping/dockping/pkg/action"
	"github.com/dockping/dockping/pkg/config"
	"github.com/dockping/dockping/pkg/endpoint"
	"github.com/dockping/dockping/pkg/util"
)

type commandContext struct {
	context context.Context
	// options applied to every validator the command creates
	validatorOpts []endpoint.Option
}

// newCheckCommand initialize CLI check command
func newCheckCommand(ctx context.Context, rootCertPath string, opts ...endpoint.Option) *cli.Command {
	cmdContext := &commandContext{context: ctx, validatorOpts: opts}
	return &cli.Command{
		Name: "check",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   "endpoint, e",
				Usage:  "Docker daemon URL; http:// or https://",
				EnvVar: "DOCKPING_ENDPOINT",
			},
			cli.StringFlag{
				Name:   "repository, r",
				Usage:  "repository name; letters and digits only",
				EnvVar: "DOCKPING_REPOSITORY",
			},
			cli.StringFlag{
				Name:  "certs, c",
				Usage: "directory with key.pem, cert.pem and ca.pem; used with https endpoints only",
				Value: rootCertPath,
			},
		},
		Usage:       "validate a single Docker endpoint",
		Description: "check endpoint URL and repository name, TLS certificates for https endpoints, then ping the daemon",
		Action:      cmdContext.check,
	}
}

// newBatchCommand initialize CLI batch command
func newBatchCommand(ctx context.Context, opts ...endpoint.Option) *cli.Command {
	cmdContext := &commandContext{context: ctx, validatorOpts: opts}
	return &cli.Command{
		Name: "batch",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config, f",
				Usage: "YAML file with targets",
				Value: "dockping.yaml",
			},
			cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv file used to expand ${VAR} in config file (default .env when present)",
			},
			cli.StringFlag{
				Name:  "interval, i",
				Usage: "re-validate on this interval until interrupted; overrides config file; use with optional unit suffix: 'ms/s/m/h'",
			},
			cli.IntFlag{
				Name:  "parallel, p",
				Usage: "max concurrent validations; overrides config file (0: all targets at once)",
				Value: -1,
			},
		},
		Usage:       "validate Docker endpoints listed in a config file",
		Description: "validate every target of the config file concurrently and report each result",
		Action:      cmdContext.batch,
	}
}

// CHECK command
func (cmd *commandContext) check(c *cli.Context) error {
	timeout, err := util.GetTimeoutValue(c.GlobalString("timeout"), 0)
	if err != nil {
		return err
	}
	args := endpoint.Args{
		Endpoint:   c.String("endpoint"),
		Repository: c.String("repository"),
		Certs:      c.String("certs"),
	}
	v := endpoint.NewValidator(append(cmd.validatorOpts, endpoint.WithTimeout(timeout))...)
	client, err := v.Validate(cmd.context, args)
	if err != nil {
		log.WithError(err).WithField("kind", endpoint.KindOf(err).String()).Error("endpoint validation failed")
		return err
	}
	defer client.Close()
	res := action.Result{Target: args.Endpoint, Endpoint: args.Endpoint, Repository: client.Repository()}
	if version, err := client.Version(cmd.context); err == nil {
		res.Version = version.Version
		res.APIVersion = version.APIVersion
	} else {
		log.WithError(err).Debug("failed to get docker version")
	}
	printResult(c.App.Writer, res)
	return nil
}

// BATCH command
func (cmd *commandContext) batch(c *cli.Context) error {
	if err := config.LoadEnv(c.StringSlice("env-file")...); err != nil {
		return err
	}
	file, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	intervalStr := file.Interval
	if c.IsSet("interval") {
		intervalStr = c.String("interval")
	}
	interval, err := util.GetIntervalValue(intervalStr)
	if err != nil {
		return err
	}
	timeoutStr := file.Timeout
	if c.GlobalIsSet("timeout") {
		timeoutStr = c.GlobalString("timeout")
	}
	timeout, err := util.GetTimeoutValue(timeoutStr, interval)
	if err != nil {
		return err
	}
	parallel := file.Parallel
	if p := c.Int("parallel"); p >= 0 {
		parallel = p
	}
	opts := action.Options{Parallel: parallel, Timeout: timeout, Interval: interval}
	v := endpoint.NewValidator(cmd.validatorOpts...)

	var failed, total int
	err = action.Watch(cmd.context, v, file.Targets, opts, func(results []action.Result) {
		fmt.Fprintf(c.App.Writer, "# %s\n", time.Now().Format(time.RFC3339))
		for _, r := range results {
			printResult(c.App.Writer, r)
		}
		failed, total = action.Failed(results), len(results)
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d of %d targets failed", failed, total)
	}
	return nil
}

func printResult(w io.Writer, r action.Result) {
	if r.OK() {
		fmt.Fprintf(w, "%s\tOK\trepository=%s version=%s api=%s\n", r.Target, r.Repository, r.Version, r.APIVersion)
		return
	}
	fmt.Fprintf(w, "%s\tFAIL\t%s (%v)\n", r.Target, endpoint.KindOf(r.Err).String(), r.Err)
}
