package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johntdyer/slackrus"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/dockping/dockping/pkg/logger"
)

var (
	topContext context.Context
)

var (
	// Version that is passed on compile time through -ldflags
	Version = "built locally"

	// GitCommit that is passed on compile time through -ldflags
	GitCommit = "none"

	// GitBranch that is passed on compile time through -ldflags
	GitBranch = "none"

	// BuildTime that is passed on compile time through -ldflags
	BuildTime = "none"

	// HumanVersion is a human readable app version
	HumanVersion = fmt.Sprintf("%s - %.7s (%s) %s", Version, GitCommit, GitBranch, BuildTime)
)

const appName = "dockping"

func init() {
	// set log level
	log.SetLevel(log.WarnLevel)
	log.SetFormatter(&log.TextFormatter{})
	// handle termination signal
	topContext = handleSignals()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	rootCertPath := "/etc/ssl/docker"

	if os.Getenv("DOCKER_CERT_PATH") != "" {
		rootCertPath = os.Getenv("DOCKER_CERT_PATH")
	}

	app := cli.NewApp()
	app.Name = appName
	app.Version = HumanVersion
	app.Compiled = time.Now()
	app.Usage = "validate Docker engine endpoints: URL, repository name, TLS certificates and daemon liveness"
	app.Before = before
	app.Commands = []cli.Command{
		*newCheckCommand(topContext, rootCertPath),
		*newBatchCommand(topContext),
	}
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "log-level, l",
			Usage:  "set log level (debug, info, warning(*), error, fatal, panic)",
			Value:  "warning",
			EnvVar: "LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:   "json, j",
			Usage:  "produce log in JSON format: Logstash and Splunk friendly",
			EnvVar: "LOG_JSON",
		},
		cli.BoolFlag{
			Name:  "log-source",
			Usage: "add app, source and function fields to log entries",
		},
		cli.StringFlag{
			Name:  "slackhook",
			Usage: "web hook url; send log events to Slack",
		},
		cli.StringFlag{
			Name:  "slackchannel",
			Usage: "Slack channel (default #dockping)",
			Value: "#dockping",
		},
		cli.StringFlag{
			Name:  "timeout, t",
			Usage: "liveness probe timeout; waits for daemon response when not set; use with optional unit suffix: 'ms/s/m/h'",
		},
	}
	return app
}

func before(c *cli.Context) error {
	log.SetLevel(parseLevel(c.GlobalString("log-level")))
	// set log formatter to JSON
	if c.GlobalBool("json") {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if c.GlobalBool("log-source") {
		log.AddHook(logger.NewCallerHook(appName))
	}
	// set Slack log channel
	if c.GlobalString("slackhook") != "" {
		log.AddHook(&slackrus.SlackrusHook{
			HookURL:        c.GlobalString("slackhook"),
			AcceptedLevels: slackrus.LevelThreshold(log.GetLevel()),
			Channel:        c.GlobalString("slackchannel"),
			IconEmoji:      ":whale:",
			Username:       "dockping_bot",
		})
	}
	return nil
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug", "DEBUG":
		return log.DebugLevel
	case "info", "INFO":
		return log.InfoLevel
	case "warning", "WARNING":
		return log.WarnLevel
	case "error", "ERROR":
		return log.ErrorLevel
	case "fatal", "FATAL":
		return log.FatalLevel
	case "panic", "PANIC":
		return log.PanicLevel
	default:
		return log.WarnLevel
	}
}

func handleSignals() context.Context {
	// Graceful shut-down on SIGINT/SIGTERM
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	// create cancelable context
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer cancel()
		sid := <-sig
		log.Debugf("Received signal: %d\n", sid)
		log.Debug("Canceling running validations ...")
	}()

	return ctx
}
