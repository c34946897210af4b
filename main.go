package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Luzifer/rconfig"
	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"

	"github.com/A2-ai/polyjuice/bufferhook"
	"github.com/A2-ai/polyjuice/identity"
	"github.com/A2-ai/polyjuice/privilege"
	"github.com/A2-ai/polyjuice/session"
	"github.com/A2-ai/polyjuice/supervise"
	"github.com/A2-ai/polyjuice/userenv"
)

var (
	cfg = struct {
		BootstrapSession bool     `flag:"bootstrap-session" default:"true" description:"Open a login session when the user's home directory is missing"`
		Config           string   `flag:"config,f" default:"" description:"Path to an optional configuration file"`
		LogLevel         string   `flag:"log-level" default:"info" description:"Log level (debug, info, warn, error, fatal)"`
		Reporters        []string `flag:"reporter,r" default:"" description:"Reporting URIs to notify about execution results"`
		Schedule         string   `flag:"schedule" default:"" description:"Re-run the command on this schedule (cron syntax) instead of exiting"`
		User             string   `flag:"user,u" default:"" description:"User to execute the command as" validate:"nonzero"`
		VersionAndExit   bool     `flag:"version" default:"false" description:"Prints current version and exits"`

		logLevel log.Level
	}{}

	version = "dev"
)

func init() {
	if err := rconfig.ParseAndValidate(&cfg); err != nil {
		log.Fatalf("Unable to parse commandline options: %s", err)
	}

	if cfg.VersionAndExit {
		fmt.Printf("polyjuice %s\n", version)
		os.Exit(0)
	}

	if l, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("Unable to parse log level")
	} else {
		log.SetLevel(l)
		cfg.logLevel = l
	}
}

func main() {
	var command []string
	if args := rconfig.Args(); len(args) > 1 {
		command = args[1:]
	}
	if len(command) == 0 {
		log.Fatal("No command given to execute")
	}

	conf, err := loadConfig(cfg.Config)
	if err != nil {
		log.WithError(err).Fatal("Unable to load configuration")
	}

	priv, err := privilege.Require()
	if err != nil {
		log.WithError(err).Fatal("polyjuice needs to be started as root")
	}

	id, err := identity.Lookup(cfg.User)
	if err != nil {
		log.WithError(err).Fatal("Unable to resolve target user")
	}

	log.WithFields(log.Fields{
		"uid":  id.UID,
		"gid":  id.GID,
		"home": id.HomeDir,
	}).Debug("Target user resolved")

	reporting, err := initializeReporters(cfg.Reporters)
	if err != nil {
		log.WithError(err).Fatal("Unable to create reporters")
	}

	if cfg.Schedule == "" {
		os.Exit(runOnce(priv, conf, id, command, reporting))
	}

	actChan := make(chan struct{}, 1)
	actChan <- struct{}{}

	c := cron.New()
	if err := c.AddFunc(cfg.Schedule, func() {
		select {
		case actChan <- struct{}{}:
		default:
		}
	}); err != nil {
		log.WithError(err).Fatal("Unable to parse schedule")
	}
	c.Start()

	for range actChan {
		runOnce(priv, conf, id, command, reporting)
	}
}

func runOnce(priv privilege.Token, conf *config, id identity.Identity, command []string, reporting reporterList) int {
	buf := bufferhook.New(cfg.logLevel)
	runLog := log.New()
	runLog.SetLevel(cfg.logLevel)
	runLog.AddHook(buf)

	logger := runLog.WithFields(log.Fields{
		"user":    id.Username,
		"command": command[0],
	})

	exitCode, err := execute(priv, conf, id, command, logger)

	success := err == nil && exitCode == 0
	if err != nil {
		logger.WithError(err).Error("Execution failed")
		if exitCode == 0 {
			exitCode = 1
		}
	}

	runID := id.Username + ": " + strings.Join(command, " ")
	if err := reporting.Execute(success, buf.String(), runID); err != nil {
		log.WithError(err).Error("Failed sending reports")
	}

	return exitCode
}

func execute(priv privilege.Token, conf *config, id identity.Identity, command []string, logger *log.Entry) (int, error) {
	var sessionEnv map[string]string

	if _, err := os.Stat(id.HomeDir); err != nil {
		logger.WithField("home", id.HomeDir).Info("Home directory missing")

		if cfg.BootstrapSession {
			sessionEnv = bootstrapSession(priv, conf, id, logger)
		}
	}

	harvester := userenv.New(priv, userenv.WithSuPath(conf.SuPath))
	envs, err := harvester.Harvest(id.Username)
	if err != nil {
		return 0, fmt.Errorf("Unable to harvest login environment: %w", err)
	}
	logger.WithField("vars", len(envs)).Debug("Harvested login environment")

	sup := supervise.New(func(stream supervise.Stream, line string) {
		if stream == supervise.Stderr {
			logger.WithField("stream", stream.String()).Error(line)
			return
		}
		logger.WithField("stream", stream.String()).Info(line)
	})

	outcome, err := sup.Run(context.Background(), command[0], command[1:], id, userenv.Merge(envs, sessionEnv))
	if err != nil {
		return 0, fmt.Errorf("Unable to run command: %w", err)
	}

	if outcome.Signaled {
		logger.WithField("signal", outcome.Signal).Error("Command was terminated by signal")
		return 1, nil
	}

	logger.WithField("code", outcome.Code).Info("Command finished")
	return outcome.Code, nil
}

// bootstrapSession opens (and immediately releases) a login session for
// the user to trigger the platform's first-login provisioning, then waits
// a bounded time for the home directory to appear. Failures here are
// warnings only: the run continues without the session's side effects.
func bootstrapSession(priv privilege.Token, conf *config, id identity.Identity, logger *log.Entry) map[string]string {
	sess, err := session.New(priv, conf.PAMService).Bootstrap(id)
	if err != nil {
		logger.WithError(err).Warn("Unable to bootstrap login session")
		return nil
	}

	env := sess.Environ()
	if err := sess.Close(); err != nil {
		logger.WithError(err).Warn("Unable to release login session")
	}

	found := conf.homeWait.do(func() bool {
		info, err := os.Stat(id.HomeDir)
		return err == nil && info.IsDir()
	})
	if !found {
		logger.WithField("home", id.HomeDir).Warn("Home directory still missing after session bootstrap")
	}

	return env
}
