package main

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/A2-ai/polyjuice/session"
)

// config carries the deployment-defined settings which have no place on
// the commandline: the PAM service registered on the host, the location of
// the switch-user helper and how long to wait for a freshly provisioned
// home directory.
type config struct {
	PAMService string `yaml:"pam_service"`
	SuPath     string `yaml:"su_path"`
	HomeWait   struct {
		Attempts int    `yaml:"attempts"`
		Interval string `yaml:"interval"`
	} `yaml:"home_wait"`

	homeWait retryPolicy
}

func defaultConfig() *config {
	c := &config{
		PAMService: session.DefaultService,
		SuPath:     "su",
	}
	c.HomeWait.Attempts = 10
	c.HomeWait.Interval = "500ms"

	return c
}

func loadConfig(path string) (*config, error) {
	c := defaultConfig()

	if path != "" {
		fp, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Unable to open configuration file %q: %s", path, err)
		}
		defer fp.Close()

		if err := yaml.NewDecoder(fp).Decode(c); err != nil {
			return nil, fmt.Errorf("Unable to parse configuration file %q: %s", path, err)
		}
	}

	return c, c.validate()
}

func (c *config) validate() error {
	if c.HomeWait.Attempts < 1 {
		return fmt.Errorf("home_wait.attempts must be greater than zero")
	}

	interval, err := time.ParseDuration(c.HomeWait.Interval)
	if err != nil {
		return fmt.Errorf("Unable to parse home_wait.interval: %s", err)
	}

	c.homeWait = retryPolicy{
		attempts: c.HomeWait.Attempts,
		interval: interval,
	}

	return nil
}
