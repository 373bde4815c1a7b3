// Package config loads the posture agent's configuration: the periodic
// polling interval and the controller it reports to. Everything else the
// SDK needs (evidence provider hooks, the service catalogue, the
// controller client) is wired programmatically, not through config.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the agent's configuration surface, spec.md §6.
type Config struct {
	// PollIntervalSeconds is how often the scheduler tick fires. Required.
	PollIntervalSeconds int `mapstructure:"pollintervalseconds"`

	// ControllerURL is the base URL of the controller the submitter POSTs
	// posture-response and posture-response-bulk to.
	ControllerURL string `mapstructure:"controllerurl"`

	// LogLevel is one of panic|fatal|error|warn|info|debug|trace.
	LogLevel string `mapstructure:"loglevel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pollintervalseconds", 60)
	v.SetDefault("loglevel", "info")
}

// Load reads configuration from environment variables (POSTURE_*) layered
// over an optional config file, the way the teacher's worker.LoadConfig
// binds AGGREGATOR_URL/MASTER_URL over a JSON file.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("posture")
	v.AutomaticEnv()

	setDefaults(v)

	v.BindEnv("pollintervalseconds", "POSTURE_POLL_INTERVAL_SECONDS")
	v.BindEnv("controllerurl", "POSTURE_CONTROLLER_URL")
	v.BindEnv("loglevel", "POSTURE_LOG_LEVEL")

	v.SetConfigType("json")
	v.SetConfigName("posture-agent")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/posture-agent")

	if forced := os.Getenv("POSTURE_CONFIG"); forced != "" {
		v.SetConfigFile(forced)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read posture-agent config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal posture-agent config")
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Errorf("invalid configuration: %v", errs[0])
	}

	return cfg, nil
}

// Validate returns the configuration problems found, if any.
func (c *Config) Validate() []error {
	var errs []error
	if c.PollIntervalSeconds <= 0 {
		errs = append(errs, errors.New("pollintervalseconds must be positive"))
	}
	if c.ControllerURL == "" {
		errs = append(errs, errors.New("controllerurl is required"))
	}
	return errs
}
