package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	TickIntervalMs    int    `yaml:"tickIntervalMs"`
	RefreshIntervalMs int    `yaml:"refreshIntervalMs"`
	TasksFile         string `yaml:"tasksFile"`
	ControlSocket     string `yaml:"controlSocket"`
	MetricsListen     string `yaml:"metricsListen"`
	LogLevel          string `yaml:"logLevel"`

	// CustomStateRules may override the standard status and message.
	// NaggingConditions and DowntimeConditions toggle the respective
	// behavioral flags. All three lists are ordered and optional; an absent
	// list disables that feature entirely.
	CustomStateRules   []RuleConfig      `yaml:"customStateRules"`
	NaggingConditions  []ConditionConfig `yaml:"naggingConditions"`
	DowntimeConditions []ConditionConfig `yaml:"downtimeConditions"`
}

// RuleConfig pairs a condition with the status and message it produces when
// it is the first rule to match.
type RuleConfig struct {
	Condition        ConditionConfig `yaml:"condition"`
	ResultingStatus  string          `yaml:"resultingStatus"`
	ResultingMessage string          `yaml:"resultingMessage"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TickIntervalMs == 0 {
		c.TickIntervalMs = 1000
	}
	if c.RefreshIntervalMs == 0 {
		c.RefreshIntervalMs = 2000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate performs basic sanity checks.
func (c *Config) Validate() error {
	if c.TickIntervalMs < 0 {
		return fmt.Errorf("tickIntervalMs cannot be negative")
	}
	if c.RefreshIntervalMs < 0 {
		return fmt.Errorf("refreshIntervalMs cannot be negative")
	}
	if c.TasksFile == "" {
		return fmt.Errorf("tasksFile must be set")
	}
	for i, rule := range c.CustomStateRules {
		if rule.ResultingStatus == "" {
			return fmt.Errorf("customStateRules[%d]: resultingStatus cannot be empty", i)
		}
		if rule.Condition.Empty() {
			return fmt.Errorf("customStateRules[%d]: condition cannot be empty", i)
		}
	}
	for i, cond := range c.NaggingConditions {
		if cond.Empty() {
			return fmt.Errorf("naggingConditions[%d]: condition cannot be empty", i)
		}
	}
	for i, cond := range c.DowntimeConditions {
		if cond.Empty() {
			return fmt.Errorf("downtimeConditions[%d]: condition cannot be empty", i)
		}
	}
	return nil
}
