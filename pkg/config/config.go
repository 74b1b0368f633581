package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tcpgecko/gecko-go/pkg/gecko"
	"github.com/tcpgecko/gecko-go/pkg/log"
	"github.com/tcpgecko/gecko-go/pkg/memmap"
)

//go:embed default.yaml
var defaultYAML []byte

// Configuration errors.
var (
	ErrInvalidPort     = errors.New("port out of range")
	ErrInvalidTimeout  = errors.New("timeout must not be negative")
	ErrInvalidLogLevel = errors.New("unknown log level")
)

// Config holds client settings.
type Config struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	IOTimeout         time.Duration `yaml:"io_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	PauseInterval     time.Duration `yaml:"pause_interval"`
	SafePauseAttempts int           `yaml:"safe_pause_attempts"`

	// AddressDebug disables address validation.
	AddressDebug bool `yaml:"address_debug"`

	// Regions replaces the default address table when set.
	Regions memmap.Table `yaml:"regions,omitempty"`

	// ProtocolLog is the path of a .glog capture file. Empty disables it.
	ProtocolLog string `yaml:"protocol_log"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the embedded default settings.
func Default() Config {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return c
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 0xFFFF {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	for name, d := range map[string]time.Duration{
		"connect_timeout": c.ConnectTimeout,
		"io_timeout":      c.IOTimeout,
		"settle_delay":    c.SettleDelay,
		"pause_interval":  c.PauseInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidTimeout, name, d)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// Validator builds the address validator described by c.
func (c Config) Validator() (*memmap.Validator, error) {
	v := memmap.NewValidator(nil)
	if len(c.Regions) > 0 {
		if err := v.SetTable(c.Regions); err != nil {
			return nil, err
		}
	}
	v.Debug = c.AddressDebug
	return v, nil
}

// ClientConfig returns the gecko client settings described by c.
func (c Config) ClientConfig(logger log.Logger) (gecko.Config, error) {
	v, err := c.Validator()
	if err != nil {
		return gecko.Config{}, err
	}
	return gecko.Config{
		Host:              c.Host,
		Port:              c.Port,
		ConnectTimeout:    c.ConnectTimeout,
		IOTimeout:         c.IOTimeout,
		SettleDelay:       c.SettleDelay,
		PauseInterval:     c.PauseInterval,
		SafePauseAttempts: c.SafePauseAttempts,
		Validator:         v,
		Logger:            logger,
	}, nil
}
