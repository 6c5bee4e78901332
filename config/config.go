package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"

	"lautenbacher.net/gosignal/signal"
)

const CONFILE = "gosignal.yml"

var (
	ErrDuplicatePin = errors.New("lamp pins must be distinct")
	ErrInvalidDelay = errors.New("invalid delay")
)

type Config struct {
	Hardware   HardwareConfig   `yaml:"Hardware"`
	Timing     signal.Delays    `yaml:"Timing"`
	NightFlash NightFlashConfig `yaml:"NightFlash"`
	Chirp      ChirpConfig      `yaml:"Chirp"`
	Web        WebConfig        `yaml:"Web"`
	MQTT       MQTTConfig       `yaml:"MQTT"`
	Logging    LoggingConfig    `yaml:"Logging"`
}

// HardwareConfig holds BCM GPIO numbers. ButtonPin 0 means no mode
// button is attached.
type HardwareConfig struct {
	RedPin          int           `yaml:"RedPin"`
	YellowPin       int           `yaml:"YellowPin"`
	GreenPin        int           `yaml:"GreenPin"`
	ButtonPin       int           `yaml:"ButtonPin"`
	ButtonDebounce  time.Duration `yaml:"ButtonDebounce"`
	ButtonPollDelay time.Duration `yaml:"ButtonPollDelay"`
}

type NightFlashConfig struct {
	Enabled       bool          `yaml:"Enabled" json:"Enabled"`
	Latitude      float64       `yaml:"Latitude" json:"Latitude"`
	Longitude     float64       `yaml:"Longitude" json:"Longitude"`
	CheckInterval time.Duration `yaml:"CheckInterval" json:"CheckInterval"`
}

type ChirpConfig struct {
	Enabled      bool          `yaml:"Enabled"`
	Frequency    float64       `yaml:"Frequency"`
	SampleRate   int           `yaml:"SampleRate"`
	Volume       float64       `yaml:"Volume"`
	ToneLength   time.Duration `yaml:"ToneLength"`
	WalkInterval time.Duration `yaml:"WalkInterval"`
	WaitInterval time.Duration `yaml:"WaitInterval"`
}

type WebConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Listen  string `yaml:"Listen"`
}

type MQTTConfig struct {
	Enabled      bool   `yaml:"Enabled"`
	Broker       string `yaml:"Broker"`
	ClientID     string `yaml:"ClientID"`
	Username     string `yaml:"Username"`
	Password     string `yaml:"Password"`
	CommandTopic string `yaml:"CommandTopic"`
	StatusTopic  string `yaml:"StatusTopic"`
}

type LogConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

type LoggingConfig struct {
	TUI LogConfig `yaml:"TUI"`
	HW  LogConfig `yaml:"HW"`
}

// Default returns the configuration used for everything the file leaves
// out.
func Default() Config {
	return Config{
		Hardware: HardwareConfig{
			RedPin:          7,
			YellowPin:       6,
			GreenPin:        5,
			ButtonDebounce:  200 * time.Millisecond,
			ButtonPollDelay: 20 * time.Millisecond,
		},
		Timing: signal.DefaultDelays(),
		NightFlash: NightFlashConfig{
			CheckInterval: time.Minute,
		},
		Chirp: ChirpConfig{
			Frequency:    880,
			SampleRate:   44100,
			Volume:       0.5,
			ToneLength:   30 * time.Millisecond,
			WalkInterval: 250 * time.Millisecond,
			WaitInterval: time.Second,
		},
		Web: WebConfig{
			Listen: ":8080",
		},
		MQTT: MQTTConfig{
			Broker:       "tcp://localhost:1883",
			CommandTopic: "gosignal/command",
			StatusTopic:  "gosignal/status",
		},
		Logging: LoggingConfig{
			TUI: LogConfig{Level: "INFO", Format: "text"},
			HW:  LogConfig{Level: "INFO", Format: "text"},
		},
	}
}

// ReadConfig decodes cfile on top of Default and validates the result.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := Default()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return &conf, nil
}

// WriteConfig writes conf to cfile as YAML.
func WriteConfig(cfile string, conf *Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("can't marshal config: %w", err)
	}
	if err := os.WriteFile(cfile, data, 0o644); err != nil {
		return fmt.Errorf("can't write config file %s: %w", cfile, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Hardware.Validate(); err != nil {
		return err
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("%w: Timing: %v", ErrInvalidDelay, err)
	}
	if err := c.NightFlash.Validate(); err != nil {
		return err
	}
	if c.Chirp.Enabled {
		if c.Chirp.SampleRate <= 0 || c.Chirp.Frequency <= 0 {
			return fmt.Errorf("Chirp.SampleRate and Chirp.Frequency must be positive")
		}
		if c.Chirp.Volume < 0 || c.Chirp.Volume > 1 {
			return fmt.Errorf("Chirp.Volume must be between 0 and 1, got %v", c.Chirp.Volume)
		}
		if c.Chirp.ToneLength <= 0 || c.Chirp.ToneLength >= c.Chirp.WalkInterval || c.Chirp.ToneLength >= c.Chirp.WaitInterval {
			return fmt.Errorf("Chirp.ToneLength must be positive and shorter than both intervals")
		}
	}
	if c.Web.Enabled && c.Web.Listen == "" {
		return fmt.Errorf("Web.Listen must be set when the web API is enabled")
	}
	if c.MQTT.Enabled && (c.MQTT.Broker == "" || c.MQTT.CommandTopic == "") {
		return fmt.Errorf("MQTT.Broker and MQTT.CommandTopic must be set when MQTT is enabled")
	}
	for _, lc := range []struct {
		name string
		cfg  LogConfig
	}{{"TUI", c.Logging.TUI}, {"HW", c.Logging.HW}} {
		switch strings.ToLower(lc.cfg.Format) {
		case "", "text", "json":
		default:
			return fmt.Errorf("Logging.%s.Format must be text or json, got %q", lc.name, lc.cfg.Format)
		}
	}
	return nil
}

// Validate checks that the three lamps (and the button, if present) use
// different pins.
func (h HardwareConfig) Validate() error {
	byPin := map[int][]string{}
	byPin[h.RedPin] = append(byPin[h.RedPin], "RedPin")
	byPin[h.YellowPin] = append(byPin[h.YellowPin], "YellowPin")
	byPin[h.GreenPin] = append(byPin[h.GreenPin], "GreenPin")
	if h.ButtonPin != 0 {
		byPin[h.ButtonPin] = append(byPin[h.ButtonPin], "ButtonPin")
	}
	pins := maps.Keys(byPin)
	slices.Sort(pins)
	for _, pin := range pins {
		if pin < 0 {
			return fmt.Errorf("%s: pin %d must not be negative", strings.Join(byPin[pin], ", "), pin)
		}
		if len(byPin[pin]) > 1 {
			return fmt.Errorf("%w: %s all use pin %d", ErrDuplicatePin, strings.Join(byPin[pin], ", "), pin)
		}
	}
	if h.ButtonPin != 0 && h.ButtonPollDelay <= 0 {
		return fmt.Errorf("Hardware.ButtonPollDelay must be positive when a button is configured")
	}
	if h.ButtonDebounce < 0 {
		return fmt.Errorf("Hardware.ButtonDebounce must be non-negative")
	}
	return nil
}

func (n NightFlashConfig) Validate() error {
	if !n.Enabled {
		return nil
	}
	if n.Latitude < -90 || n.Latitude > 90 {
		return fmt.Errorf("NightFlash.Latitude must be between -90 and 90, got %v", n.Latitude)
	}
	if n.Longitude < -180 || n.Longitude > 180 {
		return fmt.Errorf("NightFlash.Longitude must be between -180 and 180, got %v", n.Longitude)
	}
	if n.CheckInterval <= 0 {
		return fmt.Errorf("NightFlash.CheckInterval must be positive")
	}
	return nil
}
