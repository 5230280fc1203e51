// Package config loads the cluster configuration from TOML or YAML.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jd3nn1s/dash/dashcan"
	"github.com/jd3nn1s/dash/forwarder"
	"github.com/jd3nn1s/dash/render"
	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/units"
	"github.com/jd3nn1s/dash/victron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Version is the configuration schema this build understands.
const Version = 1

const ScreenCount = 5

type Config struct {
	Version  int                `toml:"version" yaml:"version"`
	Units    Units              `toml:"units" yaml:"units"`
	Screen   int                `toml:"screen" yaml:"screen"`
	Screens  []Screen           `toml:"screens" yaml:"screens"`
	Warnings map[string]Warning `toml:"warnings" yaml:"warnings"`
	Victron  Victron            `toml:"victron" yaml:"victron"`
	CAN      CAN                `toml:"can" yaml:"can"`
	Logs     Logs               `toml:"logs" yaml:"logs"`
	Forward  Forward            `toml:"forward" yaml:"forward"`
}

type Units struct {
	Pressure     string  `toml:"pressure" yaml:"pressure"`
	Temperature  string  `toml:"temperature" yaml:"temperature"`
	Speed        string  `toml:"speed" yaml:"speed"`
	Lambda       string  `toml:"lambda" yaml:"lambda"`
	SpeedTrimPct float64 `toml:"speedTrimPct" yaml:"speedTrimPct"`
}

// Screen names the channels of the four cells and the bar.
type Screen struct {
	Cells []string `toml:"cells" yaml:"cells"`
	Bar   string   `toml:"bar" yaml:"bar"`
}

// Warning thresholds are in base units.
type Warning struct {
	Mode string  `toml:"mode" yaml:"mode"`
	Warn float64 `toml:"warn" yaml:"warn"`
	Crit float64 `toml:"crit" yaml:"crit"`
}

type Peer struct {
	Name string `toml:"name" yaml:"name"`
	MAC  string `toml:"mac" yaml:"mac"`
	Key  string `toml:"key" yaml:"key"`
}

type Victron struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	StaleAfterSec int    `toml:"staleAfterSec" yaml:"staleAfterSec"`
	Peers         []Peer `toml:"peers" yaml:"peers"`
}

type CAN struct {
	Device      string  `toml:"device" yaml:"device"`
	SootDivisor float64 `toml:"sootDivisor" yaml:"sootDivisor"`
}

type Logs struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"maxSizeMB" yaml:"maxSizeMB"`
	MaxAgeDays int    `toml:"maxAgeDays" yaml:"maxAgeDays"`
	MaxBackups int    `toml:"maxBackups" yaml:"maxBackups"`
	Compress   bool   `toml:"compress" yaml:"compress"`
}

type Forward struct {
	UDP   forwarder.UDPConfig   `toml:"udp" yaml:"udp"`
	Redis forwarder.RedisConfig `toml:"redis" yaml:"redis"`
}

// Default is the configuration used when no valid file is present.
func Default() Config {
	return Config{
		Version: Version,
		Screens: []Screen{
			{Cells: []string{"speed", "rpm", "gear", "lockup"}, Bar: "boost"},
			{Cells: []string{"coolant", "trans1", "egt1", "boost"}, Bar: "soot"},
			{Cells: []string{"torque", "pedal", "torque_demand", "lambda"}, Bar: "rpm"},
			{Cells: []string{"intake", "fuel_temp", "manifold", "turbo_out"}, Bar: "egt2"},
			{Cells: []string{"batt_soc", "batt_current", "battv2", "pv_watts"}, Bar: "batt_soc"},
		},
		Warnings: map[string]Warning{
			"coolant":  {Mode: "high", Warn: 105, Crit: 110},
			"trans1":   {Mode: "high", Warn: 110, Crit: 120},
			"egt1":     {Mode: "high", Warn: 650, Crit: 750},
			"soot":     {Mode: "high", Warn: 80, Crit: 95},
			"battv":    {Mode: "low", Warn: 12.0, Crit: 11.5},
			"batt_soc": {Mode: "low", Warn: 50, Crit: 30},
		},
		Victron: Victron{
			StaleAfterSec: int(victron.DefaultStaleAfter / time.Second),
			Peers: []Peer{
				{Name: victron.NameBatteryMonitor},
				{Name: victron.NameSolarCharger},
				{Name: victron.NameDCDC},
			},
		},
		CAN: CAN{
			Device:      "can0",
			SootDivisor: dashcan.DefaultSootDivisor,
		},
		Logs: Logs{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 14,
			MaxBackups: 3,
		},
	}
}

func format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", errors.Errorf("unknown config format for %s", path)
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	kind, err := format(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to read config %s", path)
	}

	switch kind {
	case "toml":
		_, err = toml.Decode(string(data), &cfg)
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Default(), errors.Wrapf(err, "unable to parse config %s", path)
	}
	if cfg.Version != Version {
		return Default(), errors.Errorf("config version %d is not supported, want %d", cfg.Version, Version)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to the defaults on any error.
func LoadOrDefault(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		log.WithField("err", err).Warn("using default configuration")
		return Default()
	}
	return cfg
}

// Save writes cfg to path in the format its extension selects.
func Save(path string, cfg Config) error {
	kind, err := format(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch kind {
	case "toml":
		err = toml.NewEncoder(&buf).Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return errors.Wrap(err, "unable to encode config")
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "unable to write %s", path)
}

// Validate checks that every name and value in c can be used.
func (c Config) Validate() error {
	if _, err := c.UnitSystem(); err != nil {
		return err
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	if _, err := c.Thresholds(); err != nil {
		return err
	}
	if _, err := c.Peers(); err != nil {
		return err
	}
	if c.CAN.SootDivisor <= 0 {
		return errors.Errorf("soot divisor must be positive, got %v", c.CAN.SootDivisor)
	}
	if _, err := log.ParseLevel(c.Logs.Level); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	return nil
}

func (c Config) UnitSystem() (units.System, error) {
	u := c.Units
	return units.ParseSystem(u.Pressure, u.Temperature, u.Speed, u.Lambda, u.SpeedTrimPct)
}

// Layouts returns every configured screen.
func (c Config) Layouts() ([]render.Layout, error) {
	if len(c.Screens) == 0 || len(c.Screens) > ScreenCount {
		return nil, errors.Errorf("want 1 to %d screens, got %d", ScreenCount, len(c.Screens))
	}
	layouts := make([]render.Layout, len(c.Screens))
	for i, s := range c.Screens {
		if len(s.Cells) != render.CellCount {
			return nil, errors.Errorf("screen %d: want %d cells, got %d", i+1, render.CellCount, len(s.Cells))
		}
		for j, name := range s.Cells {
			ch, err := telemetry.ParseChannel(name)
			if err != nil {
				return nil, errors.Wrapf(err, "screen %d cell %d", i+1, j+1)
			}
			layouts[i].Cells[j] = ch
		}
		bar, err := telemetry.ParseChannel(s.Bar)
		if err != nil {
			return nil, errors.Wrapf(err, "screen %d bar", i+1)
		}
		layouts[i].Bar = bar
	}
	return layouts, nil
}

// Layout returns the active screen.
func (c Config) Layout() (render.Layout, error) {
	layouts, err := c.Layouts()
	if err != nil {
		return render.Layout{}, err
	}
	if c.Screen < 0 || c.Screen >= len(layouts) {
		return render.Layout{}, errors.Errorf("screen %d out of range", c.Screen)
	}
	return layouts[c.Screen], nil
}

func (c Config) Thresholds() (render.Thresholds, error) {
	var th render.Thresholds
	for name, w := range c.Warnings {
		ch, err := telemetry.ParseChannel(name)
		if err != nil {
			return th, errors.Wrap(err, "warnings")
		}
		mode, err := render.ParseWarnMode(w.Mode)
		if err != nil {
			return th, errors.Wrapf(err, "warnings %s", name)
		}
		th[ch] = render.Threshold{Mode: mode, Warn: w.Warn, Crit: w.Crit}
	}
	return th, nil
}

// Peers returns the radio peers that have an address configured.
func (c Config) Peers() ([]victron.Peer, error) {
	var peers []victron.Peer
	for _, p := range c.Victron.Peers {
		if strings.TrimSpace(p.MAC) == "" {
			continue
		}
		peer, err := victron.NewPeer(p.Name, p.MAC, p.Key)
		if err != nil {
			return nil, err
		}
		peers = append(peers, peer)
	}
	return peers, nil
}

// StaleAfter is how long radio readings stay valid.
func (c Config) StaleAfter() time.Duration {
	if c.Victron.StaleAfterSec <= 0 {
		return victron.DefaultStaleAfter
	}
	return time.Duration(c.Victron.StaleAfterSec) * time.Second
}
