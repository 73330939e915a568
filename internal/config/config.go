// Package config loads costream settings from a TOML file.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chronologos/costream/internal/protocol"
)

// Config is the resolved configuration. Zero values are never used directly;
// start from Default and overlay a file with Load.
type Config struct {
	Protocol ProtocolConfig
	Terminal TerminalConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type ProtocolConfig struct {
	// MaxPayloadBytes bounds a single frame's payload on read.
	MaxPayloadBytes uint32
	// SupportedVersions lists header versions the router accepts.
	SupportedVersions []uint8
}

type TerminalConfig struct {
	// CompressThreshold is the smallest output chunk that gets compressed.
	// Zero disables compression.
	CompressThreshold int
	CompressLevel     int
	CoalesceDelay     time.Duration
	CoalesceThreshold int
	// ScrollbackBytes bounds the output each terminal keeps for snapshots.
	ScrollbackBytes int
}

type LogConfig struct {
	Level   string
	NoColor bool
}

type MetricsConfig struct {
	Namespace string
}

func Default() Config {
	return Config{
		Protocol: ProtocolConfig{
			MaxPayloadBytes:   16 << 20,
			SupportedVersions: []uint8{protocol.Version},
		},
		Terminal: TerminalConfig{
			CompressThreshold: 4 * 1024,
			CompressLevel:     3,
			CoalesceDelay:     2 * time.Millisecond,
			CoalesceThreshold: 32 * 1024,
			ScrollbackBytes:   256 * 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Namespace: "costream",
		},
	}
}

type fileConfig struct {
	Protocol struct {
		MaxPayloadBytes   int64 `toml:"max_payload_bytes"`
		SupportedVersions []int `toml:"supported_versions"`
	} `toml:"protocol"`
	Terminal struct {
		CompressThreshold int    `toml:"compress_threshold"`
		CompressLevel     int    `toml:"compress_level"`
		CoalesceDelay     string `toml:"coalesce_delay"`
		CoalesceThreshold int    `toml:"coalesce_threshold"`
		ScrollbackBytes   int    `toml:"scrollback_bytes"`
	} `toml:"terminal"`
	Log struct {
		Level   string `toml:"level"`
		NoColor bool   `toml:"no_color"`
	} `toml:"log"`
	Metrics struct {
		Namespace string `toml:"namespace"`
	} `toml:"metrics"`
}

// Load reads path and overlays every key it defines onto Default.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := overlay(Default(), raw, meta)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse is Load for in-memory TOML.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	cfg, err := overlay(Default(), raw, meta)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlay(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("protocol", "max_payload_bytes") {
		n := raw.Protocol.MaxPayloadBytes
		if n <= 0 || n > int64(^uint32(0)) {
			return Config{}, fmt.Errorf("protocol.max_payload_bytes out of range: %d", n)
		}
		cfg.Protocol.MaxPayloadBytes = uint32(n)
	}
	if meta.IsDefined("protocol", "supported_versions") {
		versions := make([]uint8, 0, len(raw.Protocol.SupportedVersions))
		for _, v := range raw.Protocol.SupportedVersions {
			if v < 1 || v > 255 {
				return Config{}, fmt.Errorf("protocol.supported_versions: invalid version %d", v)
			}
			versions = append(versions, uint8(v))
		}
		cfg.Protocol.SupportedVersions = versions
	}

	if meta.IsDefined("terminal", "compress_threshold") {
		cfg.Terminal.CompressThreshold = raw.Terminal.CompressThreshold
	}
	if meta.IsDefined("terminal", "compress_level") {
		cfg.Terminal.CompressLevel = raw.Terminal.CompressLevel
	}
	if meta.IsDefined("terminal", "coalesce_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Terminal.CoalesceDelay))
		if err != nil {
			return Config{}, fmt.Errorf("parse terminal.coalesce_delay: %w", err)
		}
		cfg.Terminal.CoalesceDelay = d
	}
	if meta.IsDefined("terminal", "coalesce_threshold") {
		cfg.Terminal.CoalesceThreshold = raw.Terminal.CoalesceThreshold
	}
	if meta.IsDefined("terminal", "scrollback_bytes") {
		cfg.Terminal.ScrollbackBytes = raw.Terminal.ScrollbackBytes
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if meta.IsDefined("metrics", "namespace") {
		cfg.Metrics.Namespace = strings.TrimSpace(raw.Metrics.Namespace)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Protocol.MaxPayloadBytes == 0 {
		return fmt.Errorf("protocol.max_payload_bytes must be positive")
	}
	if len(c.Protocol.SupportedVersions) == 0 {
		return fmt.Errorf("protocol.supported_versions must not be empty")
	}
	if c.Terminal.CompressThreshold < 0 {
		return fmt.Errorf("terminal.compress_threshold must not be negative")
	}
	if c.Terminal.ScrollbackBytes < 0 {
		return fmt.Errorf("terminal.scrollback_bytes must not be negative")
	}
	if c.Terminal.CoalesceDelay <= 0 {
		return fmt.Errorf("terminal.coalesce_delay must be positive")
	}
	if c.Terminal.CoalesceThreshold <= 0 {
		return fmt.Errorf("terminal.coalesce_threshold must be positive")
	}
	if c.Terminal.CoalesceThreshold > int(c.Protocol.MaxPayloadBytes) {
		return fmt.Errorf("terminal.coalesce_threshold %d exceeds protocol.max_payload_bytes %d",
			c.Terminal.CoalesceThreshold, c.Protocol.MaxPayloadBytes)
	}
	if strings.TrimSpace(c.Metrics.Namespace) == "" {
		return fmt.Errorf("metrics.namespace must not be empty")
	}
	return nil
}

// Supports reports whether v is an accepted header version.
func (p ProtocolConfig) Supports(v uint8) bool {
	return slices.Contains(p.SupportedVersions, v)
}
