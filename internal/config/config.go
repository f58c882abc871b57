// Package config loads the server's enumerated options (spec §6) from a
// TOML file, with environment variables overriding file values and hard
// defaults as the final fallback — the layering used throughout the
// teacher's service factories (auth.NewServiceFromEnv, ledger.NewServiceFromEnv).
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config carries every enumerated option from spec §6.
type Config struct {
	Addr string `toml:"addr"`

	TurnTimeout         time.Duration `toml:"-"`
	ReplayVoteWindow     time.Duration `toml:"-"`
	RoomTTL              time.Duration `toml:"-"`
	ConsecutiveSkipLimit int           `toml:"consecutive_skip_limit"`
	ReconnectGrace       time.Duration `toml:"-"`
	CleanupSweep         time.Duration `toml:"-"`

	ColorPalette []string `toml:"color_palette"`

	raw rawConfig
}

// rawConfig mirrors the TOML file shape; millisecond fields decode as plain
// ints because spec §6 names them in milliseconds.
type rawConfig struct {
	Addr                 string   `toml:"addr"`
	TurnTimeoutMs        int64    `toml:"turn_timeout_ms"`
	ReplayVoteWindowMs   int64    `toml:"replay_vote_window_ms"`
	RoomTTLMs            int64    `toml:"room_ttl_ms"`
	ConsecutiveSkipLimit int      `toml:"consecutive_skip_limit"`
	ReconnectGraceMs     int64    `toml:"reconnect_grace_ms"`
	CleanupSweepMs       int64    `toml:"cleanup_sweep_ms"`
	ColorPalette         []string `toml:"color_palette"`
}

// Defaults returns the hard defaults enumerated in spec §6.
func Defaults() Config {
	return fromRaw(rawConfig{
		Addr:                 ":8080",
		TurnTimeoutMs:        60_000,
		ReplayVoteWindowMs:   30_000,
		RoomTTLMs:            3_600_000,
		ConsecutiveSkipLimit: 2,
		ReconnectGraceMs:     300_000,
		CleanupSweepMs:       300_000,
		ColorPalette:         []string{"red", "blue", "green", "yellow"},
	})
}

func fromRaw(r rawConfig) Config {
	return Config{
		Addr:                 r.Addr,
		TurnTimeout:          time.Duration(r.TurnTimeoutMs) * time.Millisecond,
		ReplayVoteWindow:     time.Duration(r.ReplayVoteWindowMs) * time.Millisecond,
		RoomTTL:              time.Duration(r.RoomTTLMs) * time.Millisecond,
		ConsecutiveSkipLimit: r.ConsecutiveSkipLimit,
		ReconnectGrace:       time.Duration(r.ReconnectGraceMs) * time.Millisecond,
		CleanupSweep:         time.Duration(r.CleanupSweepMs) * time.Millisecond,
		ColorPalette:         append([]string(nil), r.ColorPalette...),
		raw:                  r,
	}
}

// LoadFile decodes a TOML file over the hard defaults. A missing file is
// not an error — it simply leaves the defaults in place, the same
// "best-effort, non-fatal" posture the teacher's main.go takes when NPC
// persona/story files are absent.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	r := cfg.raw
	if _, err := toml.Decode(string(data), &r); err != nil {
		return cfg, err
	}
	return fromRaw(r), nil
}

// ApplyEnv overrides cfg's fields from environment variables when present,
// the outermost layer in the env > file > default precedence.
func (c Config) ApplyEnv() Config {
	r := c.raw
	if v, ok := os.LookupEnv("MORTPION_ADDR"); ok {
		r.Addr = v
	}
	if v, ok := envInt64("MORTPION_TURN_TIMEOUT_MS"); ok {
		r.TurnTimeoutMs = v
	}
	if v, ok := envInt64("MORTPION_REPLAY_VOTE_WINDOW_MS"); ok {
		r.ReplayVoteWindowMs = v
	}
	if v, ok := envInt64("MORTPION_ROOM_TTL_MS"); ok {
		r.RoomTTLMs = v
	}
	if v, ok := envInt("MORTPION_CONSECUTIVE_SKIP_LIMIT"); ok {
		r.ConsecutiveSkipLimit = v
	}
	if v, ok := envInt64("MORTPION_RECONNECT_GRACE_MS"); ok {
		r.ReconnectGraceMs = v
	}
	if v, ok := envInt64("MORTPION_CLEANUP_SWEEP_MS"); ok {
		r.CleanupSweepMs = v
	}
	return fromRaw(r)
}

func envInt64(key string) (int64, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envInt(key string) (int, bool) {
	n, ok := envInt64(key)
	return int(n), ok
}

// Load is the standard entrypoint: file, then env overrides.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	return cfg.ApplyEnv(), nil
}
