package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// maxIntervalSeconds keeps PollInterval from overflowing time.Duration.
const maxIntervalSeconds = uint64(math.MaxInt64 / int64(time.Second))

var editions = map[string]bool{"": true, "java": true, "bedrock": true, "rcon": true}

// Validate checks configuration correctness and reports every problem found.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var err error
	add := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(cfg.Discord.Token) == "" {
		add("discord.token is required")
	}
	if cfg.Discord.ChannelID == 0 {
		add("discord.channel_id is required")
	}

	if strings.TrimSpace(cfg.Minecraft.IP) == "" {
		add("minecraft.ip is required")
	}
	if cfg.Minecraft.Port == 0 {
		add("minecraft.port must be 1-65535")
	}
	if cfg.Minecraft.Interval == 0 {
		add("minecraft.interval must be > 0 seconds")
	}
	if cfg.Minecraft.Interval > maxIntervalSeconds {
		add("minecraft.interval must be <= %d seconds", maxIntervalSeconds)
	}
	edition := strings.ToLower(strings.TrimSpace(cfg.Minecraft.Edition))
	if !editions[edition] {
		add("minecraft.edition %q: want java, bedrock or rcon", cfg.Minecraft.Edition)
	}
	if edition == "rcon" && cfg.Minecraft.RCONPassword == "" {
		add("minecraft.rcon_password is required for edition rcon")
	}

	if cfg.Format.Online == "" {
		add("format.online is required")
	}
	if cfg.Format.Offline == "" {
		add("format.offline is required")
	}

	if cfg.Log.Level != "" {
		if _, lerr := zapcore.ParseLevel(cfg.Log.Level); lerr != nil {
			add("log.level: %v", lerr)
		}
	}
	if cfg.HTTP.Addr != "" {
		if _, _, herr := net.SplitHostPort(cfg.HTTP.Addr); herr != nil {
			add("http.addr: %v", herr)
		}
	}
	return err
}

// Warnings lists settings that are legal but probably not intended.
func Warnings(cfg *Config) []string {
	var out []string
	if !strings.Contains(cfg.Format.Online, "$ONLINE") && !strings.Contains(cfg.Format.Online, "$MAX") {
		out = append(out, "format.online has no $ONLINE or $MAX placeholder; the name will never show counts")
	}
	if cfg.Minecraft.Interval > 0 && cfg.Minecraft.Interval < 300 {
		out = append(out, "minecraft.interval is under 5 minutes; Discord allows 2 channel renames per 10 minutes, so updates will queue")
	}
	return out
}

// Normalize fills defaults. It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Discord.Activity == "" {
		cfg.Discord.Activity = "Minecraft"
	}
	cfg.Minecraft.Edition = strings.ToLower(strings.TrimSpace(cfg.Minecraft.Edition))
	if cfg.Minecraft.Edition == "" {
		cfg.Minecraft.Edition = "java"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Minecraft.Interval) * time.Second
}
