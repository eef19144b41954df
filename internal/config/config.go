package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.toml"

type Config struct {
	Discord   DiscordConfig   `toml:"discord" yaml:"discord"`
	Minecraft MinecraftConfig `toml:"minecraft" yaml:"minecraft"`
	Format    FormatConfig    `toml:"format" yaml:"format"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	HTTP      HTTPConfig      `toml:"http" yaml:"http"`
}

type DiscordConfig struct {
	Token     string `toml:"token" yaml:"token"`
	ChannelID uint64 `toml:"channel_id" yaml:"channel_id"`
	Activity  string `toml:"activity" yaml:"activity"` // presence text, "Playing <activity>"
}

type MinecraftConfig struct {
	IP           string `toml:"ip" yaml:"ip"`
	Port         uint16 `toml:"port" yaml:"port"`
	Interval     uint64 `toml:"interval" yaml:"interval"` // seconds
	Edition      string `toml:"edition" yaml:"edition"`   // java | bedrock | rcon
	RCONPassword string `toml:"rcon_password" yaml:"rcon_password"`
}

// FormatConfig: Online may use $ONLINE and $MAX, Offline is a literal.
type FormatConfig struct {
	Online  string `toml:"online" yaml:"online"`
	Offline string `toml:"offline" yaml:"offline"`
}

type LogConfig struct {
	Dir   string `toml:"dir" yaml:"dir"`
	Level string `toml:"level" yaml:"level"`
}

type HTTPConfig struct {
	Addr string `toml:"addr" yaml:"addr"` // empty disables the ops server
}

// Load reads the file at path (TOML, or YAML for .yaml/.yml) and overlays
// environment variables. A .env file in the working directory is loaded first
// if present. Load does not validate.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse toml %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DISCORD_TOKEN")); v != "" {
		cfg.Discord.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_DIR")); v != "" {
		cfg.Log.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
}
