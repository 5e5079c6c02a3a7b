// Package config loads the service configuration with viper: configs/config.yml,
// overridden by HEATING_CARD_* environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"heating_card/internal/logger"
	"heating_card/internal/models"
	"heating_card/internal/signals"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (HEATING_CARD_HASS_TOKEN).
const EnvPrefix = "HEATING_CARD"

var ErrMissingHassURL = errors.New("hass.url is required")

type Config struct {
	Port  string      `mapstructure:"port"`
	Log   LogConfig   `mapstructure:"log"`
	Hass  HassConfig  `mapstructure:"hass"`
	Auth  AuthConfig  `mapstructure:"auth"`
	MQTT  MQTTConfig  `mapstructure:"mqtt"`
	Cards []CardEntry `mapstructure:"cards"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type HassConfig struct {
	URL               string        `mapstructure:"url"` // ws://homeassistant.local:8123/api/websocket
	Token             string        `mapstructure:"token"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
	CommandTimeout    time.Duration `mapstructure:"command_timeout"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	Users      []models.User `mapstructure:"users"`
}

// MQTTConfig enables the MQTT signal sink when Broker is set.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// CardEntry is one card in the cards list.
type CardEntry struct {
	ID                string `mapstructure:"id"`
	models.CardConfig `mapstructure:",squash"`
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("log.format", logger.FormatConsole)
	v.SetDefault("hass.url", "")
	v.SetDefault("hass.token", "")
	v.SetDefault("hass.reconnect_interval", 5*time.Second)
	v.SetDefault("hass.command_timeout", 30*time.Second)
	v.SetDefault("hass.handshake_timeout", 10*time.Second)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "heating-card")
	v.SetDefault("mqtt.topic_prefix", signals.DefaultTopicPrefix)
}

// Load reads the config file into v and decodes it. An empty file means
// configs/config.yml; a missing default file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without. Cards are
// validated when the registry is built.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Hass.URL) == "" {
		return ErrMissingHassURL
	}
	return nil
}

// CardRecords converts the cards list for the registry.
func (c Config) CardRecords() []models.CardRecord {
	out := make([]models.CardRecord, 0, len(c.Cards))
	for _, e := range c.Cards {
		out = append(out, models.CardRecord{ID: e.ID, Config: e.CardConfig})
	}
	return out
}
