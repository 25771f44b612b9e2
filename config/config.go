package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	MqttBroker   string `mapstructure:"MQTT_BROKER"`
	MqttUser     string `mapstructure:"MQTT_USER"`
	MqttPassword string `mapstructure:"MQTT_PASSWORD"`

	BadgeName    string `mapstructure:"BADGE_NAME"`
	NetInterface string `mapstructure:"NET_INTERFACE"`

	GpioChip        string `mapstructure:"GPIO_CHIP"`
	PinFlash        int    `mapstructure:"PIN_FLASH"`
	PinConn         int    `mapstructure:"PIN_CONN"`
	PinAccept       int    `mapstructure:"PIN_ACCEPT"`
	PinRefuse       int    `mapstructure:"PIN_REFUSE"`
	PinVibrate      int    `mapstructure:"PIN_VIBRATE"`
	ButtonActiveLow bool   `mapstructure:"BUTTON_ACTIVE_LOW"`
	DebounceMs      int    `mapstructure:"DEBOUNCE_MS"`

	DisplayDevice string `mapstructure:"DISPLAY_DEVICE"`

	NatsUrl string `mapstructure:"NATS_URL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBName     string `mapstructure:"DB_NAME"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
}

var defaults = map[string]any{
	"MQTT_BROKER":       "tcp://10.2.117.37:1883",
	"MQTT_USER":         "",
	"MQTT_PASSWORD":     "",
	"BADGE_NAME":        "badge",
	"NET_INTERFACE":     "wlan0",
	"GPIO_CHIP":         "gpiochip0",
	"PIN_FLASH":         16,
	"PIN_CONN":          17,
	"PIN_ACCEPT":        18,
	"PIN_REFUSE":        19,
	"PIN_VIBRATE":       25,
	"BUTTON_ACTIVE_LOW": true,
	"DEBOUNCE_MS":       50,
	"DISPLAY_DEVICE":    "",
	"NATS_URL":          "",
	"DB_HOST":           "",
	"DB_PORT":           "5432",
	"DB_NAME":           "",
	"DB_USER":           "",
	"DB_PASSWORD":       "",
}

// LoadConfig reads path (a .env file) and overlays the environment. A missing
// file is not an error; the environment and defaults are used instead.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Error reading config file, using environment variables: %s", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.MqttBroker == "" {
		return errors.New("MQTT_BROKER is required")
	}
	if c.DebounceMs < 0 {
		return errors.New("DEBOUNCE_MS cannot be negative")
	}
	return nil
}

// JournalEnabled reports whether a database is configured.
func (c Config) JournalEnabled() bool { return c.DBHost != "" }
