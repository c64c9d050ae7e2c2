package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, read from configs/config.yml and
// overridable through BANTAY_* environment variables (dots become underscores).
type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Auth struct {
		SigningKey string        `mapstructure:"signing_key"`
		TokenTTL   time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Device   DeviceConfig   `mapstructure:"device"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Influx   InfluxConfig   `mapstructure:"influx"`
}

type DeviceConfig struct {
	ID            string        `mapstructure:"id"`
	BaseURL       string        `mapstructure:"base_url"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	StatusTimeout time.Duration `mapstructure:"status_timeout"`
	SyncTimeout   time.Duration `mapstructure:"sync_timeout"`
}

type MQTTConfig struct {
	BrokerURL   string `mapstructure:"broker_url"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         byte   `mapstructure:"qos"`
}

type QueueConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	FlushDelay   time.Duration `mapstructure:"flush_delay"` // negative sends back to back
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
	DedupActions []string      `mapstructure:"dedup_actions"`
}

type ScheduleConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	AlertTopic string   `mapstructure:"alert_topic"`
}

type InfluxConfig struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

const envPrefix = "BANTAY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("db.path", "bantaybot.db")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("device.poll_interval", 10*time.Second)
	v.SetDefault("device.status_timeout", 5*time.Second)
	v.SetDefault("device.sync_timeout", 30*time.Second)
	v.SetDefault("mqtt.client_id", "bantaybot-dashboard")
	v.SetDefault("mqtt.topic_prefix", "bantaybot")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.flush_delay", 500*time.Millisecond)
	v.SetDefault("queue.send_timeout", 5*time.Second)
	v.SetDefault("queue.dedup_actions", []string{
		"set-volume", "rotate-head", "set-sensitivity", "enable-detection", "disable-detection",
	})
	v.SetDefault("schedule.tick", 60*time.Second)
	v.SetDefault("kafka.alert_topic", "bantaybot.alerts")
	v.SetDefault("influx.org", "bantaybot")
	v.SetDefault("influx.bucket", "sensors")
}

// Load reads the config file at path. An empty path searches ./configs/config.yml.
// A missing file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("queue.max_attempts must be >= 1, got %d", c.Queue.MaxAttempts)
	}
	if c.Device.PollInterval <= 0 {
		return fmt.Errorf("device.poll_interval must be positive, got %s", c.Device.PollInterval)
	}
	if c.Schedule.Tick <= 0 {
		return fmt.Errorf("schedule.tick must be positive, got %s", c.Schedule.Tick)
	}
	return nil
}
