package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Signaling SignalingConfig `yaml:"signaling"`
	Admin     AdminConfig     `yaml:"admin"`
	WebRTC    WebRTCConfig    `yaml:"webrtc"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SignalingConfig carries the liveness constants. ReconnectGrace governs
// join-time eviction of a reloading client's old record; InactivityTimeout
// governs the sweeper. They are distinct on purpose: the grace period must
// stay shorter than the absolute timeout.
type SignalingConfig struct {
	ReconnectGrace    time.Duration `yaml:"reconnect_grace" env-default:"30s"`
	InactivityTimeout time.Duration `yaml:"inactivity_timeout" env-default:"90s"`
	SweepInterval     time.Duration `yaml:"sweep_interval" env-default:"45s"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" env-default:"25s"`
	EventBuffer       int           `yaml:"event_buffer" env-default:"16"`
}

type AdminConfig struct {
	Token string `yaml:"token" env:"ADMIN_TOKEN"`
}

type WebRTCConfig struct {
	STUNServers []string `yaml:"stun_servers"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.WebRTC.STUNServers) == 0 {
		c.WebRTC.STUNServers = []string{"stun:stun.l.google.com:19302"}
	}
}
