package config

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable consulted when no token flag is set.
const TokenEnv = "TAB_SESSION_TOKEN"

// Config holds all runtime configuration for the demo client.
type Config struct {
	ServerURL      string  `yaml:"server_url"`
	Token          string  `yaml:"token"`
	Texture        string  `yaml:"texture"`
	SpinRate       float64 `yaml:"spin_rate"`
	Quality        int     `yaml:"quality"`
	SwapchainDepth int     `yaml:"swapchain_depth"`
	Preview        bool    `yaml:"preview"`
}

func defaultConfig() *Config {
	return &Config{
		ServerURL:      "ws://localhost:7870/session",
		Texture:        "assets/sprite.png",
		SpinRate:       1.5,
		Quality:        80,
		SwapchainDepth: 3,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse resolves configuration from flags, an optional config file, and the
// environment. Token resolution order: -token flag, first positional
// argument, TAB_SESSION_TOKEN, config file.
func Parse() (*Config, error) {
	var (
		path    = flag.String("config", "", "Path to YAML config file")
		server  = flag.String("server", "", "Session server WebSocket URL")
		token   = flag.String("token", "", "Session token")
		texture = flag.String("texture", "", "Sprite texture PNG path")
		preview = flag.Bool("preview", false, "Open a local preview window")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *path != "" {
		loaded, err := Load(*path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *server != "" {
		cfg.ServerURL = *server
	}
	if *texture != "" {
		cfg.Texture = *texture
	}
	if *preview {
		cfg.Preview = true
	}
	switch {
	case *token != "":
		cfg.Token = *token
	case flag.NArg() > 0:
		cfg.Token = flag.Arg(0)
	case os.Getenv(TokenEnv) != "":
		cfg.Token = os.Getenv(TokenEnv)
	}
	return cfg, nil
}
