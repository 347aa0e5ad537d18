package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Server  Server  `yaml:"server"`
	DB      DB      `yaml:"db"`
	Data    Data    `yaml:"data"`
	Samples Samples `yaml:"samples"`
	Maps    Maps    `yaml:"maps"`
}

type Server struct {
	// Address the HTTP API listens on
	Listen string `yaml:"listen" example:":5000" validate:"required"`
}

type DB struct {
	// Path to the users sqlite database
	Path string `yaml:"path" example:"data/users.db" validate:"required"`
}

type Data struct {
	// Writable persistent data directory (families, seeded samples)
	Dir string `yaml:"dir" example:"data" validate:"required"`
}

type Samples struct {
	// Canonical shipped samples directory inside the repo
	RepoDir string `yaml:"repo_dir" example:"data/samples" validate:"required"`
	// Older sample locations still probed for backwards compatibility
	LegacyDirs []string `yaml:"legacy_dirs"`
	// Demo dataset shown to anonymous visitors
	DefaultID string `yaml:"default_id" example:"stark" validate:"required"`
}

type Maps struct {
	// Background image per dataset id (lowercase keys)
	Backgrounds map[string]string `yaml:"backgrounds"`
	// Background used when a dataset has no entry above
	DefaultBackground string `yaml:"default_background" example:"img/maps/world-parchment.jpg" validate:"required"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Listen == "" {
		result.Server.Listen = ":5000"
	}
	if result.Data.Dir == "" {
		result.Data.Dir = "data"
	}
	if result.DB.Path == "" {
		result.DB.Path = "data/users.db"
	}
	if result.Samples.RepoDir == "" {
		result.Samples.RepoDir = "data/samples"
	}
	if len(result.Samples.LegacyDirs) == 0 {
		result.Samples.LegacyDirs = []string{"samples", "static/samples", "static/data"}
	}
	if result.Samples.DefaultID == "" {
		result.Samples.DefaultID = "stark"
	}
	if len(result.Maps.Backgrounds) == 0 {
		result.Maps.Backgrounds = map[string]string{
			"stark":     "img/maps/westeros-parchment.jpg",
			"lannister": "img/maps/westeros-parchment.jpg",
		}
	}
	if result.Maps.DefaultBackground == "" {
		result.Maps.DefaultBackground = "img/maps/world-parchment.jpg"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
