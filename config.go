package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/backdrop"
)

// Config is read from the environment (and .env, via godotenv autoload).
type Config struct {
	Port         string `env:"PORT,default=8080"`
	DatabasePath string `env:"DATABASE_PATH,default=portfolio.db"`
	TemplateGlob string `env:"TEMPLATE_GLOB,default=templates/*"`
	StaticDir    string `env:"STATIC_DIR,default=./static"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	// Backdrop animation
	PresetsPath   string  `env:"BACKDROP_PRESETS,default=presets.yaml"`
	FrameRate     int     `env:"BACKDROP_FPS,default=30"`
	MaxWidth      int     `env:"BACKDROP_MAX_WIDTH,default=1280"`
	MaxHeight     int     `env:"BACKDROP_MAX_HEIGHT,default=800"`
	SnapshotRate  float64 `env:"SNAPSHOT_RATE,default=2"`
	SnapshotBurst int     `env:"SNAPSHOT_BURST,default=4"`

	CleanupSchedule string `env:"PRIVACY_CLEANUP_SCHEDULE,default=@daily"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("failed to decode environment: %w", err)
	}

	// Default credentials for development (set both in production)
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
	}

	if cfg.FrameRate <= 0 || cfg.FrameRate > 60 {
		return cfg, fmt.Errorf("BACKDROP_FPS must be in [1,60], got %d", cfg.FrameRate)
	}
	if cfg.MaxWidth <= 0 || cfg.MaxHeight <= 0 {
		return cfg, fmt.Errorf("invalid backdrop max size %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
	return cfg, nil
}

func newLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
	}
	log.SetLevel(level)
	return log
}

// loadPresets falls back to the built-in presets when the file is missing
// or broken; a bad presets file should not keep the site down.
func loadPresets(cfg Config, log logrus.FieldLogger) map[string]backdrop.Config {
	presets, err := backdrop.LoadPresets(cfg.PresetsPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.PresetsPath).Warn("Using built-in backdrop presets")
		return backdrop.DefaultPresets()
	}
	log.WithField("presets", backdrop.PresetNames(presets)).Info("Backdrop presets loaded")
	return presets
}

func warnDefaultCredentials(log logrus.FieldLogger) {
	if gin.Mode() != gin.DebugMode {
		return
	}
	if os.Getenv("ADMIN_USERNAME") == "" {
		log.Warn("Using default admin username. Set ADMIN_USERNAME environment variable.")
	}
	if os.Getenv("ADMIN_PASSWORD") == "" {
		log.Warn("Using default admin password. Set ADMIN_PASSWORD environment variable.")
	}
}
