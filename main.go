package main

import (
	"net/http"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/backdrop"
)

// App carries everything the handlers need. It is built once in main and
// never looked up globally.
type App struct {
	cfg     Config
	store   *Store
	log     *logrus.Logger
	metrics *Metrics
	limiter *RateLimiter
	presets map[string]backdrop.Config
	secrets adminSecrets
}

func newApp(cfg Config, store *Store, log *logrus.Logger, presets map[string]backdrop.Config) (*App, error) {
	secrets, err := newAdminSecrets()
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		store:   store,
		log:     log,
		metrics: NewMetrics(),
		limiter: NewRateLimiter(cfg.SnapshotRate, cfg.SnapshotBurst),
		presets: presets,
		secrets: secrets,
	}, nil
}

func (a *App) router() *gin.Engine {
	r := gin.Default()
	if a.cfg.TemplateGlob != "" {
		r.LoadHTMLGlob(a.cfg.TemplateGlob)
	}
	r.Use(a.visitorTrackingMiddleware())

	r.Static("/static", a.cfg.StaticDir)

	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"aboutMe":  AboutMe,
			"projects": Projects,
			"presets":  a.presetNames(),
			"fps":      a.cfg.FrameRate,
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	a.setupBackdropRoutes(r)
	a.setupAdminRoutes(r)
	return r
}

// startScheduler runs the periodic housekeeping jobs.
func (a *App) startScheduler() (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(a.cfg.CleanupSchedule, a.cleanupOldVisitorData); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc("@hourly", a.limiter.Cleanup); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func main() {
	cfg, err := loadConfig()
	log := newLogger(cfg)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	warnDefaultCredentials(log)

	store, err := OpenStore(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	app, err := newApp(cfg, store, log, loadPresets(cfg, log))
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize admin secrets")
	}
	log.Info("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.WithField("token", app.secrets.token).Debug("Admin token (dev only)")
	}
	log.Info("Privacy: visitor tracking enabled with hashed IP addresses")

	// Clean up old visitor data once at startup, then on schedule
	go app.cleanupOldVisitorData()
	scheduler, err := app.startScheduler()
	if err != nil {
		log.WithError(err).Fatal("Invalid PRIVACY_CLEANUP_SCHEDULE")
	}
	defer scheduler.Stop()

	log.WithField("port", cfg.Port).Info("Portfolio server starting")
	if err := app.router().Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
