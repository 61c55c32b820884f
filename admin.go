// admin.go - privacy-conscious admin system and visitor tracking
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// adminSecrets are generated per process: restarting the server logs the
// admin out and rotates the IP hashing salt.
type adminSecrets struct {
	token string
	salt  string
}

func newAdminSecrets() (adminSecrets, error) {
	token, err := generateAdminToken()
	if err != nil {
		return adminSecrets{}, err
	}
	salt, err := generateAdminToken() // Use for IP hashing
	if err != nil {
		return adminSecrets{}, err
	}
	return adminSecrets{token: token, salt: salt}, nil
}

func generateAdminToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate admin token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Hash IP address for privacy compliance (consistent per IP)
func (a *App) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.secrets.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16] // Truncate for storage efficiency
}

// Middleware to check admin authentication
func (a *App) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_token")
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.secrets.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

var untrackedPrefixes = []string{
	"/static/",
	"/admin/",
	"/backdrop/",
	"/metrics",
	"/healthz",
	"/favicon",
	"/privacy",
}

// Privacy-conscious visitor tracking middleware
func (a *App) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashedIP := a.hashIP(c.ClientIP())
		userAgent := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.store.RecordVisit(ctx, hashedIP, userAgent, path, time.Now()); err != nil {
				a.log.WithError(err).Error("Error recording visitor")
			}
		}()
		c.Next()
	}
}

// cleanupOldVisitorData is run by the scheduler and on admin request.
func (a *App) cleanupOldVisitorData() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rowsDeleted, err := a.store.CleanupVisitors(ctx)
	if err != nil {
		a.log.WithError(err).Error("Error cleaning up old visitor data")
		return
	}
	if rowsDeleted > 0 {
		a.log.WithField("rows", rowsDeleted).Info("Privacy cleanup: removed visitor records older than 12 months")
	}
}

// Setup all admin routes
func (a *App) setupAdminRoutes(r *gin.Engine) {
	// Privacy policy route
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.AdminPassword)) == 1
		client := a.hashIP(c.ClientIP())

		if userOK && passOK {
			// Secure cookie (24 hours)
			c.SetCookie("admin_token", a.secrets.token, 3600*24, "/admin", "", false, true)
			a.log.WithField("client", client).Info("Admin login successful")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}

		a.log.WithField("client", client).Warn("Failed admin login attempt")
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", false, true)
		a.log.WithField("client", a.hashIP(c.ClientIP())).Info("Admin logout")
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(a.adminAuthMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			a.log.WithError(err).Error("Error loading admin stats")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}

		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":   stats,
			"presets": a.presetNames(),
		})
	})

	// Admin API endpoints for HTMX/AJAX
	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/sessions", func(c *gin.Context) {
		sessions, err := a.store.Sessions(c.Request.Context(), 200, false)
		if err != nil {
			a.log.WithError(err).Error("Error loading sessions")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load sessions",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-sessions.html", gin.H{
			"sessions": sessions,
		})
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := a.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			a.log.WithError(err).Error("Error loading visitors")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	adminGroup.DELETE("/sessions/:id", func(c *gin.Context) {
		id := c.Param("id")
		log := a.log.WithFields(logrus.Fields{"session": id, "client": a.hashIP(c.ClientIP())})

		deleted, err := a.store.DeleteSession(c.Request.Context(), id)
		if err != nil {
			log.WithError(err).Error("Error deleting session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		log.Info("Session deleted by admin")
		c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
	})

	adminGroup.POST("/privacy/delete-visitor-data", func(c *gin.Context) {
		go a.cleanupOldVisitorData()
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		a.log.WithField("client", a.hashIP(c.ClientIP())).Info("Admin stats exported")
		c.JSON(http.StatusOK, stats)
	})
}
