package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/backdrop"
)

const (
	defaultWidth     = 640
	defaultHeight    = 360
	maxSnapshotFrame = 600
	writeWait        = 2 * time.Second
	maxMessageSize   = 1024
)

// Ambient colors per page theme. The page owns the theme; sessions only
// swap the color their engine reads.
var palettes = map[string]gg.RGBA{
	"dark":  gg.RGB(0.39, 0.71, 1.0),
	"light": gg.RGB(0.16, 0.24, 0.47),
}

func palette(theme string) gg.RGBA {
	if c, ok := palettes[theme]; ok {
		return c
	}
	return palettes["dark"]
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// clientMessage is a JSON text frame sent by the page.
type clientMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Theme  string  `json:"theme"`
	Preset string  `json:"preset"`
}

func (a *App) presetNames() []string {
	return backdrop.PresetNames(a.presets)
}

func (a *App) preset(name string) (backdrop.Config, bool) {
	if name == "" {
		name = "default"
	}
	cfg, ok := a.presets[name]
	return cfg, ok
}

// clampViewport bounds a client-requested size to what the server will
// render. Missing dimensions fall back to the default.
func (a *App) clampViewport(w, h int) (int, int) {
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return min(w, a.cfg.MaxWidth), min(h, a.cfg.MaxHeight)
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func (a *App) setupBackdropRoutes(r *gin.Engine) {
	group := r.Group("/backdrop")

	group.GET("/presets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"names":   a.presetNames(),
			"presets": a.presets,
		})
	})

	group.GET("/snapshot.png", a.limiter.Middleware(), a.handleSnapshot)
	group.GET("/ws", a.handleSession)
}

// handleSnapshot simulates a fresh engine for the requested number of
// frames and returns the last one as PNG.
func (a *App) handleSnapshot(c *gin.Context) {
	start := time.Now()
	fail := func(status int, msg string) {
		a.metrics.snapshotsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		c.JSON(status, gin.H{"error": msg})
	}

	w, okW := queryInt(c, "w", defaultWidth)
	h, okH := queryInt(c, "h", defaultHeight)
	frames, okF := queryInt(c, "frames", 60)
	seed, okS := queryInt(c, "seed", 1)
	if !okW || !okH || !okF || !okS || frames < 0 || frames > maxSnapshotFrame {
		fail(http.StatusBadRequest, "invalid snapshot parameters")
		return
	}
	w, h = a.clampViewport(w, h)

	cfg, ok := a.preset(c.Query("preset"))
	if !ok {
		fail(http.StatusBadRequest, "unknown preset")
		return
	}

	canvas, err := backdrop.NewCanvas(w, h)
	if err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}
	defer canvas.Close()

	engine, err := backdrop.New(canvas, cfg,
		backdrop.WithSeed(uint64(seed)),
		backdrop.WithColor(backdrop.NewThemeColor(palette(c.Query("theme")))),
		backdrop.WithLogger(a.log.WithField("component", "snapshot")),
	)
	if err != nil {
		a.log.WithError(err).Error("Failed to build snapshot engine")
		fail(http.StatusInternalServerError, "failed to render snapshot")
		return
	}
	if c.Query("burst") == "1" {
		engine.Click(float64(w)/2, float64(h)/2)
	}
	for i := 0; i < frames; i++ {
		engine.Update()
	}

	var buf bytes.Buffer
	if err := engine.Render(); err == nil {
		err = canvas.EncodePNG(&buf)
	}
	if err != nil {
		a.log.WithError(err).Error("Failed to render snapshot")
		fail(http.StatusInternalServerError, "failed to render snapshot")
		return
	}

	a.metrics.snapshotsTotal.WithLabelValues("200").Inc()
	a.metrics.snapshotSeconds.Observe(time.Since(start).Seconds())
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// handleSession upgrades to a websocket and streams live frames. The
// connection owns one engine; the driver goroutine is its only writer.
func (a *App) handleSession(c *gin.Context) {
	presetName := c.DefaultQuery("preset", "default")
	cfg, ok := a.preset(presetName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown preset"})
		return
	}
	qw, _ := queryInt(c, "w", defaultWidth)
	qh, _ := queryInt(c, "h", defaultHeight)
	w, h := a.clampViewport(qw, qh)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	rec := SessionRecord{
		ID:        uuid.New().String(),
		HashedIP:  a.hashIP(c.ClientIP()),
		Preset:    presetName,
		StartedAt: time.Now(),
	}
	log := a.log.WithFields(logrus.Fields{"session": rec.ID, "client": rec.HashedIP})

	canvas, err := backdrop.NewCanvas(w, h)
	if err != nil {
		log.WithError(err).Error("Failed to allocate canvas")
		return
	}
	defer canvas.Close()

	theme := backdrop.NewThemeColor(palette(c.Query("theme")))
	engine, err := backdrop.New(canvas, cfg, backdrop.WithColor(theme), backdrop.WithLogger(log))
	if err != nil {
		log.WithError(err).Error("Failed to build backdrop engine")
		return
	}

	a.metrics.sessionsTotal.Inc()
	a.metrics.activeSessions.Inc()
	defer a.metrics.activeSessions.Dec()
	log.WithFields(logrus.Fields{"width": w, "height": h, "preset": presetName}).Info("Backdrop session started")

	var buf bytes.Buffer
	handle := backdrop.Start(context.Background(), engine, backdrop.NewTicker(a.cfg.FrameRate), func(*backdrop.Engine) error {
		start := time.Now()
		buf.Reset()
		if err := canvas.EncodePNG(&buf); err != nil {
			return err
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			return err
		}
		a.metrics.framesTotal.Inc()
		a.metrics.frameSeconds.Observe(time.Since(start).Seconds())
		return nil
	})

	// A failed write stops the driver; closing the socket then unblocks the
	// read loop below.
	go func() {
		<-handle.Done()
		conn.Close()
	}()

	var moves, clicks atomic.Int64
	conn.SetReadLimit(maxMessageSize)
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if !a.dispatchMessage(handle, theme, msg, &moves, &clicks, log) {
			break
		}
	}

	handle.Stop()
	if err := handle.Err(); err != nil && !errors.Is(err, backdrop.ErrStopped) {
		log.WithError(err).Debug("Backdrop driver ended with error")
	}

	rec.Duration = time.Since(rec.StartedAt)
	rec.Frames = int64(handle.Frames())
	rec.Moves = moves.Load()
	rec.Clicks = clicks.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.RecordSession(ctx, rec); err != nil {
		log.WithError(err).Error("Failed to record backdrop session")
	}
	log.WithFields(logrus.Fields{
		"frames":   rec.Frames,
		"clicks":   rec.Clicks,
		"duration": rec.Duration.Round(time.Millisecond).String(),
	}).Info("Backdrop session ended")
}

// dispatchMessage turns a client message into engine input. It returns
// false once the driver no longer accepts events.
func (a *App) dispatchMessage(handle *backdrop.Handle, theme *backdrop.ThemeColor, msg clientMessage,
	moves, clicks *atomic.Int64, log logrus.FieldLogger) bool {
	label := msg.Type
	switch label {
	case "resize", "move", "click", "theme", "preset":
	default:
		label = "unknown"
	}
	a.metrics.eventsTotal.WithLabelValues(label).Inc()

	switch msg.Type {
	case "resize":
		w, h := a.clampViewport(msg.Width, msg.Height)
		return handle.Dispatch(backdrop.Event{Kind: backdrop.EventResize, Width: w, Height: h})
	case "move":
		moves.Add(1)
		return handle.Dispatch(backdrop.Event{Kind: backdrop.EventMove, X: msg.X, Y: msg.Y})
	case "click":
		clicks.Add(1)
		return handle.Dispatch(backdrop.Event{Kind: backdrop.EventClick, X: msg.X, Y: msg.Y})
	case "theme":
		theme.Set(palette(msg.Theme))
	case "preset":
		cfg, ok := a.preset(msg.Preset)
		if !ok {
			log.WithField("preset", msg.Preset).Debug("Ignoring unknown preset")
			return true
		}
		return handle.Dispatch(backdrop.Event{Kind: backdrop.EventPreset, Config: &cfg})
	default:
		log.WithField("type", msg.Type).Debug("Ignoring unknown client message")
	}
	return true
}
