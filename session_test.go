package main

import (
	"bytes"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialSession(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/backdrop/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (int, int) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestSession_StreamsFramesAndRecords(t *testing.T) {
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(app.router())
	defer srv.Close()

	conn := dialSession(t, srv, "w=64&h=48&preset=calm&theme=light")

	w, h := readFrame(t, conn)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "move", X: 10, Y: 10}))
	require.NoError(t, conn.WriteJSON(clientMessage{Type: "click", X: 32, Y: 24}))
	require.NoError(t, conn.WriteJSON(clientMessage{Type: "theme", Theme: "dark"}))
	require.NoError(t, conn.WriteJSON(clientMessage{Type: "resize", Width: 80, Height: 40}))

	resized := false
	for i := 0; i < 100 && !resized; i++ {
		w, h := readFrame(t, conn)
		resized = w == 80 && h == 40
	}
	require.True(t, resized, "no frame at the new size")

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	var sessions []SessionRecord
	require.Eventually(t, func() bool {
		var err error
		sessions, err = app.store.Sessions(t.Context(), 10, false)
		return err == nil && len(sessions) == 1
	}, 3*time.Second, 10*time.Millisecond)

	rec := sessions[0]
	assert.Equal(t, "calm", rec.Preset)
	assert.EqualValues(t, 1, rec.Moves)
	assert.EqualValues(t, 1, rec.Clicks)
	assert.Positive(t, rec.Frames)
}

func TestSession_ClampsViewport(t *testing.T) {
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(app.router())
	defer srv.Close()

	conn := dialSession(t, srv, "w=4000&h=3000")
	defer conn.Close()

	w, h := readFrame(t, conn)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestSession_UnknownPreset(t *testing.T) {
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(app.router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/backdrop/ws?preset=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
