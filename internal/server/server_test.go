package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockview/internal/scene"
	"blockview/internal/textures"
	"blockview/pkg/blockmodel"
)

const houseJSON = `{
	"name": "house",
	"regions": { "main": {
		"textures": { "tex1": "stone.png" },
		"blocks": [
			{ "from_coordinate": [0,0,0], "to_coordinate": [16,16,16], "texture": "tex1", "positions": [[0,0,0],[1,0,0]] },
			{ "from_coordinate": [0,0,0], "to_coordinate": [16,16,16], "texture": "nope", "positions": [[2,0,0]] }
		]
	} }
}`

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "[test] ", 0)
}

func staticSource(data string) Source {
	return func() (*blockmodel.Document, error) {
		return blockmodel.Parse([]byte(data))
	}
}

func TestReloadAndHTTP(t *testing.T) {
	texDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(texDir, "stone.png"), []byte("png"), 0o644))

	var logs bytes.Buffer
	s := New(staticSource(houseJSON), Options{TexturesDir: texDir, TextureBaseURL: "/textures"}, testLogger(&logs))
	defer s.Close()

	rep, err := s.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Meshes)
	require.Len(t, rep.Diagnostics, 1)

	LogReport(s.log, rep)
	assert.Contains(t, logs.String(), "assembled 1 blocks: 2 meshes, 0 connectors")
	assert.Contains(t, logs.String(), "Warning: skipped region \"main\" block 1")

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/scene")
	require.NoError(t, err)
	var f scene.Frame
	require.NoError(t, json.NewDecoder(res.Body).Decode(&f))
	res.Body.Close()
	assert.Equal(t, "house", f.Name)
	require.Len(t, f.Meshes, 2)
	assert.Equal(t, [3]float32{16, 0, 0}, f.Meshes[1].Position)
	assert.Equal(t, "/textures/stone.png", f.Materials[0].URL)

	res, err = http.Get(ts.URL + "/model")
	require.NoError(t, err)
	var doc blockmodel.Document
	require.NoError(t, json.NewDecoder(res.Body).Decode(&doc))
	res.Body.Close()
	assert.Len(t, doc.Regions["main"].Blocks, 2)

	res, err = http.Get(ts.URL + "/textures/stone.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "png", string(body))

	res, err = http.Post(ts.URL+"/scene", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestSceneBeforeLoad(t *testing.T) {
	s := New(staticSource(houseJSON), Options{}, testLogger(&bytes.Buffer{}))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/scene")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestReloadFailureKeepsScene(t *testing.T) {
	fail := false
	src := func() (*blockmodel.Document, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return blockmodel.Parse([]byte(houseJSON))
	}
	s := New(src, Options{}, testLogger(&bytes.Buffer{}))
	defer s.Close()

	_, err := s.Reload()
	require.NoError(t, err)
	before := s.Frame()

	fail = true
	_, err = s.Reload()
	assert.Error(t, err)
	assert.Equal(t, before, s.Frame())
}

func TestWebsocketPushesFrames(t *testing.T) {
	s := New(staticSource(houseJSON), Options{}, testLogger(&bytes.Buffer{}))
	defer s.Close()
	_, err := s.Reload()
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(s.Frame()), string(msg))

	// wait until the handler registered the client before reloading
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, err = s.Reload()
	require.NoError(t, err)
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	var f scene.Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	assert.Len(t, f.Meshes, 2)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "house.json")
	require.NoError(t, os.WriteFile(path, []byte(houseJSON), 0o644))

	src := func() (*blockmodel.Document, error) { return blockmodel.LoadFile(path) }
	s := New(src, Options{}, testLogger(&bytes.Buffer{}))
	defer s.Close()
	_, err := s.Reload()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, path) }()
	defer func() {
		cancel()
		<-done
	}()

	single := strings.Replace(houseJSON, "[[0,0,0],[1,0,0]]", "[[0,0,0]]", 1)
	// give the watcher a moment to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(single), 0o644))

	require.Eventually(t, func() bool {
		var f scene.Frame
		if err := json.Unmarshal(s.Frame(), &f); err != nil {
			return false
		}
		return len(f.Meshes) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestReloadKeepsSharedTextureHandles(t *testing.T) {
	texDir := t.TempDir()
	f, err := os.Create(filepath.Join(texDir, "stone.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 16, 16))))
	require.NoError(t, f.Close())

	cache := textures.NewCache(texDir, "/textures")
	defer cache.Close()
	s := New(staticSource(houseJSON), Options{Textures: cache}, testLogger(&bytes.Buffer{}))
	defer s.Close()

	handle := func() *textures.Handle {
		s.mu.RLock()
		defer s.mu.RUnlock()
		m, ok := s.current.Material("stone.png")
		require.True(t, ok)
		return m.Handle
	}

	_, err = s.Reload()
	require.NoError(t, err)
	first := handle()
	require.NotNil(t, first)

	for i := 0; i < 2; i++ {
		_, err = s.Reload()
		require.NoError(t, err)
		assert.Equal(t, 1, cache.Len(), "reload %d", i+2)
		assert.Same(t, first, handle(), "reload %d", i+2)
	}

	s.Close()
	assert.Equal(t, 0, cache.Len())
}
