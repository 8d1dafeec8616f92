// Package server delivers assembled scenes to browser viewers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blockview/internal/assembly"
	"blockview/internal/profiling"
	"blockview/internal/scene"
	"blockview/internal/textures"
	"blockview/pkg/blockmodel"
)

// Source produces the current model document.
type Source func() (*blockmodel.Document, error)

// Options configures a Server.
type Options struct {
	TexturesDir    string
	TextureBaseURL string
	// Textures is optional; when set, materials carry decode handles.
	Textures *textures.Cache
	Profiler *profiling.Recorder
	// Pool is optional; see assembly.Walker.
	Pool *assembly.Pool
}

type Server struct {
	source Source
	opts   Options
	log    *log.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	doc     []byte
	frame   []byte
	current *scene.Context
	clients map[chan []byte]struct{}
}

func New(src Source, opts Options, logger *log.Logger) *Server {
	return &Server{
		source: src,
		opts:   opts,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[chan []byte]struct{}),
	}
}

// Reload rebuilds the scene from the source and pushes it to every
// connected viewer. On failure the previous scene stays in place.
func (s *Server) Reload() (assembly.Report, error) {
	doc, err := s.source()
	if err != nil {
		return assembly.Report{}, err
	}
	rawDoc, err := json.Marshal(doc)
	if err != nil {
		return assembly.Report{}, err
	}

	ctx := scene.New(s.opts.Textures)
	rep, err := ctx.Populate(doc, &assembly.Walker{Profiler: s.opts.Profiler, Pool: s.opts.Pool})
	if err != nil {
		ctx.Dispose()
		return rep, err
	}
	frame, err := json.Marshal(ctx.Export(s.opts.TextureBaseURL))
	if err != nil {
		ctx.Dispose()
		return rep, err
	}

	s.mu.Lock()
	old := s.current
	s.current, s.doc, s.frame = ctx, rawDoc, frame
	clients := make([]chan []byte, 0, len(s.clients))
	for ch := range s.clients {
		clients = append(clients, ch)
	}
	s.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	for _, ch := range clients {
		select {
		case ch <- frame:
		default:
			// slow viewer; it will catch up on the next reload
		}
	}
	return rep, nil
}

// Frame returns the last encoded scene.
func (s *Server) Frame() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Handler routes /model, /scene, /ws and the texture directory.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/model", s.jsonHandler(func() []byte {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.doc
	}))
	mux.HandleFunc("/scene", s.jsonHandler(s.Frame))
	mux.HandleFunc("/ws", s.wsHandler)
	if s.opts.TexturesDir != "" {
		prefix := "/" + strings.Trim(s.opts.TextureBaseURL, "/") + "/"
		if prefix == "//" {
			prefix = "/textures/"
		}
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.opts.TexturesDir))))
	}
	return mux
}

func (s *Server) jsonHandler(body func() []byte) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		b := body()
		if b == nil {
			http.Error(rw, "no model loaded", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write(b)
	}
}

func (s *Server) wsHandler(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := make(chan []byte, 4)
	s.mu.Lock()
	s.clients[out] = struct{}{}
	first := s.frame
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, out)
		s.mu.Unlock()
	}()

	if first != nil {
		out <- first
	}

	// Viewers never send; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// ListenAndServe runs until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Printf("serving on http://%s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close disposes the current scene.
func (s *Server) Close() {
	s.mu.Lock()
	cur := s.current
	s.current = nil
	s.mu.Unlock()
	if cur != nil {
		cur.Dispose()
	}
}
