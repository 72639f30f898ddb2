package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const debounceDelay = 100 * time.Millisecond

// DevServer serves a built site, rebuilding and reloading connected
// browsers when the docs tree changes.
type DevServer struct {
	builder *Builder
	port    int
	watch   bool
	logger  *slog.Logger

	mu        sync.RWMutex // held while rebuilding so pages are never served half-written
	clients   map[chan struct{}]struct{}
	clientsMu sync.Mutex
}

// DevConfig holds configuration for the dev server.
type DevConfig struct {
	Port  int
	Watch bool
}

// NewDevServer creates a development server around a builder.
func NewDevServer(b *Builder, cfg DevConfig) *DevServer {
	return &DevServer{
		builder: b,
		port:    cfg.Port,
		watch:   cfg.Watch,
		logger:  b.cfg.Logger,
		clients: make(map[chan struct{}]struct{}),
	}
}

// Handler returns the HTTP handler serving the output directory.
func (s *DevServer) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)
	r.Get("/__reload", s.handleSSE)
	r.Get("/*", s.handleFile)
	return r
}

// Serve builds the site once and serves it until ctx is cancelled.
func (s *DevServer) Serve(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		s.logger.Info("dev server running", "addr", fmt.Sprintf("http://localhost:%d", s.port), "docs", s.builder.cfg.DocsDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down dev server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *DevServer) rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.builder.Build(ctx)
	return err
}

// watchFiles rebuilds after changes to the docs tree settle.
func (s *DevServer) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, s.builder.cfg.DocsDir); err != nil {
		return fmt.Errorf("failed to watch docs dir: %w", err)
	}

	var (
		timer   *time.Timer
		trigger = make(chan string, 1)
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = watchDir(watcher, event.Name)
				}
			}
			if !relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			name := event.Name
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- name:
				default:
				}
			})

		case name := <-trigger:
			s.logger.Info("change detected", "file", filepath.Base(name))
			if err := s.rebuild(ctx); err != nil {
				s.logger.Error("rebuild failed", "error", err)
				continue
			}
			s.notifyClients()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".md")
}

// watchDir adds dir and its subdirectories, skipping hidden and "_" prefixed
// ones, which is where build output usually lives.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// handleFile serves files from the output directory. Extensionless paths
// fall back to the matching .html file, and HTML responses get the live
// reload script.
func (s *DevServer) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urlPath := strings.TrimPrefix(r.URL.Path, s.builder.base)
	file, ok := s.resolve(urlPath)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !strings.EqualFold(filepath.Ext(file), ".html") {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, file)
		return
	}

	data, err := os.ReadFile(file) //nolint:gosec // G304: resolved inside the output directory
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(injectReload(data))
}

// resolve maps a URL path onto a file in the output directory.
func (s *DevServer) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	root := s.builder.cfg.OutputDir
	base := filepath.Join(root, filepath.FromSlash(clean))

	candidates := []string{base}
	switch {
	case strings.HasSuffix(urlPath, "/") || clean == "/":
		candidates = []string{filepath.Join(base, "index.html")}
	case path.Ext(clean) == "":
		candidates = append(candidates, base+".html", filepath.Join(base, "index.html"))
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, true
		}
	}
	return "", false
}

func injectReload(page []byte) []byte {
	script := []byte("<script>" + liveReloadScript + "</script>\n")
	if i := bytes.LastIndex(page, []byte("</body>")); i >= 0 {
		out := make([]byte, 0, len(page)+len(script))
		out = append(out, page[:i]...)
		out = append(out, script...)
		return append(out, page[i:]...)
	}
	return append(page, script...)
}

// handleSSE handles Server-Sent Events for live reload.
func (s *DevServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	ch := make(chan struct{}, 1)
	s.clientsMu.Lock()
	s.clients[ch] = struct{}{}
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, ch)
		s.clientsMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// notifyClients sends a reload signal to every connected browser.
func (s *DevServer) notifyClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// clientCount reports connected live-reload clients.
func (s *DevServer) clientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

const liveReloadScript = `
(function() {
  var es = new EventSource('/__reload');
  es.onmessage = function(e) {
    if (e.data === 'reload') {
      window.location.reload();
    }
  };
  es.onerror = function() {
    es.close();
    setTimeout(function() { window.location.reload(); }, 1000);
  };
})();
`
