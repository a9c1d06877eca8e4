package cli

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/snapshot"
	"github.com/layerview/layerview/pkg/view"
)

// newServeCmd creates the serve command, which exposes the configured view
// state over HTTP.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the view state over HTTP",
		Long: `Serve builds the configured layer stack and exposes its state through a
JSON API. Front-ends poll /v1/state (or the per-layer data endpoints) and
push pointer events and viewport transforms back. Snapshots of the current
state can be saved to and restored from the configured snapshot store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			sink := newMemorySink()
			v, err := cfg.buildView(ctx, sink)
			if err != nil {
				return err
			}

			store, err := cfg.openSnapshotStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			srv := &viewServer{
				view:  v,
				sink:  sink,
				store: store,
				maxH:  cfg.View.BufferMaxHeight,
				maxW:  cfg.View.BufferMaxWidth,
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 5 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			printSuccess("Serving %d layer(s)", v.Len())
			printKeyValue("address", "http://"+addr)
			printKeyValue("config", configPath)
			printNewline()
			logger.Info("listening", "addr", addr)

			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "layerview.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8415", "listen address")

	return cmd
}

// memorySink retains the latest view state for polling clients.
type memorySink struct {
	mu sync.RWMutex

	layersData    map[string][]byte
	layersOptions map[string][]byte
	domain        geom.Rect
	transform     [3]float64
	loading       bool
	syncGroup     string
}

func newMemorySink() *memorySink {
	return &memorySink{
		layersData:    map[string][]byte{},
		layersOptions: map[string][]byte{},
	}
}

func (s *memorySink) SetLayersData(data map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layersData = data
}

func (s *memorySink) SetLayersOptions(options map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layersOptions = options
}

func (s *memorySink) SetDomain(domain geom.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
}

func (s *memorySink) SetTransform(y, x, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = [3]float64{y, x, scale}
}

func (s *memorySink) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *memorySink) SetSyncGroup(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGroup = group
}

// stateResponse is the wire shape of GET /v1/state.
type stateResponse struct {
	LayersData    map[string]json.RawMessage `json:"layers_data"`
	LayersOptions map[string]json.RawMessage `json:"layers_options"`
	Domain        []float64                  `json:"domain"`
	Transform     [3]float64                 `json:"transform"`
	Loading       bool                       `json:"loading"`
	SyncGroup     string                     `json:"sync_group,omitempty"`
}

func (s *memorySink) state() stateResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := stateResponse{
		LayersData:    make(map[string]json.RawMessage, len(s.layersData)),
		LayersOptions: make(map[string]json.RawMessage, len(s.layersOptions)),
		Domain:        []float64{s.domain.H, s.domain.W, s.domain.Y, s.domain.X},
		Transform:     s.transform,
		Loading:       s.loading,
		SyncGroup:     s.syncGroup,
	}
	for alias, raw := range s.layersData {
		resp.LayersData[alias] = json.RawMessage(raw)
	}
	for alias, raw := range s.layersOptions {
		resp.LayersOptions[alias] = json.RawMessage(raw)
	}
	return resp
}

func (s *memorySink) layerData(alias string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.layersData[alias]
	return raw, ok
}

func (s *memorySink) layerOptions(alias string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.layersOptions[alias]
	return raw, ok
}

// viewServer serves the HTTP API around one view.
type viewServer struct {
	view  *view.View2D
	sink  *memorySink
	store snapshot.Store

	maxH, maxW int

	// mu serializes mutating view access; the layer collection itself is
	// not goroutine-safe.
	mu sync.Mutex
}

func (s *viewServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/layers/{alias}/data", s.handleLayerData)
		r.Get("/layers/{alias}/options", s.handleLayerOptions)
		r.Get("/layers/{alias}/item", s.handleLayerItem)
		r.Post("/events", s.handleEvent)
		r.Post("/transform", s.handleTransform)

		r.Get("/snapshots", s.handleSnapshotList)
		r.Put("/snapshots/{id}", s.handleSnapshotSave)
		r.Get("/snapshots/{id}", s.handleSnapshotGet)
		r.Delete("/snapshots/{id}", s.handleSnapshotDelete)
	})

	return r
}

func (s *viewServer) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sink.state())
}

func (s *viewServer) handleLayerData(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	raw, ok := s.sink.layerData(alias)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeAliasNotFound, "no layer %q", alias))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *viewServer) handleLayerOptions(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	raw, ok := s.sink.layerOptions(alias)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeAliasNotFound, "no layer %q", alias))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *viewServer) handleLayerItem(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	var pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := decodeQueryInts(r, map[string]*int{"x": &pos.X, "y": &pos.Y}); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	layer, err := s.view.Layer(alias)
	if err != nil {
		s.mu.Unlock()
		writeError(w, err)
		return
	}
	item, err := layer.FetchItem(pos.X, pos.Y)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *viewServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string         `json:"name"`
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidEvent, err, "invalid event body"))
		return
	}

	s.mu.Lock()
	err := s.view.DispatchEvent(body.Name, body.Data)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched"})
}

func (s *viewServer) handleTransform(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Y     float64 `json:"y"`
		X     float64 `json:"x"`
		Scale float64 `json:"scale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidEvent, err, "invalid transform body"))
		return
	}

	s.mu.Lock()
	s.view.SetTransform(body.Y, body.X, body.Scale)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *viewServer) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *viewServer) handleSnapshotSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	snap, err := snapshot.Capture(id, s.view.List, s.maxH, s.maxW)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.Save(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": snap.ID, "layers": len(snap.Layers)})
}

func (s *viewServer) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *viewServer) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch {
	case code == errors.ErrCodeAliasNotFound || code == errors.ErrCodeLayerNotFound ||
		code == errors.ErrCodeNotFound || code == errors.ErrCodeIndexRange:
		status = http.StatusNotFound
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"code": string(code), "error": err.Error()})
}

func decodeQueryInts(r *http.Request, fields map[string]*int) error {
	q := r.URL.Query()
	for name, dst := range fields {
		raw := q.Get(name)
		if raw == "" {
			return errors.New(errors.ErrCodeInvalidEvent, "missing query parameter %q", name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidEvent, err, "invalid query parameter %q", name)
		}
		*dst = v
	}
	return nil
}
