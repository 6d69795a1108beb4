package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/beatdex/beat"
	"github.com/jsphweid/beatdex/dataset"
	"github.com/jsphweid/beatdex/logging"
	"github.com/jsphweid/beatdex/model"
)

const defaultReloadDelay = 500 * time.Millisecond

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves tracks and annotations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Server.Addr
			}
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			s := NewServer(opts.logger, defaultReloadDelay)
			if err := s.Add(ds, opts.cfg.DataHome); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.ListenAndServe(ctx, addr, opts.cfg.Server.AllowedOrigins)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

type servedDataset struct {
	ds       dataset.Dataset
	dataHome string
	reload   func(f func())

	mu       sync.RWMutex
	trackIDs []string
}

func (sd *servedDataset) refresh() error {
	ids, err := sd.ds.TrackIDs(sd.dataHome)
	if err != nil {
		return err
	}
	sd.mu.Lock()
	sd.trackIDs = ids
	sd.mu.Unlock()
	return nil
}

func (sd *servedDataset) listing() []string {
	sd.mu.RLock()
	defer sd.mu.RUnlock()
	return append([]string{}, sd.trackIDs...)
}

// Server exposes registered datasets over HTTP. Track listings are read once
// and refreshed on reload; annotations are loaded on every request.
type Server struct {
	logger      *slog.Logger
	reloadDelay time.Duration

	mu       sync.RWMutex
	datasets map[string]*servedDataset
}

func NewServer(logger *slog.Logger, reloadDelay time.Duration) *Server {
	return &Server{
		logger:      logger,
		reloadDelay: reloadDelay,
		datasets:    map[string]*servedDataset{},
	}
}

// Add serves ds from dataHome, reading its track listing.
func (s *Server) Add(ds dataset.Dataset, dataHome string) error {
	sd := &servedDataset{
		ds:       ds,
		dataHome: dataHome,
		reload:   debounce.New(s.reloadDelay),
	}
	if err := sd.refresh(); err != nil {
		return errors.Wrapf(err, "could not list %s", ds.Name)
	}
	s.logger.Info("serving dataset", "dataset", ds.Name, "data_home", dataHome, "tracks", len(sd.trackIDs))

	s.mu.Lock()
	s.datasets[ds.Name] = sd
	s.mu.Unlock()
	return nil
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/datasets", s.handleDatasets).Methods("GET")
	router.HandleFunc("/datasets/{name}/tracks", s.handleTracks).Methods("GET")
	router.HandleFunc("/datasets/{name}/tracks/{id}", s.handleTrack).Methods("GET")
	router.HandleFunc("/datasets/{name}/tracks/{id}/beats", s.handleBeats).Methods("GET")
	router.HandleFunc("/datasets/{name}/tracks/{id}/sections", s.handleSections).Methods("GET")
	router.HandleFunc("/datasets/{name}/tracks/{id}/jams", s.handleJAMS).Methods("GET")
	router.HandleFunc("/datasets/{name}/reload", s.handleReload).Methods("POST")
	return router
}

// Handler wraps the router with CORS and request logging.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	return logging.Middleware(s.logger)(c.Handler(s.Router()))
}

func (s *Server) ListenAndServe(ctx context.Context, addr string, allowedOrigins []string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(allowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("could not write response", "status", status, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeResponse(w, status, model.ErrorResponse{Error: msg})
}

func (s *Server) served(w http.ResponseWriter, r *http.Request) (*servedDataset, bool) {
	name := mux.Vars(r)["name"]
	s.mu.RLock()
	sd, ok := s.datasets[name]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown dataset "+name)
	}
	return sd, ok
}

func (s *Server) track(w http.ResponseWriter, r *http.Request) (dataset.Track, bool) {
	sd, ok := s.served(w, r)
	if !ok {
		return nil, false
	}
	id := mux.Vars(r)["id"]
	track, err := sd.ds.Track(id, sd.dataHome)
	if errors.Is(err, dataset.ErrUnknownTrack) {
		s.writeError(w, http.StatusNotFound, "unknown track "+id)
		return nil, false
	}
	if err != nil {
		s.internalError(w, r, err)
		return nil, false
	}
	return track, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.datasets))
	for _, name := range dataset.Names() {
		if _, ok := s.datasets[name]; ok {
			names = append(names, name)
		}
	}
	s.mu.RUnlock()
	s.writeResponse(w, http.StatusOK, model.DatasetsResponse{Datasets: names})
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	sd, ok := s.served(w, r)
	if !ok {
		return
	}
	s.writeResponse(w, http.StatusOK, model.TracksResponse{Dataset: sd.ds.Name, TrackIDs: sd.listing()})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := s.track(w, r)
	if !ok {
		return
	}
	s.writeResponse(w, http.StatusOK, track.Summary())
}

func (s *Server) handleBeats(w http.ResponseWriter, r *http.Request) {
	track, ok := s.track(w, r)
	if !ok {
		return
	}
	beats, err := track.Beats()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if beats == nil {
		s.writeError(w, http.StatusNotFound, "no beat annotation for "+track.ID())
		return
	}
	s.writeResponse(w, http.StatusOK, model.BeatsResponse{
		TrackID:   track.ID(),
		Times:     beats.Times(),
		Positions: beats.Positions(),
		Meter:     beat.Meter(beats.Positions()),
	})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	track, ok := s.track(w, r)
	if !ok {
		return
	}
	sections, err := track.Sections()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if sections == nil {
		s.writeError(w, http.StatusNotFound, "no section annotation for "+track.ID())
		return
	}

	res := model.SectionsResponse{TrackID: track.ID(), Sections: []model.Section{}}
	for i := 0; i < sections.Len(); i++ {
		iv, label := sections.At(i)
		res.Sections = append(res.Sections, model.Section{Start: iv[0], End: iv[1], Label: label})
	}
	s.writeResponse(w, http.StatusOK, res)
}

func (s *Server) handleJAMS(w http.ResponseWriter, r *http.Request) {
	track, ok := s.track(w, r)
	if !ok {
		return
	}
	j, err := track.JAMS()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := j.Encode(w); err != nil {
		s.logger.Error("could not write jams", "track_id", track.ID(), "error", err)
	}
}

// handleReload schedules a listing refresh. Bursts of reload requests
// collapse into one refresh after the reload delay.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sd, ok := s.served(w, r)
	if !ok {
		return
	}
	sd.reload(func() {
		if err := sd.refresh(); err != nil {
			s.logger.Error("reload failed", "dataset", sd.ds.Name, "error", err)
			return
		}
		s.logger.Info("reloaded dataset", "dataset", sd.ds.Name, "tracks", len(sd.listing()))
	})
	s.writeResponse(w, http.StatusAccepted, model.ReloadResponse{Dataset: sd.ds.Name, Status: "scheduled"})
}
