package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stuaninauts/fipe-cli/internal/engine"
	"github.com/stuaninauts/fipe-cli/internal/export"
	"github.com/stuaninauts/fipe-cli/internal/lookup"
	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/store"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query engine over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tbl, err := table.Load(cfg.Data.DatabasePath)
		if err != nil {
			return err
		}
		zap.L().Info("canonical table loaded",
			zap.String("path", cfg.Data.DatabasePath),
			zap.Int("rows", tbl.Len()),
		)

		journal, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
		if err := journal.Migrate(ctx); err != nil {
			return err
		}

		client := lookup.NewClient(cfg.Lookup.BaseURL,
			lookup.WithUserAgent(cfg.Lookup.UserAgent),
			lookup.WithTimeout(time.Duration(cfg.Lookup.TimeoutSecs)*time.Second),
			lookup.WithRateLimit(cfg.Lookup.RequestsPerMinute),
		)
		exporter := export.New(time.Duration(cfg.Export.DelayMillis) * time.Millisecond)

		api := &apiServer{
			table:        tbl,
			lookup:       client,
			exporter:     exporter,
			journal:      journal,
			defaultLimit: cfg.Engine.DefaultLimit,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// apiServer exposes the query engine and its collaborators over HTTP. The
// canonical table is immutable after load, so handlers share it without
// locking.
type apiServer struct {
	table        *table.Table
	lookup       *lookup.Client
	exporter     *export.Exporter
	journal      *store.Store
	defaultLimit int
}

func (a *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/rank", a.handleRank)
		r.Get("/history", a.handleHistory)
		r.Get("/plate/{plate}", a.handlePlate)
		r.Get("/export/ranking", a.handleExportRanking)
		r.Get("/runs", a.handleRuns)
	})
	return r
}

func (a *apiServer) handleRank(w http.ResponseWriter, r *http.Request) {
	req, err := parseRankRequest(r.URL.Query(), a.defaultLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title":  engine.Describe(req),
		"groups": engine.Rank(a.table, req),
	})
}

func (a *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	modelName := q.Get("modelo")
	if modelName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "modelo is required"})
		return
	}
	fabYear, err := strconv.Atoi(q.Get("ano_fab"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ano_fab must be an integer"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"modelo":  modelName,
		"ano_fab": fabYear,
		"points":  engine.History(a.table, modelName, fabYear),
	})
}

func (a *apiServer) handlePlate(w http.ResponseWriter, r *http.Request) {
	info, err := a.lookup.Lookup(r.Context(), chi.URLParam(r, "plate"))
	switch {
	case errors.Is(err, lookup.ErrBadPlate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plate must match ABC1234 or ABC1D23"})
	case errors.Is(err, lookup.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plate not found"})
	case err != nil:
		zap.L().Warn("plate lookup failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "lookup unavailable"})
	default:
		writeJSON(w, http.StatusOK, info)
	}
}

func (a *apiServer) handleExportRanking(w http.ResponseWriter, r *http.Request) {
	req, err := parseRankRequest(r.URL.Query(), a.defaultLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	data, err := a.exporter.RankingCSV(r.Context(), engine.Rank(a.table, req), req.Dimension)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ranking.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := a.journal.ListRuns(r.Context(), limit)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// parseRankRequest maps query parameters onto a RankRequest. A subset
// parameter that is present but empty activates its toggle with an empty
// set, preserving the engine's documented edge cases.
func parseRankRequest(q url.Values, defaultLimit int) (model.RankRequest, error) {
	req := model.DefaultRankRequest()
	req.Limit = defaultLimit

	var err error
	if req.RefYear, err = strconv.Atoi(q.Get("ano_ref")); err != nil {
		return req, eris.New("ano_ref must be an integer")
	}
	if req.ManufactureYear, err = strconv.Atoi(q.Get("ano_fab")); err != nil {
		return req, eris.New("ano_fab must be an integer")
	}
	if req.ManufactureYear > req.RefYear {
		return req, eris.New("ano_fab cannot exceed ano_ref")
	}

	switch q.Get("analise") {
	case "", "marca":
		req.Dimension = model.DimensionBrand
	case "modelo":
		req.Dimension = model.DimensionModel
	default:
		return req, eris.New("analise must be marca or modelo")
	}

	req.Ascending = q.Get("ordem") == "asc"

	if v := q.Get("qntd"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return req, eris.New("qntd must be an integer")
		}
	}

	if q.Has("combustivel") {
		req.Fuels = nil
		for _, f := range splitList(q.Get("combustivel")) {
			req.Fuels = append(req.Fuels, model.FuelType(f))
		}
	}
	if q.Has("cambio") {
		req.Transmissions = nil
		for _, t := range splitList(q.Get("cambio")) {
			req.Transmissions = append(req.Transmissions, model.Transmission(t))
		}
	}
	if q.Has("marcas") {
		req.BrandFilter = true
		req.Brands = splitList(q.Get("marcas"))
	}
	if q.Has("tam_motor_min") || q.Has("tam_motor_max") {
		req.DisplacementFilter = true
		if req.DisplacementMin, err = strconv.ParseFloat(q.Get("tam_motor_min"), 64); err != nil {
			return req, eris.New("tam_motor_min must be a number")
		}
		if req.DisplacementMax, err = strconv.ParseFloat(q.Get("tam_motor_max"), 64); err != nil {
			return req, eris.New("tam_motor_max must be a number")
		}
	}
	if q.Has("tipo_motor") {
		req.EngineTypeFilter = true
		req.EngineTypes = splitList(q.Get("tipo_motor"))
	}

	return req, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
