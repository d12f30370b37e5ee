package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"opecbrain/entity"
	"opecbrain/manager"
	"opecbrain/query"
)

//go:embed static/*
var staticFS embed.FS

// maxImportBytes caps the import body to avoid excessive memory usage.
const maxImportBytes = 25 << 20

type Server struct {
	rm       *manager.RecordManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	now      func() time.Time
	mux      *http.ServeMux
	// addr is the listen address once started, an accepted Origin host.
	addr string
}

// NewServer wires the pages and the JSON API on top of the record manager.
// gatherer may be nil, in which case /metrics is not served.
func NewServer(rm *manager.RecordManager, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{rm: rm, gatherer: gatherer, logger: logger, now: time.Now, mux: http.NewServeMux()}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/history", s.handleHistoryPage)
	s.mux.Handle("/static/", http.FileServer(http.FS(staticFS)))

	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/records", s.guardWrite(s.handleRecords))
	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/api/import", s.guardWrite(s.handleImport))
	if gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr in the background. Call Shutdown on the returned
// server to stop it.
func (s *Server) Start(addr string) *http.Server {
	s.addr = addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		s.logger.Info("web UI available", slog.String("url", "http://"+addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server stopped", slog.Any("error", err))
		}
	}()
	return srv
}

func Shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.servePage(w, "static/index.html")
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, "static/history.html")
}

func (s *Server) servePage(w http.ResponseWriter, name string) {
	data, err := staticFS.ReadFile(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// handleHistory returns the records, filtered by start/end (YYYY-MM-DD) or
// by a named period when given.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	period := strings.TrimSpace(q.Get("period"))

	records, err := s.rm.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	switch {
	case start != "" || end != "":
		if start == "" || end == "" {
			http.Error(w, "start and end are both required", http.StatusBadRequest)
			return
		}
		startT, err1 := query.ParseDate(start)
		endT, err2 := query.ParseDate(end)
		if err1 != nil || err2 != nil {
			http.Error(w, "invalid date range", http.StatusBadRequest)
			return
		}
		records = query.FilterByDateRange(records, startT, endT)
	case period != "":
		startT, endT := query.PeriodRange(period, s.now())
		start, end = startT.Format(entity.DateLayout), endT.Format(entity.DateLayout)
		records = query.FilterByDateRange(records, startT, endT)
	}
	writeJSON(w, map[string]any{"start": start, "end": end, "items": records})
}

type addRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	// Text accepts the "name | status" shorthand of the add form.
	Text string `json:"text"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body addRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	text := body.Text
	if strings.TrimSpace(text) == "" {
		text = body.Name
	}
	fallback := entity.Status(body.Status)
	if strings.TrimSpace(body.Status) == "" {
		fallback = entity.StatusRaised
	}
	name, status, err := entity.ParseEntry(text, fallback)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := s.rm.Upsert(name, status)
	if err != nil {
		// not persisted: the caller may retry
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, http.StatusCreated, rec)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	records, err := s.rm.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	fname := "historico_export_" + s.now().Format("20060102_150405") + ".json"
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fname+"\"")
	writeJSON(w, records)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limited := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer limited.Close()
	var records []entity.Record
	if err := json.NewDecoder(limited).Decode(&records); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	added, merged, err := s.rm.Import(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"status": "ok", "added": added, "merged": merged})
}

// guardWrite keeps other web pages away from the write endpoints: browsers
// send a cross-site text/plain POST without preflight, never an
// application/json one, and they always set Origin.
func (s *Server) guardWrite(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next(w, r)
			return
		}
		if !s.allowedOrigin(r) {
			s.logger.Warn("write refused", slog.String("path", r.URL.Path), slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, "forbidden origin", http.StatusForbidden)
			return
		}
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)
			return
		}
		next(w, r)
	}
}

// allowedOrigin accepts requests without Origin (CLI, scripts) and pages
// served by this server itself.
func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "http" || u.Host == "" {
		return false
	}
	if s.addr != "" && u.Host == s.addr {
		return true
	}
	return u.Host == r.Host && isLoopback(u.Hostname())
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
