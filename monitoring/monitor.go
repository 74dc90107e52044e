// Package monitoring serves recorded activities over HTTP.
package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sarchlab/eventreport/datarecording"
	"github.com/sarchlab/eventreport/tracing"
	"go.uber.org/zap"
)

// Monitor turns a recorded database into a web server.
type Monitor struct {
	reader datarecording.DataReader
	logger *zap.Logger
	addr   string

	lock   sync.Mutex
	server *http.Server
}

// NewMonitor creates a new Monitor that reads from reader. The activity,
// error and run tables are mapped on the reader.
func NewMonitor(reader datarecording.DataReader, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader.MapTable(tracing.ActivityTable, tracing.ActivityRow{})
	reader.MapTable(tracing.ErrorTable, tracing.ErrorRow{})
	reader.MapTable(datarecording.ExecInfoTable, datarecording.ExecInfo{})

	return &Monitor{
		reader: reader,
		logger: logger,
		addr:   "localhost:0",
	}
}

// WithAddr sets the address that the server listens on. A port of 0 picks a
// free port.
func (m *Monitor) WithAddr(addr string) *Monitor {
	m.addr = addr
	return m
}

// Router returns the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/activities", m.listActivities).Methods(http.MethodGet)
	api.HandleFunc("/activities/{name}", m.activityDetails).Methods(http.MethodGet)
	api.HandleFunc("/errors", m.listErrors).Methods(http.MethodGet)
	api.HandleFunc("/stats", m.listStats).Methods(http.MethodGet)
	api.HandleFunc("/exec", m.listExecInfo).Methods(http.MethodGet)
	api.HandleFunc("/resource", m.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the URL that the
// server can be reached at.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", m.addr, err)
	}

	server := &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.lock.Lock()
	m.server = server
	m.lock.Unlock()

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.logger.Info("monitoring server started", zap.String("url", url))

	go func() {
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitoring server stopped", zap.Error(err))
		}
	}()

	return url, nil
}

// Shutdown stops the server gracefully.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.lock.Lock()
	server := m.server
	m.server = nil
	m.lock.Unlock()

	if server == nil {
		return nil
	}

	return server.Shutdown(ctx)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		m.logger.Warn("failed to write response", zap.Error(err))
	}
}

type errorRsp struct {
	Error string `json:"error"`
}

func (m *Monitor) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		m.logger.Error("request failed", zap.Error(err))
	}

	m.writeJSON(w, status, errorRsp{Error: err.Error()})
}
