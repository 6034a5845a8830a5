// Package restserver serves printed reports over HTTP.
package restserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/app"
	"github.com/chrissnell/printview/internal/log"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/pkg/config"
	"github.com/chrissnell/printview/pkg/responseformat"
)

// Reports is what the handlers need from the application service.
type Reports interface {
	DailyPDF(ctx context.Context, req app.Request, w io.Writer) (*report.Result, error)
	BgLogPDF(ctx context.Context, req app.Request, w io.Writer) (*report.Result, error)
	Layout(ctx context.Context, req app.Request) (*app.LayoutSummary, error)
	Location() *time.Location
}

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.ServerData
	Server     http.Server
	reports    Reports
	store      Pinger
	formatter  *responseformat.Formatter
	logger     *zap.SugaredLogger
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, reports Reports, store Pinger, rc config.ServerData, logger *zap.SugaredLogger) *Controller {
	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("server.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Info("server.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		reports:    reports,
		store:      store,
		formatter:  responseformat.NewFormatter(),
		logger:     logger,
	}

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second
	return ctrl
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Server.Shutdown(ctx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(log.HTTPMiddleware(c.logger))

	router.HandleFunc("/healthz", c.getHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1/patients/{patientID}").Subrouter()
	api.HandleFunc("/reports/daily.pdf", c.getDailyPDF).Methods(http.MethodGet)
	api.HandleFunc("/reports/bglog.pdf", c.getBgLogPDF).Methods(http.MethodGet)
	api.HandleFunc("/layout", c.getLayout).Methods(http.MethodGet)

	return router
}
