package restserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/printview/internal/app"
	"github.com/chrissnell/printview/internal/dataset"
	"github.com/chrissnell/printview/internal/report"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// parseRequest reads the patient from the path and the optional start and
// end dates from the query.
func (c *Controller) parseRequest(r *http.Request) (app.Request, error) {
	req := app.Request{PatientID: mux.Vars(r)["patientID"]}
	loc := c.reports.Location()

	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"start", &req.Start}, {"end", &req.End}} {
		t, err := app.ParseDate(q.Get(p.name), loc)
		if err != nil {
			return req, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = t
	}
	return req, nil
}

func (c *Controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, dataset.ErrNoData):
		status = http.StatusNotFound
	}

	id := requestID(r.Context())
	if status == http.StatusInternalServerError {
		c.logger.Errorw("report failed", "request_id", id, "error", err)
	}
	if werr := c.formatter.WriteResponse(w, r, status, errorResponse{Error: err.Error(), RequestID: id}); werr != nil {
		c.logger.Errorw("writing error response", "request_id", id, "error", werr)
	}
}

type pdfFunc func(ctx context.Context, req app.Request, w io.Writer) (*report.Result, error)

// servePDF renders the whole document before writing anything, so a failure
// still gets a proper status.
func (c *Controller) servePDF(w http.ResponseWriter, r *http.Request, name string, render pdfFunc) {
	req, err := c.parseRequest(r)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	res, err := render(r.Context(), req, &buf)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Report-ID", res.ID)
	w.Header().Set("X-Report-Pages", strconv.Itoa(res.Pages))
	if _, err := buf.WriteTo(w); err != nil {
		c.logger.Warnw("client went away mid-report", "request_id", requestID(r.Context()), "error", err)
	}
}

func (c *Controller) getDailyPDF(w http.ResponseWriter, r *http.Request) {
	c.servePDF(w, r, "daily.pdf", c.reports.DailyPDF)
}

func (c *Controller) getBgLogPDF(w http.ResponseWriter, r *http.Request) {
	c.servePDF(w, r, "bglog.pdf", c.reports.BgLogPDF)
}

func (c *Controller) getLayout(w http.ResponseWriter, r *http.Request) {
	req, err := c.parseRequest(r)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	summary, err := c.reports.Layout(r.Context(), req)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	if err := c.formatter.WriteResponse(w, r, http.StatusOK, summary); err != nil {
		c.logger.Errorw("writing layout response", "request_id", requestID(r.Context()), "error", err)
	}
}

func (c *Controller) getHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, body := http.StatusOK, healthResponse{Status: "healthy"}
	if err := c.store.Ping(ctx); err != nil {
		status, body = http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: err.Error()}
	}
	if err := c.formatter.WriteResponse(w, r, status, body); err != nil {
		c.logger.Errorw("writing health response", "error", err)
	}
}
