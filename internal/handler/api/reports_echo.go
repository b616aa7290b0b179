package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	xhttp "AlgoReport/pkg/http"
	xlogger "AlgoReport/pkg/logger"
	"AlgoReport/pkg/util"

	"github.com/labstack/echo/v4"
)

const maxUploadBytes = 10 << 20

// ReportService is the report runner as seen by HTTP.
type ReportService interface {
	Run(ctx context.Context, raw []string, p models.RunParams) (*models.RunSummary, error)
	Publish(ctx context.Context, html []byte) (models.ReportArtifact, error)
	History(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error)
}

// ProgressStream serves the run progress websocket.
type ProgressStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// ReportsHandler serves report pages, the run trigger and the signal history API.
type ReportsHandler struct {
	logger      *xlogger.Logger
	runner      ReportService
	reports     domrepo.ReportRenderer
	progress    ProgressStream
	uploadToken string
	runLimit    echo.MiddlewareFunc
	checks      map[string]HealthCheck
}

// Option configures ReportsHandler.
type Option func(*ReportsHandler)

// WithUploadToken enables POST /upload-report for bearer token.
func WithUploadToken(token string) Option {
	return func(h *ReportsHandler) {
		h.uploadToken = token
	}
}

// WithRunLimit guards POST /run-now with mw.
func WithRunLimit(mw echo.MiddlewareFunc) Option {
	return func(h *ReportsHandler) {
		h.runLimit = mw
	}
}

// WithProgress exposes the progress websocket on /ws/runs.
func WithProgress(p ProgressStream) Option {
	return func(h *ReportsHandler) {
		h.progress = p
	}
}

// WithHealthCheck adds a named probe to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *ReportsHandler) {
		h.checks[name] = check
	}
}

func NewReportsHandler(logger *xlogger.Logger, runner ReportService, reports domrepo.ReportRenderer, opts ...Option) *ReportsHandler {
	h := &ReportsHandler{
		logger:  logger,
		runner:  runner,
		reports: reports,
		checks:  make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ReportsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Latest)
	e.GET("/list", h.List)
	e.GET("/reports/:name", h.Report)
	e.GET("/healthz", h.Health)

	var runMW []echo.MiddlewareFunc
	if h.runLimit != nil {
		runMW = append(runMW, h.runLimit)
	}
	e.POST("/run-now", h.RunNow, runMW...)
	e.POST("/upload-report", h.Upload)

	g := e.Group("/api")
	g.GET("/signals", h.Signals)

	if h.progress != nil {
		e.GET("/ws/runs", h.Progress)
	}
}

// RunNow runs the pipeline synchronously and answers with the per-symbol summary.
// Symbols come from the symbols, symbol or tickers field, or from a plain-text body.
func (h *ReportsHandler) RunNow(c echo.Context) error {
	req := &models.RunRequest{}
	raw, verr := bindRunRequest(c, req)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if len(raw) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("missing symbol").WithParam("fields", []string{"symbols", "symbol", "tickers"}))
	}

	params := models.RunParams{Interval: strings.TrimSpace(req.Interval)}
	params.Start, _ = util.ParseTime(req.Start)
	params.End, _ = util.ParseTime(req.End)
	if !params.Start.IsZero() && !params.End.IsZero() && params.End.Before(params.Start) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("end must not be before start"))
	}

	sum, err := h.runner.Run(c.Request().Context(), raw, params)
	switch {
	case errors.Is(err, models.ErrNoSymbols):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no symbols parsed").WithError(err))
	case errors.Is(err, models.ErrRunInProgress):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()))
	case err != nil:
		h.logger.Error("run-now failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("report run failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, sum)
}

// bindRunRequest reads form, JSON or query fields; anything else is taken as a raw symbol list.
func bindRunRequest(c echo.Context, req *models.RunRequest) ([]string, interface{}) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	structured := strings.HasPrefix(ct, echo.MIMEApplicationJSON) ||
		strings.HasPrefix(ct, echo.MIMEApplicationForm) ||
		strings.HasPrefix(ct, echo.MIMEMultipartForm)

	if structured {
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return nil, verr
		}
		return req.RawSymbols(), nil
	}

	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return nil, []xhttp.ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}
	if verr := xhttp.ValidateRequest(c, req); verr != nil {
		return nil, verr
	}
	raw := req.RawSymbols()
	if len(raw) > 0 {
		return raw, nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 64<<10))
	if err != nil {
		return nil, []xhttp.ValidationError{{Code: "ERR_BODY", Message: err.Error()}}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return []string{s}, nil
	}
	return nil, nil
}

// Upload stores an HTML report sent as the raw body or as multipart field "file".
func (h *ReportsHandler) Upload(c echo.Context) error {
	if h.uploadToken == "" {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("report upload is disabled"))
	}
	tok := xhttp.BearerToken(c)
	if subtle.ConstantTimeCompare([]byte(tok), []byte(h.uploadToken)) != 1 {
		return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("invalid upload token"))
	}

	html, err := readUpload(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	art, err := h.runner.Publish(c.Request().Context(), html)
	if errors.Is(err, models.ErrRunInProgress) {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()))
	}
	if err != nil {
		h.logger.Error("upload-report failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("store report failed").WithError(err))
	}
	return xhttp.DataResponse(c, http.StatusCreated, map[string]string{"report": art.HTML, "latest": art.Latest})
}

func readUpload(c echo.Context) ([]byte, error) {
	var r io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("multipart field file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxUploadBytes {
		return nil, errors.New("report exceeds 10MB")
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, errors.New("empty report")
	}
	return b, nil
}

func (h *ReportsHandler) Latest(c echo.Context) error {
	path, err := h.reports.Latest()
	if errors.Is(err, models.ErrReportNotFound) {
		return c.HTML(http.StatusNotFound, "<h4>No report yet. POST /run-now to create one.</h4>")
	}
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("read latest report").WithError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.File(path)
}

func (h *ReportsHandler) List(c echo.Context) error {
	names, err := h.reports.List()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("list reports").WithError(err))
	}
	if names == nil {
		names = []string{}
	}
	return xhttp.ListResponse(c, names, int64(len(names)))
}

func (h *ReportsHandler) Report(c echo.Context) error {
	path, err := h.reports.Open(c.Param("name"))
	if errors.Is(err, models.ErrReportNotFound) {
		return c.HTML(http.StatusNotFound, "<h4>Report not found</h4>")
	}
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("open report").WithError(err))
	}
	return c.File(path)
}

func (h *ReportsHandler) Signals(c echo.Context) error {
	req := &models.SignalsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs, err := h.runner.History(c.Request().Context(), strings.ToUpper(strings.TrimSpace(req.Symbol)), req.Limit)
	if errors.Is(err, models.ErrHistoryOff) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}
	if err != nil {
		h.logger.Error("signal history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("signal history unavailable").WithError(err))
	}
	if recs == nil {
		recs = []models.SignalRecord{}
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

func (h *ReportsHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	return xhttp.DataResponse(c, status, map[string]interface{}{"checks": checks})
}

func (h *ReportsHandler) Progress(c echo.Context) error {
	if err := h.progress.ServeWS(c.Response(), c.Request()); err != nil {
		h.logger.Warn("progress stream closed", xlogger.Error(err))
	}
	return nil
}
