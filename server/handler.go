package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/helpers"
	"github.com/spektr-org/salespulse/report"
	"github.com/spektr-org/salespulse/sales"
	"github.com/spektr-org/salespulse/schema"
	"github.com/spektr-org/salespulse/source"
)

// LeaderboardSize is how many products the text summary lists.
const LeaderboardSize = 5

const filterPrefix = "filter."

var (
	errNoSource   = errors.New("no data source configured")
	errBadRequest = errors.New("bad request")
)

// Handler serves summaries and pivots for request bodies or a configured
// source.
type Handler struct {
	pipeline  *sales.Pipeline
	source    source.Source
	timeout   time.Duration
	formatter *report.Formatter
	log       *zap.Logger
}

type HandlerOption func(*Handler)

// WithSource serves GET requests from src, bounding each fetch by timeout.
func WithSource(src source.Source, timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.source = src
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

func WithLogger(log *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

func NewHandler(p *sales.Pipeline, opts ...HandlerOption) *Handler {
	h := &Handler{
		pipeline:  p,
		timeout:   15 * time.Second,
		formatter: report.FormatterFor(p.Config().Display),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.GET("/summary", h.SummaryFromSource)
		api.POST("/summary", h.SummaryFromBody)
		api.GET("/pivot", h.PivotFromSource)
		api.POST("/pivot", h.PivotFromBody)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "source": h.source != nil})
}

// ============================================================================
// SUMMARY
// ============================================================================

func (h *Handler) SummaryFromSource(c *gin.Context) {
	ds, err := h.fetch(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.summary(c, ds)
}

func (h *Handler) SummaryFromBody(c *gin.Context) {
	ds, err := readDataset(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.summary(c, ds)
}

// summary renders ?format=json (default), text or csv.
func (h *Handler) summary(c *gin.Context, ds sales.Dataset) {
	s, leaders, err := h.pipeline.Report(ds, sales.DimProduct, sales.RankUnits, LeaderboardSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	switch format := strings.ToLower(c.DefaultQuery("format", "json")); format {
	case "json":
		c.JSON(http.StatusOK, s)
	case "text":
		var buf bytes.Buffer
		if err := report.Text(&buf, s, leaders, h.formatter); err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	case "csv":
		var buf bytes.Buffer
		if err := report.SummaryCSV(&buf, s); err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	default:
		h.fail(c, fmt.Errorf("%w: unknown format %q (want json, text or csv)", errBadRequest, format))
	}
}

// ============================================================================
// PIVOT
// ============================================================================

func (h *Handler) PivotFromSource(c *gin.Context) {
	q, err := pivotParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ds, err := h.fetch(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.pivot(c, ds, q)
}

func (h *Handler) PivotFromBody(c *gin.Context) {
	q, err := pivotParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ds, err := readDataset(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.pivot(c, ds, q)
}

// pivot renders ?format=rows (default), table, chart or csv.
func (h *Handler) pivot(c *gin.Context, ds sales.Dataset, q pivotQuery) {
	rows, err := h.pipeline.Pivot(ds, q.dim, q.filters, q.order)
	if err != nil {
		h.fail(c, err)
		return
	}
	dim := q.dim

	switch format := strings.ToLower(c.DefaultQuery("format", "rows")); format {
	case "rows":
		c.JSON(http.StatusOK, gin.H{"dimension": dim, "rows": rows})
	case "table":
		c.JSON(http.StatusOK, sales.PivotTable(rows, dim, h.formatter.Currency()))
	case "chart":
		c.JSON(http.StatusOK, sales.PivotChart(rows, dim))
	case "csv":
		var buf bytes.Buffer
		if err := report.PivotCSV(&buf, rows, dim); err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	default:
		h.fail(c, fmt.Errorf("%w: unknown format %q (want rows, table, chart or csv)", errBadRequest, format))
	}
}

type pivotQuery struct {
	dim     sales.Dimension
	filters engine.Filters
	order   sales.PivotOrder
}

// pivotParams reads ?dimension=, ?sort= and every ?filter.<dimension>=
// parameter.
func pivotParams(c *gin.Context) (pivotQuery, error) {
	dim, err := sales.ParseDimension(c.Query("dimension"))
	if err != nil {
		return pivotQuery{}, err
	}
	order, err := sales.ParsePivotOrder(c.Query("sort"))
	if err != nil {
		return pivotQuery{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	filters := engine.Filters{Dimensions: map[string][]string{}}
	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, filterPrefix) {
			continue
		}
		fd, err := sales.ParseDimension(strings.TrimPrefix(key, filterPrefix))
		if err != nil {
			return pivotQuery{}, fmt.Errorf("filter: %w", err)
		}
		filters.Dimensions[string(fd)] = append(filters.Dimensions[string(fd)], values...)
	}
	return pivotQuery{dim: dim, filters: filters, order: order}, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (h *Handler) fetch(ctx context.Context) (sales.Dataset, error) {
	if h.source == nil {
		return sales.Dataset{}, errNoSource
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.source.Fetch(ctx)
}

func readDataset(c *gin.Context) (sales.Dataset, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, source.MaxBodyBytes))
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: read body: %w", errBadRequest, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return sales.Dataset{}, fmt.Errorf("%w: empty body", errBadRequest)
	}
	ds, err := helpers.Parse(body, c.ContentType())
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return ds, nil
}

// fail maps err to a status code and writes a JSON error body.
func (h *Handler) fail(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "request_id": GetRequestID(c)}

	var schemaErr *schema.SchemaError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &schemaErr):
		status = http.StatusUnprocessableEntity
		body["field"] = schemaErr.Field
		body["accepted"] = schemaErr.Accepted
		body["missing"] = schemaErr.Missing
	case errors.Is(err, sales.ErrUnknownDimension), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, source.ErrFetch):
		status = http.StatusBadGateway
	case errors.Is(err, errNoSource):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("request_id", GetRequestID(c)), zap.Error(err))
	}
	_ = c.Error(err)
	body["status"] = status
	c.AbortWithStatusJSON(status, body)
}
