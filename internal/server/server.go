// Package server exposes the dashboard over HTTP and websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"StockPulse/internal/dashboard"
	"StockPulse/internal/model"
	"StockPulse/internal/observability"
	"StockPulse/internal/recorder"
	"StockPulse/internal/upload"
	"StockPulse/internal/watchlist"
)

// PreviewRows is the number of report rows echoed back by an upload.
const PreviewRows = 5

// Options are the request defaults applied when a query leaves them out.
type Options struct {
	Timeframe    model.Timeframe
	Tolerance    float64
	TopN         int
	SymbolColumn string
	SheetClient  *http.Client
	SheetHosts   []string
}

// Server serves the dashboard API.
type Server struct {
	Service   *dashboard.Service
	Watchlist *watchlist.Manager
	Metrics   *observability.Metrics
	Recorder  recorder.Recorder
	Hub       *Hub
	Options   Options

	ctx    context.Context
	engine *gin.Engine
}

// New builds a Server and its routes. ctx bounds websocket streams.
// rec and hub may be nil.
func New(ctx context.Context, svc *dashboard.Service, wl *watchlist.Manager, rec recorder.Recorder, metrics *observability.Metrics, hub *Hub, opts Options) *Server {
	if opts.SymbolColumn == "" {
		opts.SymbolColumn = upload.DefaultSymbolColumn
	}
	if hub == nil {
		hub = NewHub(nil)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		Service:   svc,
		Watchlist: wl,
		Metrics:   metrics,
		Recorder:  rec,
		Hub:       hub,
		Options:   opts,
		ctx:       ctx,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	api.GET("/timeframes", s.handleTimeframes)
	api.GET("/snapshot", s.handleSnapshot)
	api.GET("/chart/:symbol", s.handleChart)
	api.POST("/upload", s.handleUpload)
	api.POST("/sheet", s.handleSheet)
	api.GET("/watchlist", s.handleWatchlistGet)
	api.POST("/watchlist", s.handleWatchlistAdd)
	api.DELETE("/watchlist", s.handleWatchlistRemove)
	api.GET("/scans", s.handleScans)

	s.engine = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.Hub != nil {
		s.Hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Debug().Str("method", c.Request.Method).Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).Dur("took", time.Since(started)).Msg("http request")
	}
}

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error string          `json:"error"`
	Kind  model.ErrorKind `json:"kind,omitempty"`
}

func abortWith(c *gin.Context, status int, err error, kind model.ErrorKind) {
	c.AbortWithStatusJSON(status, errorBody{Error: err.Error(), Kind: kind})
}

// statusOf maps a data error to an HTTP status.
func statusOf(err error) int {
	switch model.KindOf(err) {
	case model.KindDataUnavailable:
		return http.StatusNotFound
	case model.KindInsufficientHistory:
		return http.StatusUnprocessableEntity
	case model.KindMalformedUpload:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// timeframe resolves the "timeframe" query, falling back to the default.
func (s *Server) timeframe(c *gin.Context) (model.Timeframe, bool) {
	label := c.Query("timeframe")
	if label == "" {
		return s.Options.Timeframe, true
	}
	tf, err := model.LookupTimeframe(label)
	if err != nil {
		abortWith(c, http.StatusBadRequest, err, "")
		return model.Timeframe{}, false
	}
	return tf, true
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.Hub.Clients()})
}

func (s *Server) handleTimeframes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":    s.Options.Timeframe.Label,
		"timeframes": model.Timeframes,
	})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	tf, ok := s.timeframe(c)
	if !ok {
		return
	}
	sel := dashboard.Selection{
		Symbols:   model.SplitSymbols(c.Query("symbols")),
		Timeframe: tf,
		Tolerance: s.Options.Tolerance,
		TopN:      s.Options.TopN,
	}
	if len(sel.Symbols) == 0 {
		sel.Symbols = s.Watchlist.List()
	}
	if v := c.Query("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			abortWith(c, http.StatusBadRequest, errors.New("top_n must be a positive integer"), "")
			return
		}
		sel.TopN = n
	}

	snap, err := s.Service.Refresh(c.Request.Context(), sel)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrEmptySelection) {
			status = http.StatusBadRequest
		}
		abortWith(c, status, err, "")
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleChart(c *gin.Context) {
	tf, ok := s.timeframe(c)
	if !ok {
		return
	}
	chart, err := s.Service.Chart(c.Request.Context(), c.Param("symbol"), tf)
	if err != nil {
		if errors.Is(err, dashboard.ErrEmptySelection) {
			abortWith(c, http.StatusBadRequest, err, "")
			return
		}
		abortWith(c, statusOf(err), err, model.KindOf(err))
		return
	}
	c.JSON(http.StatusOK, chart)
}

// uploadResponse summarises a parsed report, optionally scanned.
type uploadResponse struct {
	Columns  []string            `json:"columns"`
	RowCount int                 `json:"row_count"`
	Preview  []map[string]string `json:"preview"`
	Symbols  []string            `json:"symbols"`
	Snapshot *model.Snapshot     `json:"snapshot,omitempty"`
}

// reportError writes a failed upload or sheet import.
func reportError(c *gin.Context, err error) {
	if upload.IsMalformed(err) {
		abortWith(c, http.StatusBadRequest, err, model.KindMalformedUpload)
		return
	}
	abortWith(c, statusOf(err), err, model.KindOf(err))
}

func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		err = fmt.Errorf("%w: %v", model.ErrMalformedUpload, err)
		s.Metrics.ObserveUpload(err)
		reportError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		err = fmt.Errorf("%w: %v", model.ErrMalformedUpload, err)
		s.Metrics.ObserveUpload(err)
		reportError(c, err)
		return
	}
	defer f.Close()

	column := c.DefaultPostForm("column", s.Options.SymbolColumn)
	rep, err := upload.Parse(fh.Filename, f, column)
	s.Metrics.ObserveUpload(err)
	if err != nil {
		reportError(c, err)
		return
	}
	log.Info().Str("file", fh.Filename).Int("rows", len(rep.Rows)).Int("symbols", len(rep.Symbols)).Msg("report uploaded")
	s.respondReport(c, rep, c.PostForm("scan") == "true")
}

// sheetRequest is the body of POST /api/sheet.
type sheetRequest struct {
	URL    string `json:"url" binding:"required"`
	Column string `json:"column"`
	Scan   bool   `json:"scan"`
}

func (s *Server) handleSheet(c *gin.Context) {
	var req sheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, err, "")
		return
	}
	if req.Column == "" {
		req.Column = s.Options.SymbolColumn
	}
	rep, err := upload.FetchSheet(c.Request.Context(), s.Options.SheetClient, req.URL, req.Column, s.Options.SheetHosts)
	s.Metrics.ObserveUpload(err)
	if err != nil {
		reportError(c, err)
		return
	}
	s.respondReport(c, rep, req.Scan)
}

// respondReport writes rep and, when scan is set, a snapshot of its symbols.
func (s *Server) respondReport(c *gin.Context, rep *upload.Report, scan bool) {
	resp := uploadResponse{
		Columns:  rep.Columns,
		RowCount: len(rep.Rows),
		Preview:  rep.Head(PreviewRows),
		Symbols:  rep.Symbols,
	}
	if scan && len(rep.Symbols) > 0 {
		snap, err := s.Service.Refresh(c.Request.Context(), dashboard.Selection{
			Symbols:   rep.Symbols,
			Timeframe: s.Options.Timeframe,
			Tolerance: s.Options.Tolerance,
			TopN:      s.Options.TopN,
		})
		if err != nil {
			abortWith(c, http.StatusInternalServerError, err, "")
			return
		}
		resp.Snapshot = snap
	}
	c.JSON(http.StatusOK, resp)
}

// watchlistRequest is the body of POST /api/watchlist.
type watchlistRequest struct {
	Symbols []string `json:"symbols" binding:"required"`
}

func (s *Server) handleWatchlistGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbols": s.Watchlist.List()})
}

func (s *Server) handleWatchlistAdd(c *gin.Context) {
	var req watchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, err, "")
		return
	}
	list, err := s.Watchlist.Add(req.Symbols...)
	if err != nil {
		abortWith(c, http.StatusInternalServerError, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": list})
}

func (s *Server) handleWatchlistRemove(c *gin.Context) {
	symbols := model.SplitSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		abortWith(c, http.StatusBadRequest, errors.New("symbols query is required"), "")
		return
	}
	list, err := s.Watchlist.Remove(symbols...)
	if err != nil {
		abortWith(c, http.StatusInternalServerError, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": list})
}

// scansResponse lists recent scans and, per requested symbol, how often it was flagged.
type scansResponse struct {
	Scans []recorder.ScanSummary `json:"scans"`
	Hits  map[string]int         `json:"hits,omitempty"`
}

func (s *Server) handleScans(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			abortWith(c, http.StatusBadRequest, errors.New("limit must be between 1 and 500"), "")
			return
		}
		limit = n
	}
	scans, err := s.Recorder.RecentScans(limit)
	if err != nil {
		abortWith(c, http.StatusInternalServerError, err, "")
		return
	}
	resp := scansResponse{Scans: scans}
	if resp.Scans == nil {
		resp.Scans = []recorder.ScanSummary{}
	}
	if symbols := model.SplitSymbols(c.Query("symbols")); len(symbols) > 0 {
		resp.Hits = make(map[string]int, len(symbols))
		for _, sym := range symbols {
			n, err := s.Recorder.HitCount(sym)
			if err != nil {
				abortWith(c, http.StatusInternalServerError, err, "")
				return
			}
			resp.Hits[sym] = n
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWS(c *gin.Context) {
	s.Hub.ServeWS(s.ctx, c.Writer, c.Request)
}
