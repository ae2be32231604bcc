package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/sentidash/internal/dashboard"
	"github.com/seenimoa/sentidash/internal/dataset"
	"github.com/seenimoa/sentidash/internal/feed"
	"github.com/seenimoa/sentidash/internal/report"
	"github.com/seenimoa/sentidash/internal/session"
)

// ReportFileName is the attachment name of GET /report.
const ReportFileName = "sentiment_report.html"

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		missing  *dataset.MissingColumnError
		parse    *dataset.ParseError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &parse),
		errors.Is(err, dataset.ErrEmptyFile),
		errors.Is(err, dashboard.ErrUnknownSentiment):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrNoData):
		return http.StatusConflict
	case errors.Is(err, feed.ErrEmptyFeed):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrNotFound):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

// ════════════════════════════════════════════════════════════════════
// Page
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "")
}

// renderPage writes the dashboard for the caller's current session with
// an optional error banner.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	st := s.state(r)
	v, err := s.view(st)
	if err != nil {
		v, errMsg = nil, err.Error()
		if status < 400 {
			status = statusFor(err)
		}
	}

	var notice string
	if errMsg == "" && st.HasData() && r.URL.Query().Has(loadedParam) {
		notice = fmt.Sprintf("✅ Loaded %s: %d rows", st.FileName, st.Table.Len())
	}

	var buf bytes.Buffer
	opts := report.PageOptions{Interactive: true, Error: errMsg, Notice: notice}
	if err := s.renderer.Page(&buf, v, opts); err != nil {
		s.log.Error("render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail re-renders the page with err as a banner.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.renderPage(w, r, status, err.Error())
}

// loadedParam marks the redirect after new data arrives, so the page can
// confirm what was loaded.
const loadedParam = "loaded"

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func redirectLoaded(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/?"+loadedParam+"=1", http.StatusSeeOther)
}

// ════════════════════════════════════════════════════════════════════
// Form actions
// ════════════════════════════════════════════════════════════════════

// handleUpload loads a CSV or XLSX file into the session. A file that
// fails to parse or validate leaves the previous data in place.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.upload(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectLoaded(w, r)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadLimit())
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("upload exceeds %d MB: %w", s.cfg.Server.MaxUploadMB, err)
		}
		return &dataset.ParseError{Err: errors.New("no file uploaded")}
	}
	defer file.Close()

	tbl, err := dataset.Load(file, dataset.FormatFromName(hdr.Filename), dataset.HeadlineSchema)
	if err != nil {
		return fmt.Errorf("%s: %w", hdr.Filename, err)
	}
	if err := s.store.Load(sessionID(r.Context()), tbl, hdr.Filename); err != nil {
		return err
	}

	s.log.Info("dataset uploaded",
		zap.String("file", hdr.Filename),
		zap.Int("rows", tbl.Len()),
		zap.Strings("columns", tbl.Columns()))
	s.changed(r)
	return nil
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := s.selectSentiment(r, r.FormValue("sentiment")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

// selectSentiment validates label against the table the session holds when
// the selection is written, so an upload from another tab cannot leave a
// stale label behind.
func (s *Server) selectSentiment(r *http.Request, label string) error {
	err := s.store.Select(sessionID(r.Context()), label, func(t *dataset.Table) error {
		return dashboard.SelectSentiment(t, label)
	})
	if err != nil {
		return err
	}
	s.changed(r)
	return nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(sessionID(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	s.changed(r)
	redirectHome(w, r)
}

// handleFeed replaces the session's data with freshly fetched headlines.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	tbl, err := s.fetcher.FetchTable(r.Context(), s.cfg.Feed.Limit)
	if err != nil {
		s.log.Warn("feed fetch failed", zap.Error(err))
		s.fail(w, r, err)
		return
	}
	if err := s.store.Load(sessionID(r.Context()), tbl, "RSS feeds"); err != nil {
		s.fail(w, r, err)
		return
	}
	s.changed(r)
	redirectLoaded(w, r)
}

// ════════════════════════════════════════════════════════════════════
// Files
// ════════════════════════════════════════════════════════════════════

// handleDownload sends the filtered headlines, as CSV by default or as a
// workbook with ?format=xlsx.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	v, ok := s.dataView(w, r)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		name, ctype string
	)
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "csv":
		err = dashboard.Export(&buf, v)
		name, ctype = dashboard.CSVName(v), "text/csv; charset=utf-8"
	case "xlsx":
		err = dashboard.ExportXLSX(&buf, v)
		name, ctype = dashboard.WorkbookName(v), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	sendFile(w, name, ctype, buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	v, ok := s.dataView(w, r)
	if !ok {
		return
	}
	html, err := report.GenerateHTML(v, s.report, s.now())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	sendFile(w, ReportFileName, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.dataView(w, r)
	if !ok {
		return
	}
	s.writePNG(w, func(out io.Writer) error {
		return report.PiePNG(out, v.Distribution, s.report.ChartCfg)
	})
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.dataView(w, r)
	if !ok {
		return
	}
	if !v.HasTrend {
		http.Error(w, "dataset has no date column", http.StatusNotFound)
		return
	}
	s.writePNG(w, func(out io.Writer) error {
		return report.TrendPNG(out, v.Trend, s.report.ChartCfg)
	})
}

func (s *Server) writePNG(w http.ResponseWriter, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		if errors.Is(err, report.ErrNoChartData) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("render chart", zap.Error(err))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// dataView renders the caller's view, answering 409 when nothing has been
// uploaded yet.
func (s *Server) dataView(w http.ResponseWriter, r *http.Request) (*dashboard.View, bool) {
	st := s.state(r)
	if !st.HasData() {
		http.Error(w, dashboard.ErrNoData.Error(), http.StatusConflict)
		return nil, false
	}
	v, err := s.view(st)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	return v, true
}

func sendFile(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(name))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// contentDisposition quotes plain ASCII names directly and falls back to
// RFC 2231 encoding for anything else.
func contentDisposition(name string) string {
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return mime.FormatMediaType("attachment", map[string]string{"filename": name})
		}
	}
	return `attachment; filename="` + name + `"`
}

// ════════════════════════════════════════════════════════════════════
// JSON API
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":   "ok",
			"version":  s.version,
			"sessions": s.store.Len(),
			"time":     s.now().UTC().Format("2006-01-02T15:04:05Z"),
		},
	})
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request) {
	v, err := s.view(s.state(r))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: v})
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r)
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.upload(w, r); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeView(w, r)
}

// SelectRequest is the body of POST /api/v1/select.
type SelectRequest struct {
	Sentiment string `json:"sentiment"`
}

func (s *Server) handleAPISelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.selectSentiment(r, req.Sentiment); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeView(w, r)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(sessionID(r.Context())); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.changed(r)
	s.writeView(w, r)
}
