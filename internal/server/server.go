// Package server is the read-only status dashboard. It renders the
// persisted status document and raw log files; it never mutates them.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"backsync/internal/config"
	"backsync/internal/model"
	"backsync/internal/repository"
	"backsync/internal/status"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	store    *status.Store
	histRepo *repository.HistoryRepository
	log      *zap.Logger
}

// New wires the dashboard routes. histRepo may be nil when the history
// database is unavailable; the history endpoint then reports 503.
func New(cfg *config.Config, store *status.Store, histRepo *repository.HistoryRepository, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		cfg:      cfg,
		store:    store,
		histRepo: histRepo,
		log:      log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleStatusPage)
	s.echo.GET("/api/status", s.handleAPIStatus)
	s.echo.GET("/api/logs", s.handleAPILogs)
	s.echo.GET("/api/history", s.handleAPIHistory)
	s.echo.GET("/logs/:name", s.handleLogFile)
}

func (s *Server) Start() error {
	addr := ":" + strconv.Itoa(s.cfg.Settings.WebInterface.Port)
	s.log.Info("dashboard server started", zap.String("addr", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleAPIStatus(c echo.Context) error {
	doc := s.store.Load()

	// smtp credentials never leave the process
	return c.JSON(http.StatusOK, map[string]any{
		"status": doc,
		"config": map[string]any{
			"jobs": s.cfg.SyncJobs,
			"settings": map[string]any{
				"rsync_options": s.cfg.Settings.RsyncOptions,
				"web_interface": s.cfg.Settings.WebInterface,
			},
		},
	})
}

type logFileInfo struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (s *Server) handleAPILogs(c echo.Context) error {
	entries, err := os.ReadDir(s.cfg.LogDir)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusOK, []logFileInfo{})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	files := make([]logFileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, logFileInfo{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Filename > files[j].Filename
	})

	return c.JSON(http.StatusOK, files)
}

func (s *Server) handleLogFile(c echo.Context) error {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".log") {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	content, err := os.ReadFile(filepath.Join(s.cfg.LogDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", content)
}

func (s *Server) handleAPIHistory(c echo.Context) error {
	if s.histRepo == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "history store unavailable"})
	}

	limit := 50
	if n, err := strconv.Atoi(c.QueryParam("n")); err == nil && n > 0 {
		limit = n
	}

	runs, err := s.histRepo.GetRecent(limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleStatusPage(c echo.Context) error {
	doc := s.store.Load()

	data := pageData{
		Title:       s.cfg.Settings.WebInterface.Title,
		LastRun:     formatTime(doc.LastRun),
		TotalRuns:   doc.TotalRuns,
		SuccessRate: successRate(doc),
	}

	for _, job := range s.cfg.SyncJobs {
		if !job.IsEnabled() {
			continue
		}
		data.ActiveJobs++
		data.Jobs = append(data.Jobs, jobView(job, doc))
	}

	var b strings.Builder
	if err := statusPage.Execute(&b, data); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.HTML(http.StatusOK, b.String())
}

type pageData struct {
	Title       string
	LastRun     string
	TotalRuns   int
	ActiveJobs  int
	SuccessRate int
	Jobs        []jobData
}

type jobData struct {
	Name        string
	Source      string
	Destination string
	StatusText  string
	StatusClass string
	LastRun     string
	Duration    string
	Stats       []statEntry
}

type statEntry struct {
	Label string
	Value string
}

func jobView(job config.JobSpec, doc *model.StatusDocument) jobData {
	view := jobData{
		Name:        job.Name,
		Source:      job.Source,
		Destination: job.Destination,
		StatusText:  "Never Run",
		StatusClass: "never",
		LastRun:     "Never",
		Duration:    "0s",
	}

	result, ok := doc.Jobs[job.Name]
	if !ok {
		return view
	}

	if result.Success {
		view.StatusText = "Success"
		view.StatusClass = "success"
	} else {
		view.StatusText = "Failed"
		view.StatusClass = "error"
	}

	view.LastRun = formatTime(&result.StartedAt)
	view.Duration = formatDuration(result.Duration)

	for _, entry := range []statEntry{
		{"Total Files", result.Stats["total_files"]},
		{"Created", result.Stats["created_files"]},
		{"Deleted", result.Stats["deleted_files"]},
		{"Transferred", result.Stats["transferred_size"]},
	} {
		if entry.Value != "" {
			view.Stats = append(view.Stats, entry)
		}
	}

	return view
}

func successRate(doc *model.StatusDocument) int {
	if len(doc.Jobs) == 0 {
		return 100
	}

	successful := 0
	for _, result := range doc.Jobs {
		if result.Success {
			successful++
		}
	}

	return int(math.Round(float64(successful) / float64(len(doc.Jobs)) * 100))
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
.container { max-width: 1100px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; }
.header { background: #667eea; color: white; padding: 24px; text-align: center; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; padding: 24px; background: #f8f9fa; }
.card { background: white; padding: 16px; border-radius: 6px; text-align: center; }
.card h3 { margin: 0 0 8px; color: #666; font-size: .8em; text-transform: uppercase; }
.card .value { font-size: 1.6em; font-weight: bold; }
.jobs { padding: 24px; }
.job { border: 1px solid #e1e5e9; border-radius: 6px; margin-bottom: 16px; }
.job-header { padding: 14px; background: #f8f9fa; display: flex; justify-content: space-between; }
.badge { padding: 3px 12px; border-radius: 20px; font-size: .8em; font-weight: bold; text-transform: uppercase; }
.badge.success { background: #d4edda; color: #155724; }
.badge.error { background: #f8d7da; color: #721c24; }
.badge.never { background: #e2e3e5; color: #6c757d; }
.details { padding: 14px; }
.row { display: flex; justify-content: space-between; padding: 5px 0; border-bottom: 1px solid #f0f0f0; }
.row .label { color: #666; }
.row .val { font-family: monospace; font-size: .9em; word-break: break-all; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>{{.Title}}</h1><p>Backup synchronization monitoring</p></div>
<div class="summary">
<div class="card"><h3>Last Run</h3><div class="value">{{.LastRun}}</div></div>
<div class="card"><h3>Total Runs</h3><div class="value">{{.TotalRuns}}</div></div>
<div class="card"><h3>Active Jobs</h3><div class="value">{{.ActiveJobs}}</div></div>
<div class="card"><h3>Success Rate</h3><div class="value">{{.SuccessRate}}%</div></div>
</div>
<div class="jobs">
<h2>Sync Jobs</h2>
{{range .Jobs}}
<div class="job">
<div class="job-header"><strong>{{.Name}}</strong><span class="badge {{.StatusClass}}">{{.StatusText}}</span></div>
<div class="details">
<div class="row"><span class="label">Source</span><span class="val">{{.Source}}</span></div>
<div class="row"><span class="label">Destination</span><span class="val">{{.Destination}}</span></div>
<div class="row"><span class="label">Last Run</span><span class="val">{{.LastRun}}</span></div>
<div class="row"><span class="label">Duration</span><span class="val">{{.Duration}}</span></div>
{{range .Stats}}<div class="row"><span class="label">{{.Label}}</span><span class="val">{{.Value}}</span></div>
{{end}}
</div>
</div>
{{end}}
</div>
</div>
<script>setTimeout(() => location.reload(), 30000);</script>
</body>
</html>`))
