// Package server exposes the submission and export endpoints over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/00greena/PODagent/internal/common"
	"github.com/00greena/PODagent/internal/export"
	"github.com/00greena/PODagent/internal/pipeline"
	"github.com/00greena/PODagent/internal/repository"
	"github.com/00greena/PODagent/internal/timeutil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Server struct {
	submitter *pipeline.Submitter
	repo      repository.RecordRepository
	exporter  *export.Service
	zone      string
	logger    *slog.Logger
}

func New(submitter *pipeline.Submitter, repo repository.RecordRepository,
	exporter *export.Service, zone string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if zone == "" {
		zone = timeutil.DefaultZone
	}
	return &Server{
		submitter: submitter,
		repo:      repo,
		exporter:  exporter,
		zone:      zone,
		logger:    logger,
	}
}

// Router builds the gin engine. uploadDir, when non-empty, is served under
// /uploads so disk-stored blob references resolve.
func (s *Server) Router(uploadDir string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if uploadDir != "" {
		r.Static("/uploads", uploadDir)
	}

	api := r.Group("/api")
	api.POST("/submit", s.handleSubmit)
	api.GET("/export", s.handleExport)
	api.GET("/reconcile", s.handleReconcile)

	return r
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req pipeline.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := s.submitter.Submit(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to process submission"
		if common.IsValidation(err) {
			status = http.StatusBadRequest
			msg = "Missing required fields"
		}
		var app *common.AppError
		if errors.As(err, &app) {
			s.logger.Error("submit.failed", "code", app.Code, "error", err)
		} else {
			s.logger.Error("submit.failed", "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

func (s *Server) handleExport(c *gin.Context) {
	records, err := s.repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export data"})
		return
	}

	f, err := s.exporter.BuildFullExport(records)
	if err != nil {
		s.logger.Error("export.full.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export data"})
		return
	}

	s.writeWorkbook(c, f, export.FullExportFilename(s.nowLocal()))
}

func (s *Server) handleReconcile(c *gin.Context) {
	now := s.nowLocal()
	weekNumber := timeutil.ISOWeekNumber(now)
	year := now.Year()

	records, err := s.repo.ListByWeek(c.Request.Context(), weekNumber, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile weekly data"})
		return
	}

	f, err := s.exporter.BuildWeeklyReconciliation(records, weekNumber, year)
	if err != nil {
		s.logger.Error("export.weekly.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile weekly data"})
		return
	}

	s.writeWorkbook(c, f, export.WeeklyFilename(weekNumber, year))
}

func (s *Server) writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("export.write.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate spreadsheet"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) nowLocal() time.Time {
	loc, err := time.LoadLocation(s.zone)
	if err != nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}
