package server

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c9s/pythia/pkg/generator"
)

func (s *Server) newEngine() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowMethods:     []string{"GET", "POST"},
		AllowWebSockets:  true,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/api/slides", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"slides": s.Player.Slides()})
	})

	r.GET("/api/slideshow", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Player.State())
	})

	r.POST("/api/slideshow/next", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Player.Next())
	})

	r.POST("/api/slideshow/previous", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Player.Previous())
	})

	r.POST("/api/slideshow/toggle", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Player.Toggle())
	})

	r.POST("/api/slideshow/play", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Player.Play())
	})

	r.POST("/api/slideshow/pause", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Player.Pause())
	})

	r.GET("/api/slideshow/ws", s.handleWebSocket)

	r.POST("/api/refresh", s.handleRefresh)

	r.POST("/api/quit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})

		if s.Quit != nil {
			// respond first, the quit callback shuts down this server
			go s.Quit()
		}
	})

	r.GET("/graphs/:file", s.handleGraph)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(s.assetsHandler())
	return r
}

func (s *Server) handleGraph(c *gin.Context) {
	file := c.Param("file")
	if file != filepath.Base(file) || strings.HasPrefix(file, ".") {
		c.JSON(http.StatusNotFound, gin.H{"error": "graph not found"})
		return
	}

	switch filepath.Ext(file) {
	case ".png":
	case ".json":
		if file != generator.IndexFile {
			c.JSON(http.StatusNotFound, gin.H{"error": "graph not found"})
			return
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "graph not found"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.File(filepath.Join(s.GraphsDir, file))
}

func (s *Server) handleRefresh(c *gin.Context) {
	if s.Refresh == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "refresh is not configured"})
		return
	}

	report, err := s.Refresh(c.Request.Context())
	if report == nil || len(report.Slides) == 0 {
		msg := "no slides"
		if err != nil {
			msg = err.Error()
		}
		// keep showing the previous charts
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	if err != nil {
		log.WithError(err).Warn("refresh completed with errors")
	}

	state := s.Player.Replace(report.Slides)
	c.JSON(http.StatusOK, gin.H{
		"runId": report.RunID,
		"state": state,
	})
}
