package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed assets/*
var embeddedFiles embed.FS

func (s *Server) assetsHandler() gin.HandlerFunc {
	fsys, err := fs.Sub(embeddedFiles, "assets")
	if err != nil {
		panic(err)
	}

	wfs := http.FileServer(http.FS(fsys))
	return func(c *gin.Context) {
		wfs.ServeHTTP(c.Writer, c.Request)
	}
}
