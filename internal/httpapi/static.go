package httpapi

import (
	"embed"
	"net/http"
)

//go:embed web/*
var embeddedWeb embed.FS

func (s *Server) handleIndexPage(w http.ResponseWriter, _ *http.Request) {
	servePage(w, "web/index.html")
}

func (s *Server) handleReportPage(w http.ResponseWriter, _ *http.Request) {
	// The page reads the interview id from its own URL path.
	servePage(w, "web/report.html")
}

func servePage(w http.ResponseWriter, name string) {
	data, err := embeddedWeb.ReadFile(name)
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
