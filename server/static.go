package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/samber/lo"
)

//go:embed web
var web embed.FS

func staticHandler() http.Handler {
	return http.FileServerFS(lo.Must(fs.Sub(web, "web")))
}
