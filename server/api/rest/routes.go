package rest

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// RegisterRoutes wires the public API. The exact-match patterns take precedence over GET /{filename}, so
// /healthz is never looked up as a file.
func RegisterRoutes(logger *logrus.Logger, mux Mux, upload *UploadServer, files *FileServer) {
	mux.HandleFunc(http.MethodPost+" /{$}", upload.UploadFile)
	RegisterFunc(logger, mux, http.MethodGet, "/{$}", MsgRetrieved, files.ListFiles)
	RegisterFunc(logger, mux, http.MethodGet, "/healthz", MsgHealthy, files.Healthz)
	mux.HandleFunc(http.MethodGet+" /{"+FilenameParam+"}", files.GetFile)
}
