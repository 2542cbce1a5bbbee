package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/retrieval"
)

//go:generate moq -out mocks/file_service.go -pkg mocks -skip-ensure . FileService
//go:generate moq -out mocks/health_checker.go -pkg mocks -skip-ensure . HealthChecker

// FilenameParam is the path value holding the requested file name.
const FilenameParam = "filename"

type FileService interface {
	ListFiles(ctx context.Context) ([]catalog.FileRecord, error)
	FetchFile(ctx context.Context, name string) (*retrieval.File, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// FileServer serves the read side of the API.
type FileServer struct {
	logger *logrus.Logger
	files  FileService
	health HealthChecker
}

func NewFileServer(logger *logrus.Logger, files FileService, health HealthChecker) *FileServer {
	return &FileServer{
		logger: logger,
		files:  files,
		health: health,
	}
}

type ListFilesRequest struct{}

func (s *FileServer) ListFiles(ctx context.Context, _ *ListFilesRequest) ([]catalog.FileRecord, error) {
	records, err := s.files.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []catalog.FileRecord{}
	}

	s.logger.WithContext(ctx).WithField("count", len(records)).Debug("Listed files")
	return records, nil
}

// GetFile writes the file content as the envelope data. The ETag is an xxhash of the content, so clients can
// revalidate cheaply with If-None-Match.
func (s *FileServer) GetFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue(FilenameParam)
	logger := s.logger.WithContext(r.Context()).WithField("name", name)

	file, err := s.files.FetchFile(r.Context(), name)
	if err != nil {
		WriteError(w, logger, err)
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(file.Content))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	WriteEnvelope(w, logger, http.StatusOK, &Envelope{
		Data:    string(file.Content),
		Message: MsgRetrieved,
		Status:  StatusSuccess,
	})
}

type HealthRequest struct{}

func (s *FileServer) Healthz(ctx context.Context, _ *HealthRequest) (string, error) {
	err := s.health.Ping(ctx)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Health check failed")
		return "", NewErrf(http.StatusServiceUnavailable, "Error: database unreachable")
	}
	return "ok", nil
}
