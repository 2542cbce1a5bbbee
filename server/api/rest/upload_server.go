package rest

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/failure"
)

//go:generate moq -out mocks/ingester.go -pkg mocks -skip-ensure . Ingester

// FormField is the multipart form field carrying the uploaded file.
const FormField = "file"

type Ingester interface {
	Ingest(ctx context.Context, name string, data []byte) (*catalog.FileRecord, error)
}

type UploadServer struct {
	logger         *logrus.Logger
	ingester       Ingester
	maxUploadBytes int64
}

func NewUploadServer(logger *logrus.Logger, ingester Ingester, maxUploadBytes int64) *UploadServer {
	return &UploadServer{
		logger:         logger,
		ingester:       ingester,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *UploadServer) UploadFile(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.WithContext(r.Context())

	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	f, header, err := r.FormFile(FormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logger.WithField("limit", maxErr.Limit).Warn("Upload exceeds the maximum allowed size")
			WriteError(w, logger, NewErrf(http.StatusRequestEntityTooLarge, MsgTooLarge))
			return
		}
		logger.WithError(err).Warn("Could not read file from multipart form")
		WriteError(w, logger, failure.ErrNoFileProvided)
		return
	}
	defer f.Close()

	logger = logger.WithField("name", header.Filename)

	data, err := io.ReadAll(f)
	if err != nil {
		logger.WithError(err).Warn("Failed to read uploaded file")
		WriteError(w, logger, NewErrf(http.StatusBadRequest, MsgBadRequest))
		return
	}

	rec, err := s.ingester.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		WriteError(w, logger, err)
		return
	}

	logger.Debug("Successfully uploaded file")
	WriteEnvelope(w, logger, http.StatusOK, &Envelope{
		Data:    rec,
		Message: MsgUploaded,
		Status:  StatusSuccess,
	})
}
