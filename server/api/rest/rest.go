package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hedisam/filedrop/server/internal/failure"
)

var (
	pathParamRegex = regexp.MustCompile(`{([^}]+)}`)
)

const (
	StatusSuccess = "Success"
	StatusError   = "Error"

	MsgUploaded      = "File sucessfully uploaded!"
	MsgRetrieved     = "File(s) succesfully retrieved from database!"
	MsgHealthy       = "Service is healthy"
	MsgNoFile        = "Error: not file uploaded"
	MsgInvalidName   = "Error: invalid file name"
	MsgDuplicate     = "Error: file already uploaded"
	MsgNotFound      = "Error: file not found in database"
	MsgMissing       = "Error: file content missing from storage"
	MsgMismatch      = "Error: file content does not match database"
	MsgTimeout       = "Error: request timed out"
	MsgTooLarge      = "Error: file too large"
	MsgBadRequest    = "Error: invalid request"
	MsgDatabaseError = "Error while using database"
)

// Envelope is the body of every response, successful or not.
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Err defines an error type that can be enriched with a http status code.
type Err struct {
	Message string
	Status  int
}

// Error implements the std error type.
func (e *Err) Error() string {
	return fmt.Sprintf("Error Code: %d Message: %s", e.Status, e.Message)
}

func NewErrf(status int, msg string, a ...any) *Err {
	return &Err{
		Message: fmt.Sprintf(msg, a...),
		Status:  status,
	}
}

var failureResponses = []struct {
	err     error
	status  int
	message string
}{
	{failure.ErrTimeout, http.StatusGatewayTimeout, MsgTimeout},
	{failure.ErrNoFileProvided, http.StatusBadRequest, MsgNoFile},
	{failure.ErrInvalidName, http.StatusBadRequest, MsgInvalidName},
	{failure.ErrDuplicateKey, http.StatusConflict, MsgDuplicate},
	{failure.ErrNotFound, http.StatusNotFound, MsgNotFound},
	{failure.ErrContentMissing, http.StatusInternalServerError, MsgMissing},
	{failure.ErrContentMismatch, http.StatusInternalServerError, MsgMismatch},
}

// ToErr maps err to what's sent back to the client. Only the failure kind is looked at, the underlying cause never
// leaves the server.
func ToErr(err error) *Err {
	var stErr *Err
	if errors.As(err, &stErr) {
		return stErr
	}
	for _, r := range failureResponses {
		if errors.Is(err, r.err) {
			return &Err{Message: r.message, Status: r.status}
		}
	}
	return &Err{Message: MsgDatabaseError, Status: http.StatusInternalServerError}
}

// Func defines a server Func that implements an restful api endpoint.
type Func[Req any, Resp any] func(ctx context.Context, req *Req) (Resp, error)

type Mux interface {
	HandleFunc(pattern string, f func(w http.ResponseWriter, r *http.Request))
}

func RegisterFunc[Req any, Resp any](logger *logrus.Logger, mux Mux, method, endpoint, successMsg string, f Func[Req, Resp]) {
	var pathParamKeys []string
	matches := pathParamRegex.FindAllStringSubmatch(endpoint, -1)
	for match := range slices.Values(matches) {
		key := strings.TrimSuffix(match[1], "...")
		if key == "$" {
			continue
		}
		pathParamKeys = append(pathParamKeys, key)
	}
	pattern := fmt.Sprintf("%s %s", method, endpoint)
	mux.HandleFunc(pattern, FuncAdapter(logger, successMsg, f, pathParamKeys...))
}

// FuncAdapter accepts a server Func and returns a http.HandlerFunc that can be used for API endpoint registration.
// This saves us from explicitly writing http responses or errors each time we need to terminate or return from the
// function. It gives us the ability to simply return a response and error, just like gRPC server methods.
// The response is sent as the data of a success envelope carrying successMsg.
func FuncAdapter[Req any, Resp any](log *logrus.Logger, successMsg string, f Func[Req, Resp], pathParamKeys ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithContext(r.Context()).WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"pattern": r.Pattern,
			"query":   r.URL.Query(),
		})
		logger.Debug("Handling request in FuncAdapter")

		reqData := make(map[string]any)

		// populate the request body values first, if any.
		if r.Body != nil && r.ContentLength > 0 {
			err := json.NewDecoder(r.Body).Decode(&reqData)
			if err != nil {
				logger.WithError(err).Warn("Failed to unmarshal request body in FuncAdapter")
				WriteError(w, logger, NewErrf(http.StatusBadRequest, MsgBadRequest))
				return
			}
		}

		// then populate query param values, replacing request body values if there's any conflict.
		for qParam, val := range r.URL.Query() {
			switch {
			case len(val) == 1:
				reqData[qParam] = val[0]
			case len(val) > 1:
				reqData[qParam] = val
			}
		}

		// final step, populate url path values which can replace existing values populated
		// from query params and req body values
		for param := range slices.Values(pathParamKeys) {
			if val := r.PathValue(param); val != "" {
				reqData[param] = val
			}
		}

		reqBody, err := json.Marshal(reqData)
		if err != nil {
			logger.WithError(err).Error("Failed to marshal merged request data in FuncAdapter")
			WriteError(w, logger, NewErrf(http.StatusInternalServerError, MsgBadRequest))
			return
		}

		var req Req
		err = json.Unmarshal(reqBody, &req)
		if err != nil {
			logger.WithError(err).Warn("Failed to unmarshal merged request body in FuncAdapter")
			WriteError(w, logger, NewErrf(http.StatusBadRequest, MsgBadRequest))
			return
		}

		resp, err := f(r.Context(), &req)
		if err != nil {
			WriteError(w, logger, err)
			return
		}

		WriteEnvelope(w, logger, http.StatusOK, &Envelope{
			Data:    resp,
			Message: successMsg,
			Status:  StatusSuccess,
		})
	}
}

func WriteEnvelope(w http.ResponseWriter, logger *logrus.Entry, status int, env *Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(env)
	if err != nil {
		logger.WithError(err).Error("Failed to write response body")
	}
}

// WriteError sends the error envelope for err.
func WriteError(w http.ResponseWriter, logger *logrus.Entry, err error) {
	stErr := ToErr(err)
	logger.WithError(err).WithField("status", stErr.Status).Debug("Responding with error")
	WriteEnvelope(w, logger, stErr.Status, &Envelope{
		Data:    "",
		Message: stErr.Message,
		Status:  StatusError,
	})
}
