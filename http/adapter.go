package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sagarc03/notes"
)

// CORS values attached to every response the adapter shapes.
const (
	corsAllowOrigin      = "*"
	corsAllowCredentials = "true"
	corsAllowHeaders     = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"
	corsAllowMethods     = "GET,POST,PUT,DELETE,OPTIONS"
	contentTypeJSON      = "application/json"
)

// Request is the normalized, authenticated view of an inbound call that
// business functions receive.
type Request struct {
	Method     string
	PathParams map[string]string
	Body       []byte
	OwnerID    string
}

// PathParam returns the named path parameter, or "" when absent.
func (r *Request) PathParam(name string) string {
	if r == nil || r.PathParams == nil {
		return ""
	}
	return r.PathParams[name]
}

// Response is a fully formed HTTP response.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers"`
}

var errNilResponse = errors.New("business function returned a nil response")

// Func is a business function. It returns either a JSON-serializable value
// or a Response (or *Response), which is passed through untouched.
// A nil *Response is reported as an internal failure.
type Func func(ctx context.Context, req *Request) (any, error)

// ErrorStatus selects how failures map to HTTP status codes.
type ErrorStatus string

const (
	// ErrorStatusUniform reports every failure as 500.
	ErrorStatusUniform ErrorStatus = "uniform"
	// ErrorStatusTyped reports failures by kind: 401, 400, 404 or 500.
	ErrorStatusTyped ErrorStatus = "typed"
)

// StatusFor returns the HTTP status code for err under policy s.
func (s ErrorStatus) StatusFor(err error) int {
	if s != ErrorStatusTyped {
		return http.StatusInternalServerError
	}

	switch notes.KindOf(err) {
	case notes.KindAuthentication:
		return http.StatusUnauthorized
	case notes.KindValidation:
		return http.StatusBadRequest
	case notes.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON body of every failure response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Adapter sits between the router and business functions. It is stateless
// and safe for concurrent use.
type Adapter struct {
	status       ErrorStatus
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewAdapter returns an Adapter. A zero maxBodyBytes disables the body limit
// and a nil logger falls back to slog.Default().
func NewAdapter(status ErrorStatus, maxBodyBytes int64, logger *slog.Logger) *Adapter {
	if status == "" {
		status = ErrorStatusUniform
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{status: status, maxBodyBytes: maxBodyBytes, logger: logger}
}

// Invoke runs fn and shapes its outcome into a Response.
func (a *Adapter) Invoke(ctx context.Context, fn Func, req *Request) Response {
	result, err := fn(ctx, req)
	if err != nil {
		return a.failure(ctx, err)
	}

	switch res := result.(type) {
	case Response:
		return res
	case *Response:
		if res == nil {
			return a.failure(ctx, errNilResponse)
		}
		return *res
	}

	body, err := json.Marshal(result)
	if err != nil {
		return a.failure(ctx, err)
	}

	return Response{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    responseHeaders(),
	}
}

func (a *Adapter) failure(ctx context.Context, err error) Response {
	a.logger.ErrorContext(ctx, "request failed",
		"kind", notes.KindOf(err).String(),
		"error", err,
	)

	body, encErr := json.Marshal(ErrorBody{Error: notes.Message(err)})
	if encErr != nil {
		body = []byte(`{"error":"Unknown error occurred"}`)
	}

	return Response{
		StatusCode: a.status.StatusFor(err),
		Body:       string(body),
		Headers:    responseHeaders(),
	}
}

// Wrap turns fn into an http.HandlerFunc.
func (a *Adapter) Wrap(fn Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := a.normalize(w, r)
		if err != nil {
			WriteResponse(w, a.failure(r.Context(), err))
			return
		}

		WriteResponse(w, a.Invoke(r.Context(), fn, req))
	}
}

// WriteError shapes err the same way a failing business function would.
func (a *Adapter) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	WriteResponse(w, a.failure(r.Context(), err))
}

func (a *Adapter) normalize(w http.ResponseWriter, r *http.Request) (*Request, error) {
	req := &Request{
		Method:     r.Method,
		PathParams: map[string]string{},
		OwnerID:    OwnerFromContext(r.Context()),
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			req.PathParams[key] = rctx.URLParams.Values[i]
		}
	}

	if r.Body != nil {
		body := r.Body
		if a.maxBodyBytes > 0 {
			body = http.MaxBytesReader(w, r.Body, a.maxBodyBytes)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, notes.Invalid("Request body too large")
			}
			return nil, notes.Invalid("Could not read request body")
		}
		req.Body = data
	}

	return req, nil
}

func responseHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":      corsAllowOrigin,
		"Access-Control-Allow-Credentials": corsAllowCredentials,
		"Access-Control-Allow-Headers":     corsAllowHeaders,
		"Access-Control-Allow-Methods":     corsAllowMethods,
		"Content-Type":                     contentTypeJSON,
	}
}
