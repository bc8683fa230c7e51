package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rakapradana/storefront/internal/config"
	"github.com/rakapradana/storefront/internal/errors"
	inHttp "github.com/rakapradana/storefront/internal/http"
	"github.com/rakapradana/storefront/internal/log"
)

// Client talks to the remote order/product/auth service. It maps the
// backend's HTTP error statuses onto the storefront error taxonomy and never
// reinterprets one kind as another.
type Client struct {
	baseUrl string
	http    *http.Client
}

func NewClient(cfg config.Backend) *Client {
	return &Client{
		baseUrl: strings.TrimRight(cfg.BaseUrl, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type errorBody struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// do issues one request. mutating marks status-mutating calls, whose timeouts
// must surface as Unknown so the caller re-queries instead of retrying.
func (g *Client) do(
	c context.Context,
	method string,
	path string,
	authToken string,
	body interface{},
	out interface{},
	mutating bool,
) error {
	var reader io.Reader
	if body != nil {
		buf := bytes.Buffer{}
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed encoding request body with error=%w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(c, method, g.baseUrl+path, reader)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	if requestId := log.RequestIDFromContext(c); requestId != "" {
		req.Header.Set(inHttp.KeyHeaderRequestID, requestId)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		if mutating && isTimeout(err) {
			return fmt.Errorf(
				"request %s %s timed out with error=%w",
				method,
				path,
				stderrors.Join(err, errors.ErrUnknownOutcome),
			)
		}
		return fmt.Errorf("failed requesting %s %s with error=%w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return g.mapError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed decoding response body with error=%w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func (g *Client) mapError(resp *http.Response) error {
	body := errorBody{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		kind = errors.ErrNotAuthenticated
	case http.StatusForbidden:
		kind = errors.ErrForbidden
	case http.StatusNotFound:
		kind = errors.ErrNotFound
	case http.StatusConflict:
		kind = errors.ErrInvalidTransition
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = errors.ErrValidationFailed
	default:
		return fmt.Errorf("backend returned status=%d message=%s", resp.StatusCode, body.Message)
	}
	return fmt.Errorf("backend rejected request with message=%s error=%w", body.Message, kind)
}
