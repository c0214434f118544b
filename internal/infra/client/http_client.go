package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/rj/api"
	"github.com/RoyceAzure/rj/util/rj_http"
)

// TokenSource hands out the bearer token sent with every upstream call.
type TokenSource interface {
	Token() (string, error)
}

type Option func(*HttpClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *HttpClient) {
		c.clientOptions = append(c.clientOptions, rj_http.WithTimeout(timeout))
	}
}

func WithTokenSource(src TokenSource) Option {
	return func(c *HttpClient) {
		c.tokens = src
	}
}

// HttpClient is the json transport shared by every upstream client.
type HttpClient struct {
	baseURL       string
	client        *rj_http.Client
	clientOptions []rj_http.ClientOptions
	tokens        TokenSource
}

func NewHttpClient(baseURL string, opts ...Option) *HttpClient {
	c := &HttpClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		clientOptions: []rj_http.ClientOptions{rj_http.WithTimeout(5 * time.Second)},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = rj_http.NewHttpClient(c.clientOptions...)
	return c
}

// StatusError is an api.FailedResponse answered by an upstream service.
type StatusError struct {
	StatusCode int
	Message    string
	Code       apperr.Kind
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

// doJSON sends in as json and decodes the answer into out. Upstream services
// answer failures as api.FailedResponse, those come back as *StatusError.
// Transport errors, timeouts and unreadable bodies are UpstreamUnavailable.
func (c *HttpClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	reqOpt, err := c.requestOption(ctx)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "failed to sign service token")
	}

	url := c.baseURL + path
	var body []byte
	switch method {
	case http.MethodGet:
		body, err = c.client.Get(ctx, url, reqOpt)
	case http.MethodPost:
		body, err = c.client.Post(ctx, url, in, reqOpt)
	default:
		return fmt.Errorf("unsupported method %s", method)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamUnavailable, err, fmt.Sprintf("%s %s unavailable", method, path))
	}

	var failed api.FailedResponse
	if err := json.Unmarshal(body, &failed); err == nil && !failed.Success && failed.ResponseError.Code != 0 {
		return newStatusError(failed.ResponseError)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Wrap(apperr.KindUpstreamUnavailable, err, fmt.Sprintf("%s %s returned an invalid body", method, path))
	}
	return nil
}

func (c *HttpClient) requestOption(ctx context.Context) (rj_http.RequestOption, error) {
	var bearer string
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		bearer = "Bearer " + tok
	}
	requestID, _ := ctx.Value(constants.RequestIDKey).(string)

	return func(req *http.Request) {
		req.Header.Set("Accept", "application/json")
		if bearer != "" {
			req.Header.Set(string(constants.AuthorizationHeaderKey), bearer)
		}
		if requestID != "" {
			req.Header.Set(string(constants.RequestIDHeaderKey), requestID)
		}
	}, nil
}

func newStatusError(re api.ResponseError) *StatusError {
	se := &StatusError{StatusCode: re.Code, Message: http.StatusText(re.Code)}
	if re.Message != nil && *re.Message != "" {
		se.Message = *re.Message
	}
	if len(re.Details) > 0 {
		se.Code = apperr.Kind(re.Details[0])
	}
	return se
}

// mapStatus turns a *StatusError into an apperr kind by status code. Statuses
// not listed are treated as the upstream being unavailable.
func mapStatus(err error, kinds map[int]apperr.Kind) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	if kind, ok := kinds[se.StatusCode]; ok {
		return apperr.Wrap(kind, se, se.Message)
	}
	return apperr.Wrap(apperr.KindUpstreamUnavailable, se, "upstream failed")
}
