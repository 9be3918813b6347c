package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/common/httputil"
	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
)

// baseClient хранит общую часть REST клиентов портала: базовый URL, bearer-токен и разбор ответов.
type baseClient struct {
	client      *resty.Client
	baseURL     string
	credentials auth.CredentialProvider
	logger      *slog.Logger
}

func newBaseClient(cfg *config.Config, credentials auth.CredentialProvider, logger *slog.Logger, serviceName string) baseClient {
	return baseClient{
		client:      httputil.CreateResilientHTTPClient(cfg, logger, serviceName),
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		credentials: credentials,
		logger:      logger,
	}
}

func (c *baseClient) request(ctx context.Context, endpoint string) (*resty.Request, error) {
	token, err := c.credentials.Token()
	if err != nil {
		return nil, err
	}

	return c.client.R().
		SetContext(httputil.WithEndpoint(ctx, endpoint)).
		SetAuthToken(token).
		SetHeader("Accept", "application/json"), nil
}

func (c *baseClient) url(format string, args ...any) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}

// decodeList принимает и голый массив, и обёртку {"results": [...]}.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := strings.TrimSpace(string(body))

	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("ошибка при разборе списка: %w", err)
		}

		return items, nil
	}

	var envelope struct {
		Results []T `json:"results"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("ошибка при разборе списка: %w", err)
	}

	if envelope.Results == nil {
		return []T{}, nil
	}

	return envelope.Results, nil
}

// serverMessage достаёт текст ошибки из тела ответа сервера.
func serverMessage(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	switch {
	case payload.Detail != "":
		return payload.Detail
	case payload.Error != "":
		return payload.Error
	default:
		return payload.Message
	}
}

func sendFailed(resp *resty.Response, err error) error {
	if err != nil {
		return &errors.ErrSendFailed{Message: errors.DefaultSendFailedMessage}
	}

	message := serverMessage(resp.Body())
	if message == "" {
		message = errors.DefaultSendFailedMessage
	}

	return &errors.ErrSendFailed{
		StatusCode: resp.StatusCode(),
		Message:    message,
	}
}

func fetchFailed(resource string, resp *resty.Response, err error) error {
	if err != nil {
		return &errors.ErrFetchFailed{Resource: resource, Cause: err}
	}

	return &errors.ErrFetchFailed{
		Resource: resource,
		Cause:    &errors.HTTPError{StatusCode: resp.StatusCode()},
	}
}
