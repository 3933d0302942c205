package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/futig/pipeline-backend/internal/config"
	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/futig/pipeline-backend/internal/integration/common"
	pkghttp "github.com/futig/pipeline-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// CallModel sends one conversation to the text-generation service and
// returns the generated text. Transient failures are retried per the
// connector's retry config; the final error wraps entity.ErrUpstreamCall so
// callers can distinguish upstream trouble from their own.
func (c *Connector) CallModel(ctx context.Context, modelID string, messages []entity.Message, options map[string]any) (string, error) {
	ctxzap.Debug(ctx, "calling text-generation service",
		zap.String("model_id", modelID),
		zap.Int("messages", len(messages)),
	)

	req := entity.LLMCompletionRequest{
		Model:    modelID,
		Messages: messages,
		Options:  options,
	}

	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)

	result, err := retry.DoWithData(func() (string, error) {
		var resp entity.LLMCompletionResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionEndpoint, req, &resp); err != nil {
			return "", err
		}
		if resp.Result == "" {
			return "", fmt.Errorf("invalid completion response: empty or missing result field")
		}
		return resp.Result, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrUpstreamCall, err)
	}

	ctxzap.Debug(ctx, "completion received", zap.Int("result_length", len(result)))

	return result, nil
}

// isRetryable allows retries on network-level failures, rate limiting and
// server errors. Client errors and malformed responses fail fast.
func isRetryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}
