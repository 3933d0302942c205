package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a deterministic in-process stand-in for the
// text-generation service, selected with ENABLE_MOCKS.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// CallModel echoes a short digest of the request instead of generating text.
// Scoring prompts get a well-formed neutral JSON response so prioritization
// behaves as it would against a live service.
func (m *MockConnector) CallModel(ctx context.Context, modelID string, messages []entity.Message, options map[string]any) (string, error) {
	ctxzap.Info(ctx, "[MOCK] model call",
		zap.String("model_id", modelID),
		zap.Int("messages", len(messages)),
	)

	var user string
	for _, msg := range messages {
		if msg.Role == entity.RoleUser {
			user = msg.Content
		}
	}

	if strings.Contains(user, `"chunk_index"`) {
		return mockScores(user), nil
	}

	digest := user
	if runes := []rune(digest); len(runes) > 80 {
		digest = string(runes[:80]) + "…"
	}
	return fmt.Sprintf("[MOCK %s] processed %d chars: %s", modelID, len([]rune(user)), digest), nil
}

// mockScores returns a neutral score for every fragment mentioned in the
// scoring prompt, counting "Fragment N:" headers.
func mockScores(prompt string) string {
	count := strings.Count(prompt, "Fragment ")
	if count == 0 {
		count = 1
	}

	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"chunk_index":%d,"score":%d}`, i, entity.NeutralScore)
	}
	sb.WriteString("]")
	return sb.String()
}
