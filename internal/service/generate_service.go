package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"llm_gateway/internal/llm"
	"llm_gateway/internal/logging"
	"llm_gateway/internal/model"
	"llm_gateway/internal/observability"
	"llm_gateway/internal/policy"
)

// Authorizer decides model access for an account.
type Authorizer interface {
	Authorize(account *model.Account, modelID string) policy.Decision
}

// Generator performs the upstream generation call.
type Generator interface {
	Generate(ctx context.Context, prompt, modelID string) (string, error)
}

// GenerateService validates, authorizes and proxies generation requests
type GenerateService interface {
	Generate(ctx context.Context, account *model.Account, req model.GenerateRequest) (string, error)
}

type generateService struct {
	policy  Authorizer
	llm     Generator
	metrics *observability.Metrics
	log     logging.Logger
}

// NewGenerateService creates a new GenerateService. metrics may be nil.
func NewGenerateService(policy Authorizer, llm Generator, metrics *observability.Metrics, log logging.Logger) GenerateService {
	return &generateService{policy: policy, llm: llm, metrics: metrics, log: log}
}

// Generate checks input and entitlement before any upstream call is made.
func (s *generateService) Generate(ctx context.Context, account *model.Account, req model.GenerateRequest) (string, error) {
	modelID := strings.TrimSpace(req.Model)
	if req.Prompt == "" || modelID == "" {
		s.count("", "invalid")
		return "", &ValidationError{Field: "prompt", Message: "Missing prompt or model"}
	}
	if n := utf8.RuneCountInString(req.Prompt); n > model.MaxPromptLength {
		s.count("", "invalid")
		return "", &ValidationError{
			Field:   "prompt",
			Message: fmt.Sprintf("Prompt is too long (%d characters, maximum is %d)", n, model.MaxPromptLength),
		}
	}

	decision := s.policy.Authorize(account, modelID)
	if !decision.Allowed {
		switch decision.Reason {
		case policy.ReasonUnknownUser:
			s.count("", "unauthenticated")
			return "", ErrNotAuthenticated
		case policy.ReasonUnknownModel:
			s.count("unknown", "invalid")
			return "", &ValidationError{Field: "model", Message: "Unknown model"}
		default:
			s.count(modelID, "forbidden")
			return "", &AuthorizationError{Reason: decision.Reason, ModelID: modelID}
		}
	}

	start := time.Now()
	text, err := s.llm.Generate(ctx, req.Prompt, modelID)
	if s.metrics != nil {
		s.metrics.ObserveUpstream(modelID, time.Since(start))
	}
	if err != nil {
		kind := "unknown"
		var upstreamErr *llm.Error
		if errors.As(err, &upstreamErr) {
			kind = string(upstreamErr.Kind)
		}
		if s.metrics != nil {
			s.metrics.UpstreamErrors.WithLabelValues(kind).Inc()
		}
		s.count(modelID, "upstream_error")
		s.log.Error(ctx, "upstream generation failed", "model", modelID, "kind", kind, "error", err)
		return "", fmt.Errorf("generate with %s: %w", modelID, err)
	}

	s.count(modelID, "ok")
	return text, nil
}

func (s *generateService) count(modelID, outcome string) {
	if s.metrics == nil {
		return
	}
	if modelID == "" {
		modelID = "none"
	}
	s.metrics.GenerateRequests.WithLabelValues(modelID, outcome).Inc()
}
