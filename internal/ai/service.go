package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// DefaultModels is the ordered fallback list: quota exhaustion on one model
// advances to the next, newest first.
var DefaultModels = []string{
	"gemini-3-flash-preview",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
}

var ErrUnavailable = errors.New("ai service unavailable")

// Service wraps the generator with the ordered model fallback and a circuit
// breaker, so a dead upstream fails fast instead of walking the whole list on
// every request.
type Service struct {
	gen     Generator
	models  []string
	breaker *gobreaker.CircuitBreaker[string]
	log     *zap.Logger
}

func NewService(gen Generator, models []string, log *zap.Logger) *Service {
	if len(models) == 0 {
		models = DefaultModels
	}
	s := &Service{gen: gen, models: models, log: log}
	s.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:     "genai",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("ai breaker state changed",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return s
}

func (s *Service) generate(ctx context.Context, systemInstruction string, messages []Message, jsonOutput bool) (string, error) {
	return s.breaker.Execute(func() (string, error) {
		var lastErr error
		for _, model := range s.models {
			out, err := s.gen.Generate(ctx, model, systemInstruction, messages, jsonOutput)
			if err == nil {
				return out, nil
			}
			if errors.Is(err, ErrQuotaExhausted) {
				s.log.Warn("model quota exhausted, falling back", zap.String("model", model))
				lastErr = err
				continue
			}
			return "", err
		}
		if lastErr != nil {
			return "", lastErr
		}
		return "", ErrUnavailable
	})
}

// TravelAdvice answers a chat conversation. Callers cap the history length.
func (s *Service) TravelAdvice(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages")
	}
	return s.generate(ctx, travelAdviceInstruction, messages, false)
}

// GenerateDiaryDraft turns a free-form description into a diary draft object.
// The model signals an unusable prompt with {"status":"error"}; that message
// is surfaced to the caller as-is.
func (s *Service) GenerateDiaryDraft(ctx context.Context, prompt string) (map[string]any, error) {
	full := fmt.Sprintf(
		"Reference Date (Today's Date): %s.\nPlease generate a travel diary JSON based on the following description:\n%s",
		time.Now().Format("2006-01-02"), prompt)

	out, err := s.generate(ctx, diaryGenerationInstruction, []Message{{Role: "user", Content: full}}, true)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if status, _ := data["status"].(string); status == "error" {
		msg, _ := data["message"].(string)
		if msg == "" {
			msg = "the description was too vague to generate a diary"
		}
		return nil, errors.New(msg)
	}
	return data, nil
}

// AnalyzeMood scores a mood note between 0 and 1 with a short reason. It
// satisfies the job worker's analyzer contract.
func (s *Service) AnalyzeMood(ctx context.Context, content string) (float64, string, error) {
	out, err := s.generate(ctx, moodAnalysisInstruction, []Message{{Role: "user", Content: content}}, true)
	if err != nil {
		return 0, "", err
	}

	var result struct {
		MoodVector float64 `json:"mood_vector"`
		MoodReason string  `json:"mood_reason"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return 0, "", fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if result.MoodVector < 0 || result.MoodVector > 1 {
		return 0, "", fmt.Errorf("mood vector out of range: %v", result.MoodVector)
	}
	return result.MoodVector, result.MoodReason, nil
}
