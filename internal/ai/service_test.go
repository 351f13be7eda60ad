package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGen scripts one response per model name.
type fakeGen struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeGen) Generate(ctx context.Context, model, systemInstruction string, messages []Message, jsonOutput bool) (string, error) {
	f.calls = append(f.calls, model)
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

var testModels = []string{"model-a", "model-b", "model-c"}

func TestTravelAdviceFallsBackOnQuota(t *testing.T) {
	gen := &fakeGen{
		responses: map[string]string{"model-c": "take the night train"},
		errs: map[string]error{
			"model-a": ErrQuotaExhausted,
			"model-b": ErrQuotaExhausted,
		},
	}
	svc := NewService(gen, testModels, zap.NewNop())

	out, err := svc.TravelAdvice(context.Background(), []Message{{Role: "user", Content: "how to get to Kyoto?"}})
	require.NoError(t, err)
	assert.Equal(t, "take the night train", out)
	assert.Equal(t, []string{"model-a", "model-b", "model-c"}, gen.calls)
}

func TestTravelAdviceNonQuotaErrorAborts(t *testing.T) {
	boom := errors.New("upstream 500")
	gen := &fakeGen{errs: map[string]error{"model-a": boom}}
	svc := NewService(gen, testModels, zap.NewNop())

	_, err := svc.TravelAdvice(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"model-a"}, gen.calls, "no fallback on non-quota errors")
}

func TestTravelAdviceAllModelsExhausted(t *testing.T) {
	gen := &fakeGen{errs: map[string]error{
		"model-a": ErrQuotaExhausted,
		"model-b": ErrQuotaExhausted,
		"model-c": ErrQuotaExhausted,
	}}
	svc := NewService(gen, testModels, zap.NewNop())

	_, err := svc.TravelAdvice(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Len(t, gen.calls, 3)
}

func TestTravelAdviceEmptyConversation(t *testing.T) {
	svc := NewService(&fakeGen{}, testModels, zap.NewNop())
	_, err := svc.TravelAdvice(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateDiaryDraft(t *testing.T) {
	gen := &fakeGen{responses: map[string]string{
		"model-a": `{"title":"Weekend in Lisbon","entry_type":"visited","coordinates":{"lat":38.7223,"lng":-9.1393}}`,
	}}
	svc := NewService(gen, testModels, zap.NewNop())

	draft, err := svc.GenerateDiaryDraft(context.Background(), "two days in lisbon, lots of pastel de nata")
	require.NoError(t, err)
	assert.Equal(t, "Weekend in Lisbon", draft["title"])
	assert.Equal(t, "visited", draft["entry_type"])
}

func TestGenerateDiaryDraftModelError(t *testing.T) {
	gen := &fakeGen{responses: map[string]string{
		"model-a": `{"status":"error","message":"description too vague"}`,
	}}
	svc := NewService(gen, testModels, zap.NewNop())

	_, err := svc.GenerateDiaryDraft(context.Background(), "uh")
	require.Error(t, err)
	assert.Equal(t, "description too vague", err.Error())
}

func TestGenerateDiaryDraftInvalidJSON(t *testing.T) {
	gen := &fakeGen{responses: map[string]string{"model-a": "sorry, I cannot do that"}}
	svc := NewService(gen, testModels, zap.NewNop())

	_, err := svc.GenerateDiaryDraft(context.Background(), "trip")
	assert.Error(t, err)
}

func TestAnalyzeMood(t *testing.T) {
	gen := &fakeGen{responses: map[string]string{
		"model-a": `{"mood_vector":0.85,"mood_reason":"excited about the trip"}`,
	}}
	svc := NewService(gen, testModels, zap.NewNop())

	vector, reason, err := svc.AnalyzeMood(context.Background(), "can't wait for tomorrow!")
	require.NoError(t, err)
	assert.Equal(t, 0.85, vector)
	assert.Equal(t, "excited about the trip", reason)
}

func TestAnalyzeMoodOutOfRange(t *testing.T) {
	gen := &fakeGen{responses: map[string]string{
		"model-a": `{"mood_vector":1.4,"mood_reason":"??"}`,
	}}
	svc := NewService(gen, testModels, zap.NewNop())

	_, _, err := svc.AnalyzeMood(context.Background(), "hmm")
	assert.Error(t, err)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("upstream down")
	gen := &fakeGen{errs: map[string]error{"model-a": boom}}
	svc := NewService(gen, testModels, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := svc.TravelAdvice(context.Background(), []Message{{Role: "user", Content: "hi"}})
		require.Error(t, err)
	}
	require.Len(t, gen.calls, 5)

	// breaker is open: the generator is not reached anymore
	_, err := svc.TravelAdvice(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Len(t, gen.calls, 5)
}
