package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const defaultGenAIModel = "gemini-1.5-flash"

// retryDelays spaces out retries on transient generation failures.
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// KeyManager rotates across the configured API keys so a rate-limited key
// does not stall generation. Keys come from the config plus the numbered
// GEMINI_API_KEY_1..4 environment variables.
type KeyManager struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

func NewKeyManager(primary string) *KeyManager {
	var keys []string
	if primary != "" {
		keys = append(keys, primary)
	}
	for i := 1; i <= 4; i++ {
		if k := os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)); k != "" {
			keys = append(keys, k)
		}
	}
	return &KeyManager{keys: keys}
}

func (m *KeyManager) HasKeys() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys) > 0
}

func (m *KeyManager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.keys) == 0 {
		return ""
	}
	return m.keys[m.idx]
}

func (m *KeyManager) Rotate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.keys) == 0 {
		return ""
	}
	m.idx = (m.idx + 1) % len(m.keys)
	return m.keys[m.idx]
}

// GeneratedQuestion is the JSON shape the model is prompted to return.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Code          string   `json:"code,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type QuestionGenerator struct {
	cfg  *config.Config
	keys *KeyManager
}

func NewQuestionGenerator(cfg *config.Config) *QuestionGenerator {
	return &QuestionGenerator{
		cfg:  cfg,
		keys: NewKeyManager(cfg.GenAI.APIKey),
	}
}

func (g *QuestionGenerator) Available() bool {
	return g.keys.HasKeys()
}

// Generate produces n multiple-choice questions for a skill.
func (g *QuestionGenerator) Generate(ctx context.Context, skill string, n int) ([]model.Question, error) {
	return g.generate(ctx, buildQuestionPrompt(skill, n))
}

// GenerateFromText produces n questions about a topic grounded in the
// supplied source document rather than the model's general knowledge.
func (g *QuestionGenerator) GenerateFromText(ctx context.Context, topic, sourceText string, n int) ([]model.Question, error) {
	return g.generate(ctx, buildDocumentPrompt(topic, sourceText, n))
}

// generate runs the prompt with retries. Each attempt uses the current API
// key; failures rotate the key and back off before the next try.
func (g *QuestionGenerator) generate(ctx context.Context, prompt string) ([]model.Question, error) {
	if !g.keys.HasKeys() {
		return nil, util.ErrGenAIUnconfigured
	}

	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			delay := retryDelays[attempt-1]
			logger.Log.Warn("Question generation retry",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			g.keys.Rotate()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, err := g.callModel(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		questions, err := parseGeneratedQuestions(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return questions, nil
	}
	return nil, fmt.Errorf("question generation failed after retries: %w", lastErr)
}

func (g *QuestionGenerator) callModel(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.keys.Current()))
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}
	defer client.Close()

	modelName := g.cfg.GenAI.Model
	if modelName == "" {
		modelName = defaultGenAIModel
	}

	gm := client.GenerativeModel(modelName)
	temp := g.cfg.GenAI.Temperature
	if temp == 0 {
		temp = 0.7
	}
	gm.Temperature = &temp

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func buildQuestionPrompt(skill string, n int) string {
	return fmt.Sprintf(`Generate %d multiple-choice questions to assess a candidate's knowledge of %s.

Return ONLY a JSON array, no prose and no markdown fences. Each element must have:
- "question": the question text
- "code": an optional code snippet the question refers to, or omit the field
- "options": exactly 4 answer strings
- "correct_answer": the text of the correct option, matching one of "options" exactly

Questions should range from basic to advanced and avoid trivia.`, n, skill)
}

// maxSourceChars bounds how much of an uploaded document goes into the
// prompt; beyond this the model's context fills with diminishing returns.
const maxSourceChars = 20000

func buildDocumentPrompt(topic, sourceText string, n int) string {
	source := sourceText
	if len(source) > maxSourceChars {
		source = source[:maxSourceChars]
	}
	return fmt.Sprintf(`Generate %d multiple-choice questions about %s, based strictly on the source material below.

Return ONLY a JSON array, no prose and no markdown fences. Each element must have:
- "question": the question text
- "code": an optional code snippet the question refers to, or omit the field
- "options": exactly 4 answer strings
- "correct_answer": the text of the correct option, matching one of "options" exactly

Every question must be answerable from the source material alone.

SOURCE MATERIAL:
%s`, n, topic, source)
}

// parseGeneratedQuestions tolerates markdown fences the model sometimes
// wraps around the JSON despite instructions.
func parseGeneratedQuestions(raw string) ([]model.Question, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var generated []GeneratedQuestion
	if err := json.Unmarshal([]byte(cleaned), &generated); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	var questions []model.Question
	for _, gq := range generated {
		if gq.Question == "" || len(gq.Options) == 0 {
			continue
		}
		q := model.Question{
			QuestionText:  gq.Question,
			Code:          gq.Code,
			CorrectAnswer: gq.CorrectAnswer,
		}
		for _, opt := range gq.Options {
			q.Options = append(q.Options, model.Option{
				OptionText: opt,
				IsCorrect:  opt == gq.CorrectAnswer,
			})
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	return questions, nil
}
