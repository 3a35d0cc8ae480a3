package service

import (
	"context"
	"strings"
	"testing"

	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedQuestions(t *testing.T) {
	raw := `[
		{
			"question": "What does a nil map lookup return?",
			"options": ["the zero value", "a panic", "an error", "undefined"],
			"correct_answer": "the zero value"
		},
		{
			"question": "What does this print?",
			"code": "fmt.Println(len(\"héllo\"))",
			"options": ["5", "6", "7", "compile error"],
			"correct_answer": "6"
		}
	]`

	questions, err := parseGeneratedQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, "the zero value", questions[0].CorrectAnswer)
	require.Len(t, questions[0].Options, 4)
	assert.True(t, questions[0].Options[0].IsCorrect)
	assert.False(t, questions[0].Options[1].IsCorrect)

	assert.NotEmpty(t, questions[1].Code)
}

func TestParseGeneratedQuestionsStripsFences(t *testing.T) {
	raw := "```json\n[{\"question\":\"q\",\"options\":[\"a\",\"b\"],\"correct_answer\":\"a\"}]\n```"

	questions, err := parseGeneratedQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.True(t, questions[0].Options[0].IsCorrect)
}

func TestParseGeneratedQuestionsRejectsGarbage(t *testing.T) {
	_, err := parseGeneratedQuestions("sorry, I cannot help with that")
	assert.Error(t, err)

	// Valid JSON but nothing usable.
	_, err = parseGeneratedQuestions(`[{"question":"","options":[]}]`)
	assert.Error(t, err)
}

func TestKeyManagerRotation(t *testing.T) {
	km := &KeyManager{keys: []string{"k1", "k2", "k3"}}

	assert.True(t, km.HasKeys())
	assert.Equal(t, "k1", km.Current())
	assert.Equal(t, "k2", km.Rotate())
	assert.Equal(t, "k3", km.Rotate())
	assert.Equal(t, "k1", km.Rotate())

	empty := &KeyManager{}
	assert.False(t, empty.HasKeys())
	assert.Equal(t, "", empty.Current())
	assert.Equal(t, "", empty.Rotate())
}

func TestBuildDocumentPrompt(t *testing.T) {
	prompt := buildDocumentPrompt("goroutine scheduling", "The Go scheduler multiplexes goroutines onto OS threads.", 3)

	assert.Contains(t, prompt, "3 multiple-choice questions")
	assert.Contains(t, prompt, "goroutine scheduling")
	assert.Contains(t, prompt, "multiplexes goroutines")
	assert.Contains(t, prompt, "SOURCE MATERIAL:")
}

func TestBuildDocumentPromptTruncatesLongSource(t *testing.T) {
	long := strings.Repeat("a", maxSourceChars+5000)

	prompt := buildDocumentPrompt("topic", long, 1)
	assert.Less(t, len(prompt), maxSourceChars+1000)
}

func TestGenerateFromTextUnconfigured(t *testing.T) {
	g := &QuestionGenerator{cfg: testConfig(), keys: &KeyManager{}}

	_, err := g.GenerateFromText(context.Background(), "topic", "source", 2)
	assert.ErrorIs(t, err, util.ErrGenAIUnconfigured)
}
