package studygen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cramdeck/cramdeck/internal/pipeline"
	"github.com/cramdeck/cramdeck/internal/rescache"
)

type fakeRunner struct {
	result *pipeline.Result
	calls  int
	query  string
}

func (f *fakeRunner) Process(_ context.Context, _, query string, _ int) *pipeline.Result {
	f.calls++
	f.query = query
	return f.result
}

type fakeSource struct {
	content map[string]string
}

func (f *fakeSource) AssembleContent(_ context.Context, ids []string) (string, error) {
	return f.content[ids[0]], nil
}

func okResult(response string, chunks ...string) *pipeline.Result {
	return &pipeline.Result{
		Success:         true,
		Response:        response,
		RetrievedChunks: chunks,
	}
}

func newTestGenerator(runner *fakeRunner) *Generator {
	source := &fakeSource{content: map[string]string{
		"doc-1": "Photosynthesis converts light energy into chemical energy.",
	}}
	return New(runner, source, rescache.New(time.Hour, 100))
}

func TestGenerateNotecards_ParsesModelOutput(t *testing.T) {
	runner := &fakeRunner{result: okResult(
		`[{"front": "What is photosynthesis?", "back": "Conversion of light into chemical energy."},
		  {"front": "Where does it occur?", "back": "In the chloroplasts."}]`,
		"some chunk",
	)}
	g := newTestGenerator(runner)

	cards, err := g.GenerateNotecards(context.Background(), "doc-1", 5)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is photosynthesis?", cards[0].Front)
	assert.Equal(t, "In the chloroplasts.", cards[1].Back)

	// Prompt carries the requested count
	assert.Contains(t, runner.query, "exactly 5")
}

func TestGenerateNotecards_FencedOutput(t *testing.T) {
	runner := &fakeRunner{result: okResult(
		"Here you go:\n```json\n[{\"front\": \"Q\", \"back\": \"A\"}]\n```",
	)}
	g := newTestGenerator(runner)

	cards, err := g.GenerateNotecards(context.Background(), "doc-1", 3)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Q", cards[0].Front)
}

func TestGenerateNotecards_FallbackOnUnusableOutput(t *testing.T) {
	runner := &fakeRunner{result: okResult(
		"I can't produce JSON right now.",
		"Chlorophyll absorbs red and blue light.",
		"The Calvin cycle fixes carbon dioxide.",
	)}
	g := newTestGenerator(runner)

	cards, err := g.GenerateNotecards(context.Background(), "doc-1", 5)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Contains(t, cards[0].Front, "Review:")
	assert.Equal(t, "Chlorophyll absorbs red and blue light.", cards[0].Back)
}

func TestGenerateNotecards_FallbackOnPipelineFailure(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.Result{
		Success:         false,
		FailedStage:     pipeline.StageGeneration,
		Err:             "generation returned an empty response",
		RetrievedChunks: []string{"The thylakoid membrane hosts the light reactions."},
	}}
	g := newTestGenerator(runner)

	cards, err := g.GenerateNotecards(context.Background(), "doc-1", 5)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "The thylakoid membrane hosts the light reactions.", cards[0].Back)
}

func TestGenerateNotecards_NothingRetrieved(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.Result{Success: false}}
	g := newTestGenerator(runner)

	_, err := g.GenerateNotecards(context.Background(), "doc-1", 5)
	assert.ErrorIs(t, err, ErrNothingRetrieved)
}

func TestGenerateNotecards_NoContent(t *testing.T) {
	runner := &fakeRunner{result: okResult("[]")}
	g := newTestGenerator(runner)

	_, err := g.GenerateNotecards(context.Background(), "missing-doc", 5)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, 0, runner.calls)
}

func TestGenerateNotecards_CachesResults(t *testing.T) {
	runner := &fakeRunner{result: okResult(`[{"front": "Q", "back": "A"}]`)}
	g := newTestGenerator(runner)
	ctx := context.Background()

	first, err := g.GenerateNotecards(ctx, "doc-1", 5)
	require.NoError(t, err)
	second, err := g.GenerateNotecards(ctx, "doc-1", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, runner.calls)

	// A different count is a different cache entry
	_, err = g.GenerateNotecards(ctx, "doc-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls)
}

func TestGenerateNotecards_TruncatesToCount(t *testing.T) {
	runner := &fakeRunner{result: okResult(
		`[{"front": "1", "back": "a"}, {"front": "2", "back": "b"}, {"front": "3", "back": "c"}]`,
	)}
	g := newTestGenerator(runner)

	cards, err := g.GenerateNotecards(context.Background(), "doc-1", 2)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestGenerateQuiz_ParsesModelOutput(t *testing.T) {
	runner := &fakeRunner{result: okResult(`[
		{"question": "What pigment drives the light reactions?",
		 "options": ["Chlorophyll", "Hemoglobin", "Keratin", "Melanin"],
		 "answer": 0,
		 "explanation": "Chlorophyll absorbs the light."}
	]`)}
	g := newTestGenerator(runner)

	questions, err := g.GenerateQuiz(context.Background(), "doc-1", 3, "hard")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 0, questions[0].Answer)
	assert.Len(t, questions[0].Options, 4)

	assert.Contains(t, runner.query, "hard-difficulty")
	assert.Contains(t, runner.query, "exactly 3")
}

func TestGenerateQuiz_DefaultsToMedium(t *testing.T) {
	runner := &fakeRunner{result: okResult(
		`[{"question": "Q", "options": ["a", "b"], "answer": 1}]`,
	)}
	g := newTestGenerator(runner)

	_, err := g.GenerateQuiz(context.Background(), "doc-1", 3, "")
	require.NoError(t, err)
	assert.Contains(t, runner.query, "medium-difficulty")
}

func TestGenerateQuiz_RejectsBadDifficulty(t *testing.T) {
	runner := &fakeRunner{result: okResult("[]")}
	g := newTestGenerator(runner)

	_, err := g.GenerateQuiz(context.Background(), "doc-1", 3, "impossible")
	assert.ErrorIs(t, err, ErrBadDifficulty)
	assert.Equal(t, 0, runner.calls)
}

func TestGenerateQuiz_FiltersInvalidQuestions(t *testing.T) {
	runner := &fakeRunner{result: okResult(`[
		{"question": "Good", "options": ["a", "b", "c", "d"], "answer": 2},
		{"question": "Out of range", "options": ["a", "b"], "answer": 5},
		{"question": "", "options": ["a", "b"], "answer": 0},
		{"question": "Too few options", "options": ["a"], "answer": 0}
	]`)}
	g := newTestGenerator(runner)

	questions, err := g.GenerateQuiz(context.Background(), "doc-1", 10, "easy")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Good", questions[0].Question)
}

func TestGenerateQuiz_DifficultySplitsCache(t *testing.T) {
	runner := &fakeRunner{result: okResult(
		`[{"question": "Q", "options": ["a", "b"], "answer": 0}]`,
	)}
	g := newTestGenerator(runner)
	ctx := context.Background()

	_, err := g.GenerateQuiz(ctx, "doc-1", 3, "easy")
	require.NoError(t, err)
	_, err = g.GenerateQuiz(ctx, "doc-1", 3, "hard")
	require.NoError(t, err)
	_, err = g.GenerateQuiz(ctx, "doc-1", 3, "easy")
	require.NoError(t, err)

	assert.Equal(t, 2, runner.calls)
}

func TestGenerateQuiz_FallbackRotatesAnswers(t *testing.T) {
	chunks := make([]string, 6)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("Fact number %d about the topic.", i)
	}
	runner := &fakeRunner{result: okResult("not json", chunks...)}
	g := newTestGenerator(runner)

	questions, err := g.GenerateQuiz(context.Background(), "doc-1", 6, "medium")
	require.NoError(t, err)
	require.Len(t, questions, 6)

	for i, q := range questions {
		require.Len(t, q.Options, 4)
		assert.Equal(t, i%4, q.Answer)
		assert.Contains(t, q.Options[q.Answer], fmt.Sprintf("Fact number %d", i))
	}
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, DefaultCount, clampCount(0))
	assert.Equal(t, DefaultCount, clampCount(-3))
	assert.Equal(t, 7, clampCount(7))
	assert.Equal(t, MaxCount, clampCount(500))
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare array", in: `[1, 2]`, want: `[1, 2]`},
		{name: "prose around", in: `Sure! [1] Done.`, want: `[1]`},
		{name: "json fence", in: "```json\n[1]\n```", want: `[1]`},
		{name: "plain fence", in: "```\n[1]\n```", want: `[1]`},
		{name: "no array", in: "nothing here", wantErr: true},
		{name: "unclosed", in: "[1, 2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONArray(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
