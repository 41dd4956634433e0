// Package studygen synthesizes study material (notecards and quizzes) from
// stored course content by prompting the generation model through the RAG
// pipeline and parsing its JSON output. When the model is unreachable or its
// output is unusable, items are built from the retrieved chunks directly so a
// caller always gets something to study from.
package studygen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cramdeck/cramdeck/internal/pipeline"
	"github.com/cramdeck/cramdeck/internal/rescache"
)

var (
	// ErrNoContent is returned when the content ID resolves to nothing
	ErrNoContent = errors.New("no content found for study generation")
	// ErrNothingRetrieved is returned when neither the model nor the
	// fallback had any material to work from
	ErrNothingRetrieved = errors.New("no material could be retrieved from the content")
	// ErrBadDifficulty is returned for an unrecognized difficulty level
	ErrBadDifficulty = errors.New("difficulty must be easy, medium, or hard")
)

const (
	DefaultCount = 10
	MaxCount     = 50

	kindNotecards = "notecards"
	kindQuiz      = "quiz"

	// quizOptionCount is the number of choices per quiz question
	quizOptionCount = 4
)

// Difficulty levels accepted by GenerateQuiz.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Notecard is a front/back study card.
type Notecard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuizQuestion is one multiple-choice question. Answer indexes into Options.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Runner executes the RAG pipeline.
type Runner interface {
	Process(ctx context.Context, document, query string, topK int) *pipeline.Result
}

// ContentSource resolves record IDs to their concatenated text.
type ContentSource interface {
	AssembleContent(ctx context.Context, ids []string) (string, error)
}

// Generator produces study material. Results are cached so repeated requests
// for the same content do not re-run the model.
type Generator struct {
	pipe   Runner
	source ContentSource
	cache  *rescache.Cache
	topK   int
}

// New creates a Generator. cache may be nil to disable result caching.
func New(pipe Runner, source ContentSource, cache *rescache.Cache) *Generator {
	return &Generator{
		pipe:   pipe,
		source: source,
		cache:  cache,
		topK:   pipeline.DefaultTopK,
	}
}

// GenerateNotecards builds n front/back cards covering the record's material.
func (g *Generator) GenerateNotecards(ctx context.Context, contentID string, n int) ([]Notecard, error) {
	n = clampCount(n)

	key := rescache.Key{ContentID: contentID, Count: n, Kind: kindNotecards}
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			if cards, ok := cached.([]Notecard); ok {
				return cards, nil
			}
		}
	}

	content, err := g.resolveContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	query := notecardPrompt(n)
	res := g.pipe.Process(ctx, content, query, g.topK)

	var cards []Notecard
	if res.Success {
		cards, err = parseNotecards(res.Response)
		if err != nil {
			log.Printf("notecard output unparseable, using fallback: %v", err)
		}
	}
	if len(cards) == 0 {
		cards = fallbackNotecards(res.RetrievedChunks, n)
	}
	if len(cards) == 0 {
		return nil, ErrNothingRetrieved
	}
	if len(cards) > n {
		cards = cards[:n]
	}

	if g.cache != nil {
		g.cache.Put(key, cards)
	}
	return cards, nil
}

// GenerateQuiz builds n multiple-choice questions at the given difficulty.
// An empty difficulty means medium.
func (g *Generator) GenerateQuiz(ctx context.Context, contentID string, n int, difficulty string) ([]QuizQuestion, error) {
	n = clampCount(n)
	difficulty, err := normalizeDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	key := rescache.Key{ContentID: contentID, Count: n, Kind: kindQuiz, Difficulty: difficulty}
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			if questions, ok := cached.([]QuizQuestion); ok {
				return questions, nil
			}
		}
	}

	content, err := g.resolveContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	query := quizPrompt(n, difficulty)
	res := g.pipe.Process(ctx, content, query, g.topK)

	var questions []QuizQuestion
	if res.Success {
		questions, err = parseQuiz(res.Response)
		if err != nil {
			log.Printf("quiz output unparseable, using fallback: %v", err)
		}
	}
	if len(questions) == 0 {
		questions = fallbackQuiz(res.RetrievedChunks, n)
	}
	if len(questions) == 0 {
		return nil, ErrNothingRetrieved
	}
	if len(questions) > n {
		questions = questions[:n]
	}

	if g.cache != nil {
		g.cache.Put(key, questions)
	}
	return questions, nil
}

func (g *Generator) resolveContent(ctx context.Context, contentID string) (string, error) {
	content, err := g.source.AssembleContent(ctx, []string{contentID})
	if err != nil {
		return "", fmt.Errorf("failed to load content %s: %w", contentID, err)
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrNoContent
	}
	return content, nil
}

func clampCount(n int) int {
	if n <= 0 {
		return DefaultCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

func normalizeDifficulty(d string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", ErrBadDifficulty
}

func notecardPrompt(n int) string {
	return fmt.Sprintf(`Create exactly %d study notecards from the material above. Respond with only a JSON array, no other text. Each element must have the form {"front": "a question or term", "back": "the answer or definition"}. Cover the most important concepts in the material.`, n)
}

func quizPrompt(n int, difficulty string) string {
	return fmt.Sprintf(`Create exactly %d %s-difficulty multiple-choice questions from the material above. Respond with only a JSON array, no other text. Each element must have the form {"question": "...", "options": ["...", "...", "...", "..."], "answer": 0, "explanation": "..."} where answer is the zero-based index of the correct option and options has exactly %d entries.`, n, difficulty, quizOptionCount)
}

// fallbackNotecards builds cards straight from the retrieved chunks when the
// model could not.
func fallbackNotecards(chunks []string, n int) []Notecard {
	cards := make([]Notecard, 0, n)
	for _, chunk := range chunks {
		if len(cards) == n {
			break
		}
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		cards = append(cards, Notecard{
			Front: "Review: " + excerpt(chunk, 60),
			Back:  chunk,
		})
	}
	return cards
}

// fallbackQuiz builds recognition questions from the retrieved chunks. The
// correct option rotates position so the answer key is not constant.
func fallbackQuiz(chunks []string, n int) []QuizQuestion {
	distractors := []string{
		"This topic is not covered in the material.",
		"The material states the opposite.",
		"The material does not mention this.",
	}

	questions := make([]QuizQuestion, 0, n)
	for i, chunk := range chunks {
		if len(questions) == n {
			break
		}
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		correct := i % quizOptionCount
		options := make([]string, 0, quizOptionCount)
		di := 0
		for pos := 0; pos < quizOptionCount; pos++ {
			if pos == correct {
				options = append(options, excerpt(chunk, 120))
			} else {
				options = append(options, distractors[di%len(distractors)])
				di++
			}
		}

		questions = append(questions, QuizQuestion{
			Question:    "Which statement appears in the study material?",
			Options:     options,
			Answer:      correct,
			Explanation: "Taken directly from the source material.",
		})
	}
	return questions
}

// excerpt returns the first words of s, at most max bytes, with an ellipsis
// when truncated.
func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	cut := strings.LastIndex(s[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return s[:cut] + "..."
}
