// Package trivia fetches question content from an external provider.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"time"
)

// DefaultAPIURL is the Open Trivia DB endpoint used when TRIVIA_API_URL is
// unset.
const DefaultAPIURL = "https://opentdb.com/api.php?amount=1&type=multiple"

// Prompt is the player-facing part of a question.
type Prompt struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// Round pairs a prompt with its correct answer. The answer is held server
// side until reveal.
type Round struct {
	Prompt Prompt
	Answer string
}

// Source delivers a prompt and its correct answer on demand.
type Source interface {
	FetchRound(ctx context.Context) (*Round, error)
}

// HTTPSource fetches questions from an Open Trivia DB compatible API.
type HTTPSource struct {
	apiURL string
	client *http.Client
}

// NewHTTPSource creates an HTTPSource for the given endpoint.
func NewHTTPSource(apiURL string) *HTTPSource {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &HTTPSource{
		apiURL: apiURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResponse mirrors the Open Trivia DB payload.
type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// FetchRound requests one question and decodes it into a Round. The answer
// choices are shuffled so the correct one is not always in the same slot.
func (s *HTTPSource) FetchRound(ctx context.Context) (*Round, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("trivia: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trivia: fetch question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia: unexpected status %d from provider", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("trivia: decode response: %w", err)
	}
	if payload.ResponseCode != 0 || len(payload.Results) == 0 {
		return nil, fmt.Errorf("trivia: provider returned no questions (code %d)", payload.ResponseCode)
	}

	result := payload.Results[0]
	correct := html.UnescapeString(result.CorrectAnswer)

	answers := make([]string, 0, len(result.IncorrectAnswers)+1)
	answers = append(answers, correct)
	for _, a := range result.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(a))
	}
	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	return &Round{
		Prompt: Prompt{
			Question: html.UnescapeString(result.Question),
			Answers:  answers,
		},
		Answer: correct,
	}, nil
}
