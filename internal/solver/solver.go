// Package solver drives the platform's assessment attempt flow: open an
// attempt session, answer every question with help from an LLM, then submit.
// One solve is a multi-step session against the server-side current-attempt
// slot, so solves must never overlap.
package solver

import (
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/mcao2/skipera/internal/coursera"
)

// Runner solves assessments for one course.
type Runner struct {
	client   *coursera.Client
	llm      *LLMClient
	courseID string
	log      *zap.Logger
}

// NewRunner binds a solver to (client, course). llm may be nil, in which
// case every solve fails with a configuration error the caller logs.
func NewRunner(client *coursera.Client, llm *LLMClient, courseID string, log *zap.Logger) *Runner {
	return &Runner{
		client:   client,
		llm:      llm,
		courseID: courseID,
		log:      log,
	}
}

type sessionResponse struct {
	Elements []struct {
		ID string `json:"id"`
	} `json:"elements"`
}

type questionsResponse struct {
	Elements []Question `json:"elements"`
}

// Solve runs the full attempt/answer/submit sequence for one assessment.
func (r *Runner) Solve(item coursera.ContentItem) error {
	if r.llm == nil {
		return fmt.Errorf("no LLM configured: set llm.api_key in the config file")
	}

	sessionID, err := r.openSession(item.ID)
	if err != nil {
		return fmt.Errorf("opening attempt session: %w", err)
	}
	r.log.Debug("attempt session open",
		zap.String("item", item.Name),
		zap.String("session", sessionID))

	questions, err := r.fetchQuestions(sessionID)
	if err != nil {
		return fmt.Errorf("fetching questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("attempt session has no questions")
	}

	answers, err := r.generateAnswers(questions)
	if err != nil {
		return fmt.Errorf("generating answers: %w", err)
	}

	for _, a := range answers {
		if err := r.submitAnswer(sessionID, a); err != nil {
			return fmt.Errorf("submitting answer for question %s: %w", a.QuestionID, err)
		}
	}

	if err := r.submitSession(sessionID); err != nil {
		return fmt.Errorf("submitting attempt: %w", err)
	}
	return nil
}

// openSession reuses the most recent open attempt when one exists, otherwise
// starts a fresh one. The platform keeps a single active attempt per user
// per assessment.
func (r *Runner) openSession(itemID string) (string, error) {
	params := url.Values{}
	params.Set("q", "mostRecent")
	params.Set("courseId", r.courseID)
	params.Set("itemId", itemID)

	var existing sessionResponse
	if err := r.client.GetJSON("onDemandAssessmentSessions.v1", params, &existing); err == nil && len(existing.Elements) > 0 {
		return existing.Elements[0].ID, nil
	}

	body, err := r.client.PostJSON("onDemandAssessmentSessions.v1", map[string]interface{}{
		"courseId": r.courseID,
		"itemId":   itemID,
	})
	if err != nil {
		return "", err
	}

	var created sessionResponse
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if len(created.Elements) == 0 {
		return "", fmt.Errorf("no session id in response")
	}
	return created.Elements[0].ID, nil
}

func (r *Runner) fetchQuestions(sessionID string) ([]Question, error) {
	params := url.Values{}
	params.Set("fields", "id,prompt,type,options")

	var out questionsResponse
	path := fmt.Sprintf("onDemandAssessmentSessions.v1/%s/questions", sessionID)
	if err := r.client.GetJSON(path, params, &out); err != nil {
		return nil, err
	}
	return out.Elements, nil
}

func (r *Runner) generateAnswers(questions []Question) ([]Answer, error) {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}

	answers, err := r.llm.AnswerQuestions(string(questionsJSON))
	if err != nil {
		return nil, err
	}

	// Every question needs an answer; fall back to the first option when
	// the model skipped one, so the attempt can still be submitted.
	byQuestion := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	full := make([]Answer, 0, len(questions))
	for _, q := range questions {
		if a, ok := byQuestion[q.ID]; ok {
			full = append(full, a)
			continue
		}
		r.log.Warn("no answer for question, using first option", zap.String("question", q.ID))
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %s unanswered and has no options", q.ID)
		}
		full = append(full, Answer{QuestionID: q.ID, OptionIDs: []string{q.Options[0].ID}})
	}

	return full, nil
}

func (r *Runner) submitAnswer(sessionID string, a Answer) error {
	payload := map[string]interface{}{}
	if len(a.OptionIDs) > 0 {
		payload["chosen"] = a.OptionIDs
	} else {
		payload["text"] = a.Text
	}

	path := fmt.Sprintf("onDemandAssessmentSessions.v1/%s/answers/%s", sessionID, a.QuestionID)
	return r.client.PutJSON(path, payload, nil)
}

func (r *Runner) submitSession(sessionID string) error {
	path := fmt.Sprintf("onDemandAssessmentSessions.v1/%s/submissions", sessionID)
	_, err := r.client.PostJSON(path, map[string]interface{}{})
	return err
}
