package solver

// Question is one assessment question as returned by the attempt session.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"` // "mcq", "checkbox" or "text"
	Options []Option `json:"options,omitempty"`
}

// Option is one selectable choice for a choice question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Answer is one answer the LLM produced for a question.
type Answer struct {
	QuestionID string   `json:"question_id"`
	OptionIDs  []string `json:"option_ids,omitempty"`
	Text       string   `json:"text,omitempty"`
}
