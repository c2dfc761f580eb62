package solver

// AnswerPromptTemplate asks the model to answer a serialized question set.
// Only the fields the submit step consumes are requested.
const AnswerPromptTemplate = `Answer the following course assessment questions.

Questions (JSON):
%s

For each question return one answer object:
- "question_id": the question's id, copied exactly
- for choice questions: "option_ids" with the id(s) of the correct option(s)
  (exactly one id unless the question type is "checkbox")
- for text questions: "text" with a concise correct answer

Return ONLY a JSON array of answer objects, one per question, in the same
order as the questions. No explanations, no markdown outside the JSON.`
