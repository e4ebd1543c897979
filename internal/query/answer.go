package query

import "encoding/json"

// Payload is the structured answer to an analytical question.
type Payload struct {
	Summary         string `json:"summary"`
	Strengths       string `json:"strengths"`
	Recommendations string `json:"recommendations"`
}

// Answer is either a plain text reply (direct queries) or a Payload.
type Answer struct {
	Text    string   `json:"text,omitempty"`
	Payload *Payload `json:"payload,omitempty"`
}

func textAnswer(text string) Answer {
	return Answer{Text: text}
}

func payloadAnswer(p Payload) Answer {
	return Answer{Payload: &p}
}

// Response renders the answer the way it is sent back to the user: plain
// text as is, payloads as JSON.
func (a Answer) Response() string {
	if a.Payload == nil {
		return a.Text
	}
	data, err := json.Marshal(a.Payload)
	if err != nil {
		return a.Payload.Summary
	}
	return string(data)
}
