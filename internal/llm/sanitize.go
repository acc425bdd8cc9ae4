package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject pulls the JSON object out of a model reply,
// tolerating markdown code fences and prose around it.
func ExtractJSONObject(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	return []byte(text[start : end+1]), nil
}

// unsupportedReply is the escape hatch the prompt gives the model for
// documents it cannot classify as a supported invoice layout.
type unsupportedReply struct {
	Unsupported bool   `json:"unsupported_invoice"`
	Reason      string `json:"reason"`
}

// UnsupportedReason returns the model's refusal reason when the reply
// signals an unsupported invoice type.
func UnsupportedReason(doc []byte) (string, bool) {
	var u unsupportedReply
	if err := json.Unmarshal(doc, &u); err != nil {
		return "", false
	}
	if !u.Unsupported {
		return "", false
	}
	if u.Reason == "" {
		u.Reason = "layout not recognized"
	}
	return u.Reason, true
}
