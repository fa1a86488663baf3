package schemas

import (
	"encoding/json"
	"strings"

	"crm-voice-server/internal/model"
)

// ParseRawPlan decodes a language-model response into a RawPlan. The parser
// is total: unparsable input, or input without a recoverable JSON object,
// yields an empty plan rather than an error - a legitimately action-free
// transcript is indistinguishable from a malformed response at this layer.
func ParseRawPlan(data []byte) *model.RawPlan {
	obj := decodeObject(data)
	if obj == nil {
		return &model.RawPlan{}
	}

	plan := &model.RawPlan{}
	if actions, ok := obj["actions"].([]any); ok {
		plan.Actions = actions
	}
	plan.Hint = looseString(obj["hint"])
	plan.Speaker = looseString(obj["speaker"])
	plan.Stage = looseString(obj["stage"])

	if tips, ok := obj["tips"].([]any); ok {
		for _, t := range tips {
			if s := looseString(t); s != "" {
				plan.Tips = append(plan.Tips, s)
			}
		}
	}
	if objections, ok := obj["objections"].([]any); ok {
		for _, o := range objections {
			m, ok := o.(map[string]any)
			if !ok {
				continue
			}
			entry := model.Objection{
				Text:     looseString(m["text"]),
				Response: looseString(m["response"]),
			}
			if entry.Text != "" || entry.Response != "" {
				plan.Objections = append(plan.Objections, entry)
			}
		}
	}
	return plan
}

// decodeObject tries a direct parse first, then the first balanced {...}
// block embedded in the text.
func decodeObject(data []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj
	}
	block, ok := ExtractJSONObject(string(data))
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(block), &obj); err != nil {
		return nil
	}
	return obj
}

func looseString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
