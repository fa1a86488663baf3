package schemas

import (
	"regexp"
	"strconv"
	"strings"

	"crm-voice-server/internal/model"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// CoerceActions turns an arbitrary decoded JSON value into a list of
// well-formed actions. It is pure and total: it never panics, never returns
// a partially-valid action, and silently discards anything that cannot be
// repaired. Order is preserved relative to the input.
//
// Invalid required fields drop the whole action; invalid enum values fall
// back to their defaults instead. The asymmetry matches observed production
// behavior and is kept on purpose.
func CoerceActions(raw any) []model.Action {
	items, ok := raw.([]any)
	if !ok {
		return []model.Action{}
	}

	actions := make([]model.Action, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := stringField(obj, "type")
		payload := payloadOf(obj)

		switch model.ActionType(typ) {
		case model.ActionCreateLead:
			if a, ok := coerceCreateLead(payload); ok {
				actions = append(actions, a)
			}
		case model.ActionCreateCalendarEvent:
			if a, ok := coerceCreateCalendarEvent(payload); ok {
				actions = append(actions, a)
			}
		case model.ActionCreateFollowUp:
			if a, ok := coerceCreateFollowUp(payload); ok {
				actions = append(actions, a)
			}
		case model.ActionCreateContact:
			if a, ok := coerceCreateContact(payload); ok {
				actions = append(actions, a)
			}
		case model.ActionDraftSMS:
			if a, ok := coerceDraftSMS(payload); ok {
				actions = append(actions, a)
			}
		case model.ActionDraftEmail:
			if a, ok := coerceDraftEmail(payload); ok {
				actions = append(actions, a)
			}
		default:
			// Unknown discriminator, drop.
		}
	}
	return actions
}

// payloadOf returns the nested "payload" object when present, otherwise the
// action object itself. The model sometimes inlines payload fields.
func payloadOf(obj map[string]any) map[string]any {
	if p, ok := obj["payload"].(map[string]any); ok {
		return p
	}
	return obj
}

func coerceCreateLead(p map[string]any) (model.Action, bool) {
	name, ok := requiredString(p, "name")
	if !ok {
		return model.Action{}, false
	}
	return model.Action{
		Type: model.ActionCreateLead,
		CreateLead: &model.CreateLeadPayload{
			Name:        name,
			Phone:       NormalizePhone(rawString(p, "phone")),
			Preferences: optionalString(p, "preferences"),
		},
	}, true
}

func coerceCreateCalendarEvent(p map[string]any) (model.Action, bool) {
	date, _ := stringField(p, "date")
	tm, _ := stringField(p, "time")
	if !dateRe.MatchString(date) || !timeRe.MatchString(tm) {
		return model.Action{}, false
	}
	title, ok := requiredString(p, "title")
	if !ok {
		title = model.DefaultCalendarTitle
	}
	note, _ := stringField(p, "note")
	return model.Action{
		Type: model.ActionCreateCalendarEvent,
		CreateCalendarEvent: &model.CreateCalendarEventPayload{
			Date:      date,
			Time:      tm,
			Title:     title,
			Note:      strings.TrimSpace(note),
			EventType: coerceEventType(p),
		},
	}, true
}

func coerceCreateFollowUp(p map[string]any) (model.Action, bool) {
	dueDate, _ := stringField(p, "dueDate")
	if !dateRe.MatchString(dueDate) {
		return model.Action{}, false
	}
	var tmPtr *string
	if tm, ok := stringField(p, "time"); ok && timeRe.MatchString(tm) {
		tmPtr = &tm
	}
	return model.Action{
		Type: model.ActionCreateFollowUp,
		CreateFollowUp: &model.CreateFollowUpPayload{
			RelatedName:  optionalString(p, "relatedName"),
			RelatedID:    intField(p, "relatedId"),
			DueDate:      dueDate,
			Time:         tmPtr,
			FollowUpType: coerceFollowUpType(p),
		},
	}, true
}

func coerceCreateContact(p map[string]any) (model.Action, bool) {
	name, ok := requiredString(p, "name")
	if !ok {
		return model.Action{}, false
	}
	return model.Action{
		Type: model.ActionCreateContact,
		CreateContact: &model.CreateContactPayload{
			Name:  name,
			Phone: NormalizePhone(rawString(p, "phone")),
			Email: optionalString(p, "email"),
		},
	}, true
}

func coerceDraftSMS(p map[string]any) (model.Action, bool) {
	message, ok := requiredString(p, "message")
	if !ok {
		return model.Action{}, false
	}
	toPhone := ""
	if n := NormalizePhone(rawString(p, "toPhone")); n != nil {
		toPhone = *n
	}
	toName, _ := stringField(p, "toName")
	return model.Action{
		Type: model.ActionDraftSMS,
		DraftSMS: &model.DraftSMSPayload{
			ToName:  strings.TrimSpace(toName),
			ToPhone: toPhone,
			Message: message,
		},
	}, true
}

func coerceDraftEmail(p map[string]any) (model.Action, bool) {
	subject, ok := requiredString(p, "subject")
	if !ok {
		return model.Action{}, false
	}
	body, ok := requiredString(p, "body")
	if !ok {
		return model.Action{}, false
	}
	toName, _ := stringField(p, "toName")
	toEmail, _ := stringField(p, "toEmail")
	return model.Action{
		Type: model.ActionDraftEmail,
		DraftEmail: &model.DraftEmailPayload{
			ToName:  strings.TrimSpace(toName),
			ToEmail: strings.TrimSpace(toEmail),
			Subject: subject,
			Body:    body,
		},
	}, true
}

func coerceEventType(p map[string]any) model.EventType {
	if s, ok := stringField(p, "eventType"); ok {
		if t := model.EventType(strings.ToLower(strings.TrimSpace(s))); t.IsValid() {
			return t
		}
	}
	return model.DefaultEventType
}

func coerceFollowUpType(p map[string]any) model.FollowUpType {
	if s, ok := stringField(p, "followupType"); ok {
		if t := model.FollowUpType(strings.ToLower(strings.TrimSpace(s))); t.IsValid() {
			return t
		}
	}
	return model.DefaultFollowUpType
}

// stringField returns the value under key if it is a string.
func stringField(p map[string]any, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// requiredString returns the trimmed string under key, failing on empty.
func requiredString(p map[string]any, key string) (string, bool) {
	s, ok := stringField(p, key)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// optionalString returns a pointer to the trimmed string under key, or nil
// when missing, mistyped or empty.
func optionalString(p map[string]any, key string) *string {
	s, ok := requiredString(p, key)
	if !ok {
		return nil
	}
	return &s
}

// rawString returns the string under key or "" - for fields that are
// normalized afterwards anyway.
func rawString(p map[string]any, key string) string {
	s, _ := stringField(p, key)
	return s
}

// intField tolerates the usual JSON number encodings for an id field.
func intField(p map[string]any, key string) *int64 {
	switch v := p[key].(type) {
	case float64:
		n := int64(v)
		if n > 0 && v == float64(n) {
			return &n
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}
