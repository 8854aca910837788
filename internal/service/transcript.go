package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fantasy-ai/backend/internal/llm"
	"fantasy-ai/backend/internal/model"
)

const (
	emptyReplyText   = "Sorry, I couldn't process that."
	errorReplyPrefix = "Sorry, an error occurred."
	persistErrorText = "Sorry, your message could not be saved. Please try again."
	loadErrorText    = "Failed to load messages. Please try again."
)

// SortMessages orders messages by timestamp, keeping insertion order for ties.
func SortMessages(msgs []model.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
}

// DateLabel names the calendar day of t relative to now, in now's location.
func DateLabel(t, now time.Time) string {
	t = t.In(now.Location())
	y, m, d := t.Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && d == nd {
		return "Today"
	}
	py, pm, pd := now.AddDate(0, 0, -1).Date()
	if y == py && m == pm && d == pd {
		return "Yesterday"
	}
	return t.Format("January 2, 2006")
}

// InsertSeparators rebuilds the rendered list from items: existing separators are dropped,
// messages are sorted and a separator is placed before each new calendar day.
// Running it on its own output yields the same list.
func InsertSeparators(items []model.ListItem, now time.Time) []model.ListItem {
	msgs := make([]model.ChatMessage, 0, len(items))
	for _, it := range items {
		if it.Type == model.ItemMessage && it.Message != nil {
			msgs = append(msgs, *it.Message)
		}
	}
	return BuildTranscript(msgs, now)
}

// BuildTranscript sorts a copy of msgs and interleaves date separators.
func BuildTranscript(msgs []model.ChatMessage, now time.Time) []model.ListItem {
	sorted := make([]model.ChatMessage, len(msgs))
	copy(sorted, msgs)
	SortMessages(sorted)

	out := make([]model.ListItem, 0, len(sorted)+4)
	var lastDay string
	for i := range sorted {
		msg := sorted[i]
		day := msg.Time().In(now.Location()).Format(time.DateOnly)
		if day != lastDay {
			label := DateLabel(msg.Time(), now)
			out = append(out, model.ListItem{
				Type:      model.ItemSeparator,
				Separator: &model.DateSeparator{ID: "sep-" + day, Date: label},
			})
			lastDay = day
		}
		out = append(out, model.ListItem{Type: model.ItemMessage, Message: &msg})
	}
	return out
}

// CompletionHistory picks up to limit of the most recent real turns, oldest first.
// Error notices and the message identified by excludeID are skipped.
func CompletionHistory(msgs []model.ChatMessage, excludeID string, limit int) []llm.Message {
	eligible := make([]model.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == excludeID {
			continue
		}
		switch m.EffectiveKind() {
		case model.KindMessage, model.KindGreeting:
			eligible = append(eligible, m)
		}
	}
	SortMessages(eligible)
	if limit > 0 && len(eligible) > limit {
		eligible = eligible[len(eligible)-limit:]
	}

	out := make([]llm.Message, 0, len(eligible))
	for _, m := range eligible {
		role := llm.RoleAssistant
		if m.Sender == model.SenderUser {
			role = llm.RoleUser
		}
		out = append(out, llm.TextMessage(role, m.Text))
	}
	return out
}

// WelcomeText composes the first message of an empty conversation.
func WelcomeText(ch model.Character) string {
	if g := strings.TrimSpace(ch.Greeting); g != "" {
		return g
	}
	if opening := strings.TrimSpace(ch.OpeningMessage); opening != "" {
		if len(ch.ExampleQuestions) == 0 {
			return opening
		}
		var b strings.Builder
		b.WriteString(opening)
		b.WriteString("\n\nHere are some things I can help with:")
		for _, q := range ch.ExampleQuestions {
			b.WriteString("\n• ")
			b.WriteString(q)
		}
		return b.String()
	}
	return fmt.Sprintf("Hello! I'm %s. How can I help you today?", ch.Name)
}

// WelcomeMessage is never persisted. It is stamped one second before now so that the
// first real turn always sorts after it.
func WelcomeMessage(ch model.Character, now time.Time) model.ChatMessage {
	return model.ChatMessage{
		ID:        "welcome-" + ch.ID,
		Text:      WelcomeText(ch),
		Sender:    model.SenderAI,
		Timestamp: now.Add(-time.Second).UnixMilli(),
		Kind:      model.KindGreeting,
	}
}

func errorMessage(id, text string, now time.Time) model.ChatMessage {
	return model.ChatMessage{
		ID:        id,
		Text:      text,
		Sender:    model.SenderAI,
		Timestamp: now.UnixMilli(),
		Kind:      model.KindError,
	}
}
