package view

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wisdomie/foodlens/internal/model"
	"github.com/wisdomie/foodlens/internal/store"
)

var (
	boldMarkup   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	bulletMarkup = regexp.MustCompile(`(?m)^[•\-*]\s`)
)

// SuggestedPrompts are offered when a conversation is empty.
var SuggestedPrompts = []string{
	"How am I doing this week?",
	"What should I eat for lunch?",
	"Suggest healthier alternatives for pizza",
	"Am I getting enough protein?",
}

func ConversationTitle(c model.ConversationSummary) string {
	if c.Title == nil || strings.TrimSpace(*c.Title) == "" {
		return "New Conversation"
	}
	return *c.Title
}

func (r *Renderer) Conversations(list []model.ConversationSummary, active *int64) {
	if len(list) == 0 {
		r.printf("No conversations yet\n")
		return
	}
	for _, c := range list {
		marker := " "
		if active != nil && *active == c.ID {
			marker = "*"
		}
		r.printf("%s %-5d %-36s %s\n", marker, c.ID, ConversationTitle(c), r.dim.Render(fmt.Sprintf("%d messages", c.MessageCount)))
	}
}

// FormatContent applies the advisor's light markup: **bold** and bullets.
func (r *Renderer) FormatContent(text string) string {
	text = boldMarkup.ReplaceAllStringFunc(text, func(m string) string {
		return r.bold.Render(boldMarkup.FindStringSubmatch(m)[1])
	})
	return bulletMarkup.ReplaceAllString(text, "• ")
}

func (r *Renderer) Message(m model.Message) {
	who := r.colored(barActive, "AI")
	if m.Role == model.RoleUser {
		who = r.colored(green, "You")
	}
	meta := ""
	if m.CreatedAt != nil {
		meta = m.CreatedAt.Local().Format("15:04")
	}
	switch m.Status {
	case model.StatusPending:
		meta = strings.TrimSpace(meta + " sending...")
	case model.StatusFailed:
		meta = strings.TrimSpace(meta + " " + r.colored(red, "not delivered"))
	}
	r.printf("%s %s\n%s\n\n", r.label.Render(who), r.dim.Render(meta), r.FormatContent(m.Content))
}

func (r *Renderer) Transcript(messages []model.Message, typing bool) {
	if len(messages) == 0 && !typing {
		r.printf("Ask me about your diet. Try:\n")
		for _, p := range SuggestedPrompts {
			r.printf("  %s\n", p)
		}
		return
	}
	for _, m := range messages {
		r.Message(m)
	}
	if typing {
		r.printf("%s\n", r.dim.Render("AI is typing..."))
	}
}

func (r *Renderer) ChatError(msg string) {
	if msg == "" {
		return
	}
	r.printf("%s\n", r.colored(red, msg))
}

func (r *Renderer) AnalysisLog(records []store.AnalysisRecord) {
	if len(records) == 0 {
		r.printf("No analyses recorded\n")
		return
	}
	r.printf("%-5s %-17s %-28s %-10s %s\n", "ID", "WHEN", "FOOD", "CONF", "MODE")
	for _, rec := range records {
		mode := "detailed"
		if rec.LowConfidence {
			mode = "advice"
		}
		r.printf("%-5d %-17s %-28s %-10s %s\n", rec.ID, rec.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			rec.FoodName, fmt.Sprintf("%.1f%%", rec.Confidence), mode)
	}
}
