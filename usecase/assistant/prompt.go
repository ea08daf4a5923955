package assistant

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
)

const systemPrompt = `You are Dhana Durga, a personal schedule assistant.
Respond with STRICT JSON only, no markdown fences, in the shape:
{"reply": "<conversational answer>", "actions": [<zero or more actions>]}

Action shapes:
  {"type": "add_task", "data": {"title", "description", "date" (YYYY-MM-DD), "start_time" (HH:MM), "end_time", "category" (task|work|meeting|routine|personal|plan), "priority" (low|medium|high)}}
  {"type": "update_task", "target_title": "<existing title>", "data": {<fields to change>}}
  {"type": "delete_task", "target_title": "<existing title>"}
  {"type": "set_timer", "duration": "<e.g. 25m>"}
  {"type": "manage_credential", "action": "add|update|delete", "data": {"service_name", "identifier_type", "identifier_value", "password"}}
  {"type": "dispatch_schedule", "summary": "<optional override text>"}
  {"type": "dispatch_credentials", "summary": "<only the credentials the user asked for>"}

Rules: never invent dates, use the schedule context below for conflicts,
and leave actions empty when the user is only asking a question.`

// buildPrompt assembles the per-turn prompt: system rules, the user's
// schedule around today, saved credential names, and the message itself.
func (s *Service) buildPrompt(ctx context.Context, userID, message string) (string, error) {
	now := s.clock.Now()
	today := now.Format(domain.DateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(domain.DateLayout)
	yearBack := now.AddDate(-1, 0, 0).Format(domain.DateLayout)
	yearAhead := now.AddDate(1, 0, 0).Format(domain.DateLayout)

	var b strings.Builder
	b.WriteString(systemPrompt)
	fmt.Fprintf(&b, "\n\nToday is %s.\n", today)

	todayItems, err := s.activities.ForDate(ctx, userID, today)
	if err != nil {
		return "", err
	}
	b.WriteString("\n" + formatSchedule(today, todayItems) + "\n")

	tomorrowItems, err := s.activities.ForDate(ctx, userID, tomorrow)
	if err != nil {
		return "", err
	}
	b.WriteString("\n" + formatSchedule(tomorrow, tomorrowItems) + "\n")

	all, err := s.activities.InRange(ctx, userID, yearBack, yearAhead, repository.ActivityPartitions)
	if err != nil {
		return "", err
	}
	if len(all) > 0 {
		b.WriteString("\nAll items on record (title | date | time | category | status):\n")
		for _, item := range all {
			fmt.Fprintf(&b, "- %s | %s | %s | %s | %s\n",
				item.Title, item.Date, timeSpan(item), item.Category, item.Status)
		}
	}

	if s.vault != nil {
		if creds, err := s.vault.List(ctx, userID); err == nil && len(creds) > 0 {
			b.WriteString("\nSaved credential services: ")
			names := make([]string, 0, len(creds))
			for _, cred := range creds {
				names = append(names, cred.ServiceName)
			}
			b.WriteString(strings.Join(names, ", ") + "\n")
		}
	}

	b.WriteString("\nUser: " + message)
	return b.String(), nil
}

// formatSchedule renders one day's items sorted by start time, untimed
// items last.
func formatSchedule(date string, items []domain.Activity) string {
	if len(items) == 0 {
		return fmt.Sprintf("Schedule for %s: nothing planned.", date)
	}
	sorted := make([]domain.Activity, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].StartTime, sorted[j].StartTime
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Schedule for %s:", date)
	for _, item := range sorted {
		fmt.Fprintf(&b, "\n- %s (%s, %s, %s)", item.Title, timeSpan(item), item.Category, item.Status)
	}
	return b.String()
}

func formatCredentials(creds []domain.Credential) string {
	if len(creds) == 0 {
		return "No saved credentials."
	}
	var b strings.Builder
	b.WriteString("Saved credentials:")
	for _, cred := range creds {
		fmt.Fprintf(&b, "\n- %s: %s=%s password=%s",
			cred.ServiceName, cred.IdentifierType, cred.IdentifierValue, cred.Password)
	}
	return b.String()
}

func timeSpan(item domain.Activity) string {
	switch {
	case item.StartTime == "":
		return "all day"
	case item.EndTime == "":
		return item.StartTime
	default:
		return item.StartTime + "-" + item.EndTime
	}
}

// waLink builds a wa.me deep link with the message prefilled. target may
// carry the "whatsapp:+<number>" transport prefix.
func waLink(target, text string) string {
	number := strings.TrimPrefix(target, "whatsapp:")
	number = strings.TrimPrefix(number, "+")
	if number == "" {
		return ""
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(text))
}
