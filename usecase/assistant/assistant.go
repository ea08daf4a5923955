package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/usecase"
	"github.com/dhanadurga/backend/usecase/activity"
	"github.com/dhanadurga/backend/usecase/credential"
	"github.com/dhanadurga/backend/usecase/schedule"
)

const offlineReply = "The assistant service is offline right now. Your schedule and tasks are still available."

// Interpreter turns a prompt (optionally with an image) into raw model
// text. internal/infrastructure/gemini provides the real one.
type Interpreter interface {
	Complete(ctx context.Context, prompt string, image []byte, imageMIME string) (string, error)
}

// Service is the conversational agent: it builds schedule context, asks
// the interpreter for a structured reply, and applies the proposed
// actions against the stores with conflict gating.
type Service struct {
	activities *activity.Store
	engine     *schedule.Engine
	vault      *credential.Vault
	notifier   usecase.Notifier
	interp     Interpreter
	clock      clock.Clock
	waTarget   string
	logger     *zap.Logger
}

func New(
	activities *activity.Store,
	engine *schedule.Engine,
	vault *credential.Vault,
	notifier usecase.Notifier,
	interp Interpreter,
	clk clock.Clock,
	waTarget string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		activities: activities,
		engine:     engine,
		vault:      vault,
		notifier:   notifier,
		interp:     interp,
		clock:      clk,
		waTarget:   waTarget,
		logger:     logger,
	}
}

type ChatResult struct {
	Reply   string               `json:"reply"`
	Actions []domain.Action      `json:"actions,omitempty"`
	Applied []domain.ApplyResult `json:"applied,omitempty"`
}

// Chat runs one turn: interpretation followed by action application. The
// call never fails because of the model; a malformed or unavailable
// interpretation degrades to a plain-text reply with no actions.
func (s *Service) Chat(ctx context.Context, userID, userEmail, message string, image []byte, imageMIME string) (*ChatResult, error) {
	interp := s.interpret(ctx, userID, message, image, imageMIME)
	result := &ChatResult{Reply: interp.Reply, Actions: interp.Actions}
	if len(interp.Actions) > 0 {
		result.Applied = s.ApplyActions(ctx, userID, userEmail, interp.Actions)
		// Dispatch actions fill in their share link after the fact.
		result.Actions = interp.Actions
	}
	return result, nil
}

func (s *Service) interpret(ctx context.Context, userID, message string, image []byte, imageMIME string) *domain.Interpretation {
	if s.interp == nil {
		return &domain.Interpretation{Reply: offlineReply}
	}
	prompt, err := s.buildPrompt(ctx, userID, message)
	if err != nil {
		s.logger.Error("prompt assembly failed", zap.Error(err))
		return &domain.Interpretation{Reply: offlineReply}
	}
	raw, err := s.interp.Complete(ctx, prompt, image, imageMIME)
	if err != nil {
		s.logger.Warn("interpreter unavailable", zap.Error(err))
		return &domain.Interpretation{Reply: offlineReply}
	}
	return parseInterpretation(raw)
}

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// parseInterpretation pulls the first JSON object out of the model text.
// Anything unparseable becomes a plain reply so a chatty model never
// breaks the endpoint.
func parseInterpretation(raw string) *domain.Interpretation {
	match := jsonBlock.FindString(raw)
	if match == "" {
		return &domain.Interpretation{Reply: strings.TrimSpace(raw)}
	}
	var interp domain.Interpretation
	if err := json.Unmarshal([]byte(match), &interp); err != nil {
		return &domain.Interpretation{Reply: strings.TrimSpace(raw)}
	}
	if interp.Reply == "" {
		interp.Reply = "Done."
	}
	return &interp
}

// ApplyActions executes each proposed action in order. One action's
// failure or rejection never stops the rest.
func (s *Service) ApplyActions(ctx context.Context, userID, userEmail string, actions []domain.Action) []domain.ApplyResult {
	results := make([]domain.ApplyResult, 0, len(actions))
	for i := range actions {
		action := &actions[i]
		var res domain.ApplyResult
		switch action.Type {
		case domain.ActionAddTask:
			res = s.applyAdd(ctx, userID, action)
		case domain.ActionUpdateTask:
			res = s.applyUpdate(ctx, userID, action)
		case domain.ActionDeleteTask:
			res = s.applyDelete(ctx, userID, action)
		case domain.ActionSetTimer:
			res = domain.ApplyResult{
				Type:   action.Type,
				Status: domain.ApplyApplied,
				Detail: fmt.Sprintf("timer set for %s", action.Duration),
			}
		case domain.ActionManageCredential:
			res = s.applyCredential(ctx, userID, action)
		case domain.ActionDispatchSchedule:
			res = s.applyDispatchSchedule(ctx, userID, userEmail, action)
		case domain.ActionDispatchCredentials:
			res = s.applyDispatchCredentials(ctx, userID, userEmail, action)
		default:
			res = domain.ApplyResult{
				Type:   action.Type,
				Status: domain.ApplySkipped,
				Detail: "unrecognized action",
			}
		}
		results = append(results, res)
	}
	return results
}

func (s *Service) applyAdd(ctx context.Context, userID string, action *domain.Action) domain.ApplyResult {
	item, err := decodeActivity(action.Data)
	if err != nil {
		return failed(action.Type, "malformed task data")
	}
	item.UserID = userID
	item.AIGenerated = true
	item.Normalize()
	if item.Date == "" {
		item.Date = s.clock.Now().Format(domain.DateLayout)
	}

	if item.Category == domain.CategoryPlan {
		blockers, err := s.engine.RangeIntersects(ctx, userID, item.Date, item.SpanEnd())
		if err != nil {
			return failed(action.Type, err.Error())
		}
		if len(blockers) > 0 {
			return domain.ApplyResult{
				Type:      action.Type,
				Status:    domain.ApplyRejected,
				Detail:    fmt.Sprintf("plan overlaps existing commitments: %s", strings.Join(titles(blockers), ", ")),
				Conflicts: titles(blockers),
			}
		}
	} else if item.StartTime != "" {
		conflicted, colliding, err := s.engine.HasConflict(ctx, userID, item.Date, item.StartTime, item.EndTime, "")
		if err != nil {
			return failed(action.Type, err.Error())
		}
		if conflicted {
			detail := fmt.Sprintf("time conflict with: %s", strings.Join(titles(colliding), ", "))
			if slots, err := s.engine.FreeSlots(ctx, userID, item.Date, "", ""); err == nil && len(slots) > 0 {
				detail += "; free slots: " + formatSlots(slots)
			}
			return domain.ApplyResult{
				Type:      action.Type,
				Status:    domain.ApplyRejected,
				Detail:    detail,
				Conflicts: titles(colliding),
			}
		}
	}

	created, err := s.activities.Create(ctx, item)
	if err != nil {
		return failed(action.Type, err.Error())
	}
	return domain.ApplyResult{
		Type:   action.Type,
		Status: domain.ApplyApplied,
		Detail: fmt.Sprintf("added %q on %s", created.Title, created.Date),
	}
}

func (s *Service) applyUpdate(ctx context.Context, userID string, action *domain.Action) domain.ApplyResult {
	target, err := s.findByTitle(ctx, userID, action.TargetTitle)
	if err != nil {
		return failed(action.Type, fmt.Sprintf("no item titled %q", action.TargetTitle))
	}
	if _, err := s.activities.UpdateByID(ctx, target.ID, userID, action.Data); err != nil {
		return failed(action.Type, err.Error())
	}
	return domain.ApplyResult{
		Type:   action.Type,
		Status: domain.ApplyApplied,
		Detail: fmt.Sprintf("updated %q", target.Title),
	}
}

func (s *Service) applyDelete(ctx context.Context, userID string, action *domain.Action) domain.ApplyResult {
	target, err := s.findByTitle(ctx, userID, action.TargetTitle)
	if err != nil {
		return failed(action.Type, fmt.Sprintf("no item titled %q", action.TargetTitle))
	}
	if err := s.activities.DeleteByID(ctx, target.ID, userID); err != nil {
		return failed(action.Type, err.Error())
	}
	return domain.ApplyResult{
		Type:   action.Type,
		Status: domain.ApplyApplied,
		Detail: fmt.Sprintf("deleted %q", target.Title),
	}
}

func (s *Service) applyCredential(ctx context.Context, userID string, action *domain.Action) domain.ApplyResult {
	if s.vault == nil {
		return failed(action.Type, "credential vault not configured")
	}
	switch action.Op {
	case domain.CredentialOpAdd:
		cred := credentialFromData(userID, action.Data)
		if _, err := s.vault.Create(ctx, cred); err != nil {
			return failed(action.Type, err.Error())
		}
		return domain.ApplyResult{Type: action.Type, Status: domain.ApplyApplied, Detail: fmt.Sprintf("stored credential for %s", cred.ServiceName)}
	case domain.CredentialOpUpdate:
		service, _ := action.Data["service_name"].(string)
		existing, err := s.vault.FindByService(ctx, userID, service)
		if err != nil {
			return failed(action.Type, fmt.Sprintf("no credential for %q", service))
		}
		if err := s.vault.Update(ctx, userID, existing.ID, action.Data); err != nil {
			return failed(action.Type, err.Error())
		}
		return domain.ApplyResult{Type: action.Type, Status: domain.ApplyApplied, Detail: fmt.Sprintf("updated credential for %s", existing.ServiceName)}
	case domain.CredentialOpDelete:
		service, _ := action.Data["service_name"].(string)
		existing, err := s.vault.FindByService(ctx, userID, service)
		if err != nil {
			return failed(action.Type, fmt.Sprintf("no credential for %q", service))
		}
		if err := s.vault.Delete(ctx, userID, existing.ID); err != nil {
			return failed(action.Type, err.Error())
		}
		return domain.ApplyResult{Type: action.Type, Status: domain.ApplyApplied, Detail: fmt.Sprintf("deleted credential for %s", existing.ServiceName)}
	default:
		return domain.ApplyResult{Type: action.Type, Status: domain.ApplySkipped, Detail: "unknown credential operation"}
	}
}

// applyDispatchSchedule sends today's schedule over email and WhatsApp
// and attaches a wa.me link for manual sharing. Delivery failures are
// reported in the detail but never fail the action.
func (s *Service) applyDispatchSchedule(ctx context.Context, userID, userEmail string, action *domain.Action) domain.ApplyResult {
	summary := action.Summary
	if summary == "" {
		today := s.clock.Now().Format(domain.DateLayout)
		items, err := s.activities.ForDate(ctx, userID, today)
		if err != nil {
			return failed(action.Type, err.Error())
		}
		summary = formatSchedule(today, items)
	}
	action.WhatsAppLink = waLink(s.waTarget, summary)
	return s.dispatch(ctx, action.Type, userEmail, "Your schedule", summary)
}

// applyDispatchCredentials sends the model-provided summary, so only the
// entries the user asked about leave the system. The full vault listing is
// the fallback when no summary was given.
func (s *Service) applyDispatchCredentials(ctx context.Context, userID, userEmail string, action *domain.Action) domain.ApplyResult {
	if s.vault == nil {
		return failed(action.Type, "credential vault not configured")
	}
	summary := action.Summary
	if summary == "" {
		creds, err := s.vault.List(ctx, userID)
		if err != nil {
			return failed(action.Type, err.Error())
		}
		summary = formatCredentials(creds)
	}
	action.WhatsAppLink = waLink(s.waTarget, summary)
	return s.dispatch(ctx, action.Type, userEmail, "Your saved credentials", summary)
}

func (s *Service) dispatch(ctx context.Context, actionType domain.ActionType, email, subject, body string) domain.ApplyResult {
	var failures []string
	if s.notifier != nil {
		if err := s.notifier.Send(ctx, domain.ChannelEmail, email, subject, strings.ReplaceAll(body, "\n", "<br>")); err != nil {
			failures = append(failures, "email")
		}
		if err := s.notifier.Send(ctx, domain.ChannelWhatsApp, "", subject, body); err != nil {
			failures = append(failures, "whatsapp")
		}
	} else {
		failures = append(failures, "email", "whatsapp")
	}
	detail := "dispatched"
	if len(failures) > 0 {
		detail = fmt.Sprintf("dispatched with delivery failures: %s", strings.Join(failures, ", "))
	}
	return domain.ApplyResult{Type: actionType, Status: domain.ApplyApplied, Detail: detail}
}

func (s *Service) findByTitle(ctx context.Context, userID, title string) (*domain.Activity, error) {
	items, err := s.activities.FindMany(ctx, userID, activity.Query{})
	if err != nil {
		return nil, err
	}
	needle := strings.TrimSpace(title)
	for i := range items {
		if strings.EqualFold(strings.TrimSpace(items[i].Title), needle) {
			return &items[i], nil
		}
	}
	return nil, domain.ErrActivityNotFound
}

func decodeActivity(data map[string]interface{}) (*domain.Activity, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var item domain.Activity
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	if item.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	return &item, nil
}

func credentialFromData(userID string, data map[string]interface{}) *domain.Credential {
	str := func(key string) string {
		v, _ := data[key].(string)
		return v
	}
	return &domain.Credential{
		UserID:          userID,
		ServiceName:     str("service_name"),
		IdentifierType:  str("identifier_type"),
		IdentifierValue: str("identifier_value"),
		Password:        str("password"),
	}
}

func failed(t domain.ActionType, detail string) domain.ApplyResult {
	return domain.ApplyResult{Type: t, Status: domain.ApplyFailed, Detail: detail}
}

func titles(items []domain.Activity) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func formatSlots(slots []schedule.Slot) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, fmt.Sprintf("%s-%s", slot.Start, slot.End))
	}
	return strings.Join(parts, ", ")
}
