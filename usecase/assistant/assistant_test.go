package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/repository/memory"
	"github.com/dhanadurga/backend/usecase/activity"
	"github.com/dhanadurga/backend/usecase/credential"
	"github.com/dhanadurga/backend/usecase/schedule"
)

type cannedInterpreter struct {
	reply string
	err   error
	// last prompt seen, for context assertions
	prompt string
}

func (c *cannedInterpreter) Complete(_ context.Context, prompt string, _ []byte, _ string) (string, error) {
	c.prompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type dispatchRecorder struct {
	sent   []string
	bodies []string
}

func (d *dispatchRecorder) Send(_ context.Context, channel, _, _, body string) error {
	d.sent = append(d.sent, channel)
	d.bodies = append(d.bodies, body)
	return nil
}

var chatNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

type chatFixture struct {
	svc      *Service
	store    *activity.Store
	vault    *credential.Vault
	interp   *cannedInterpreter
	notifier *dispatchRecorder
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	docs := memory.NewStore()
	fixed := clock.Fixed{At: chatNow}
	store := activity.New(docs, nil, fixed, nil)
	engine := schedule.New(store, nil)
	cipher, err := credential.NewCipher("6368616e6765207468697320646576207661756c74206b657920736f6f6e2121")
	require.NoError(t, err)
	vault := credential.New(docs, cipher, nil)
	interp := &cannedInterpreter{}
	notifier := &dispatchRecorder{}
	svc := New(store, engine, vault, notifier, interp, fixed, "whatsapp:+14155550100", nil)
	return &chatFixture{svc: svc, store: store, vault: vault, interp: interp, notifier: notifier}
}

func (f *chatFixture) seed(t *testing.T, title, date, start, end string, c domain.Category) {
	t.Helper()
	_, err := f.store.Create(context.Background(), &domain.Activity{
		UserID: "u1", Title: title, Date: date, StartTime: start, EndTime: end, Category: c,
	})
	require.NoError(t, err)
}

func TestChatOfflineWithoutInterpreter(t *testing.T) {
	docs := memory.NewStore()
	store := activity.New(docs, nil, nil, nil)
	svc := New(store, schedule.New(store, nil), nil, nil, nil, nil, "", nil)

	result, err := svc.Chat(context.Background(), "u1", "u1@example.com", "hello", nil, "")
	require.NoError(t, err)
	assert.Equal(t, offlineReply, result.Reply)
	assert.Empty(t, result.Actions)
}

func TestChatOfflineOnInterpreterError(t *testing.T) {
	f := newChatFixture(t)
	f.interp.err = errors.New("quota exhausted")

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "hello", nil, "")
	require.NoError(t, err)
	assert.Equal(t, offlineReply, result.Reply)
}

func TestChatPlainReplyWhenModelRambles(t *testing.T) {
	f := newChatFixture(t)
	f.interp.reply = "Sure, I can help with that!"

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "hello", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Sure, I can help with that!", result.Reply)
	assert.Empty(t, result.Applied)
}

func TestChatPlainReplyOnBrokenJSON(t *testing.T) {
	f := newChatFixture(t)
	f.interp.reply = `{"reply": "half written`

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "hello", nil, "")
	require.NoError(t, err)
	assert.Equal(t, `{"reply": "half written`, result.Reply)
}

func TestChatAddTask(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.interp.reply = `Okay! {"reply":"Added it.","actions":[{"type":"add_task","data":{"title":"call the bank","date":"2026-09-02","start_time":"11:00","end_time":"11:30","category":"Personal"}}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "remind me to call the bank tomorrow at 11", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Added it.", result.Reply)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)

	items, err := f.store.FindMany(ctx, "u1", activity.Query{Date: "2026-09-02"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "call the bank", items[0].Title)
	assert.True(t, items[0].AIGenerated)
}

func TestChatAddTaskDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.interp.reply = `{"reply":"Added.","actions":[{"type":"add_task","data":{"title":"water the plants"}}]}`

	_, err := f.svc.Chat(ctx, "u1", "u1@example.com", "note to water the plants", nil, "")
	require.NoError(t, err)

	items, err := f.store.FindMany(ctx, "u1", activity.Query{Date: "2026-09-01"})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestChatAddTaskRejectedOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.seed(t, "architecture review", "2026-09-02", "10:00", "11:00", domain.CategoryMeeting)
	f.interp.reply = `{"reply":"Scheduling.","actions":[{"type":"add_task","data":{"title":"dentist","date":"2026-09-02","start_time":"10:30","end_time":"11:30"}}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "book dentist", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	applied := result.Applied[0]
	assert.Equal(t, domain.ApplyRejected, applied.Status)
	assert.Equal(t, []string{"architecture review"}, applied.Conflicts)
	assert.Contains(t, applied.Detail, "free slots:")
	assert.Contains(t, applied.Detail, "11:00-21:00")

	// The rejected item was not stored.
	items, err := f.store.FindMany(ctx, "u1", activity.Query{Date: "2026-09-02"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestChatPlanRejectedOnRangeOverlap(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.seed(t, "quarterly planning", "2026-09-04", "09:00", "17:00", domain.CategoryMeeting)
	f.interp.reply = `{"reply":"Planning.","actions":[{"type":"add_task","data":{"title":"goa trip","category":"Plan","date":"2026-09-03","end_date":"2026-09-06"}}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "plan a trip", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyRejected, result.Applied[0].Status)
	assert.Contains(t, result.Applied[0].Detail, "quarterly planning")
}

func TestChatUpdateByTitle(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.seed(t, "gym session", "2026-09-01", "18:00", "19:00", domain.CategoryRoutine)
	f.interp.reply = `{"reply":"Marked done.","actions":[{"type":"update_task","target_title":"Gym Session","data":{"status":"Completed"}}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "I finished the gym", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)

	items, err := f.store.FindMany(ctx, "u1", activity.Query{Status: domain.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "gym session", items[0].Title)
}

func TestChatUpdateUnknownTitleFails(t *testing.T) {
	f := newChatFixture(t)
	f.interp.reply = `{"reply":"Updating.","actions":[{"type":"update_task","target_title":"does not exist","data":{"status":"Completed"}}]}`

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "done", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyFailed, result.Applied[0].Status)
}

func TestChatDeleteByTitle(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.seed(t, "old errand", "2026-09-01", "", "", domain.CategoryTask)
	f.interp.reply = `{"reply":"Removed.","actions":[{"type":"delete_task","target_title":"old errand"}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "drop the errand", nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)

	items, err := f.store.FindMany(ctx, "u1", activity.Query{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChatManageCredential(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.interp.reply = `{"reply":"Saved.","actions":[{"type":"manage_credential","action":"add","data":{"service_name":"Netflix","identifier_type":"email","identifier_value":"me@example.com","password":"hunter2"}}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "save my netflix login", nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)

	stored, err := f.vault.FindByService(ctx, "u1", "netflix")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", stored.Password)

	f.interp.reply = `{"reply":"Gone.","actions":[{"type":"manage_credential","action":"delete","data":{"service_name":"Netflix"}}]}`
	result, err = f.svc.Chat(ctx, "u1", "u1@example.com", "delete it", nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)

	_, err = f.vault.FindByService(ctx, "u1", "netflix")
	assert.Error(t, err)
}

func TestChatDispatchSchedule(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.seed(t, "standup", "2026-09-01", "09:30", "09:45", domain.CategoryMeeting)
	f.interp.reply = `{"reply":"Sending.","actions":[{"type":"dispatch_schedule"}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "send me my day", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)
	assert.ElementsMatch(t, []string{domain.ChannelEmail, domain.ChannelWhatsApp}, f.notifier.sent)

	require.Len(t, result.Actions, 1)
	link := result.Actions[0].WhatsAppLink
	assert.Contains(t, link, "https://wa.me/14155550100?text=")
	assert.Contains(t, link, "standup")
}

func TestChatDispatchCredentialsUsesProvidedSummary(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	_, err := f.vault.Create(ctx, &domain.Credential{
		UserID: "u1", ServiceName: "Netflix", Password: "hunter2",
	})
	require.NoError(t, err)
	_, err = f.vault.Create(ctx, &domain.Credential{
		UserID: "u1", ServiceName: "BankVault", Password: "supersecret",
	})
	require.NoError(t, err)
	f.interp.reply = `{"reply":"Sending.","actions":[{"type":"dispatch_credentials","summary":"Netflix password: hunter2"}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "send me my netflix password", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)

	// Only the requested entry goes out; nothing else in the vault leaks.
	require.Len(t, f.notifier.bodies, 2)
	for _, body := range f.notifier.bodies {
		assert.Contains(t, body, "Netflix password: hunter2")
		assert.NotContains(t, body, "BankVault")
		assert.NotContains(t, body, "supersecret")
	}
	assert.Contains(t, result.Actions[0].WhatsAppLink, "Netflix")
}

func TestChatDispatchCredentialsFallsBackToListing(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	_, err := f.vault.Create(ctx, &domain.Credential{
		UserID: "u1", ServiceName: "Netflix", Password: "hunter2",
	})
	require.NoError(t, err)
	f.interp.reply = `{"reply":"Sending.","actions":[{"type":"dispatch_credentials"}]}`

	result, err := f.svc.Chat(ctx, "u1", "u1@example.com", "send me all my credentials", nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)
	require.NotEmpty(t, f.notifier.bodies)
	assert.Contains(t, f.notifier.bodies[0], "Netflix")
	assert.Contains(t, f.notifier.bodies[0], "hunter2")
}

func TestChatSetTimer(t *testing.T) {
	f := newChatFixture(t)
	f.interp.reply = `{"reply":"Timer on.","actions":[{"type":"set_timer","duration":"25m"}]}`

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "pomodoro please", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplyApplied, result.Applied[0].Status)
	assert.Contains(t, result.Applied[0].Detail, "25m")
}

func TestChatUnknownActionSkipped(t *testing.T) {
	f := newChatFixture(t)
	f.interp.reply = `{"reply":"Hm.","actions":[{"type":"launch_rocket"}]}`

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "do something odd", nil, "")
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, domain.ApplySkipped, result.Applied[0].Status)
}

func TestChatEmptyReplyDefaults(t *testing.T) {
	f := newChatFixture(t)
	f.interp.reply = `{"actions":[{"type":"set_timer","duration":"5m"}]}`

	result, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "quick timer", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Done.", result.Reply)
}

func TestPromptCarriesScheduleContext(t *testing.T) {
	f := newChatFixture(t)
	f.seed(t, "standup", "2026-09-01", "09:30", "09:45", domain.CategoryMeeting)
	f.interp.reply = `{"reply":"ok"}`

	_, err := f.svc.Chat(context.Background(), "u1", "u1@example.com", "what is on today?", nil, "")
	require.NoError(t, err)
	assert.Contains(t, f.interp.prompt, "standup")
	assert.Contains(t, f.interp.prompt, "what is on today?")
}

func TestWaLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/14155550100?text=hi+there", waLink("whatsapp:+14155550100", "hi there"))
	assert.Equal(t, "https://wa.me/14155550100?text=hi", waLink("+14155550100", "hi"))
	assert.Empty(t, waLink("", "hi"))
}
