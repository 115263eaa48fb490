package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"

	"github.com/diogo/wikichat/internal/api"
	apierrors "github.com/diogo/wikichat/internal/errors"
	"github.com/diogo/wikichat/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var ignoreID = cmpopts.IgnoreFields(models.ChatMessage{}, "ID")

func msg(text string, sender models.Sender) models.ChatMessage {
	return models.ChatMessage{Text: text, Sender: sender}
}

func TestController_Submit(t *testing.T) {
	tests := []struct {
		name     string
		exchange *api.MockClient
		input    string
		want     []models.ChatMessage
		wantReq  int
	}{
		{
			name:     "answer",
			exchange: api.NewMockClient("Hi there"),
			input:    "Hello",
			want: []models.ChatMessage{
				msg("Hello", models.SenderUser),
				msg("Hi there", models.SenderAssistant),
			},
			wantReq: 1,
		},
		{
			name:     "input is trimmed",
			exchange: api.NewMockClient("ok"),
			input:    "  Hello \n",
			want: []models.ChatMessage{
				msg("Hello", models.SenderUser),
				msg("ok", models.SenderAssistant),
			},
			wantReq: 1,
		},
		{
			name:     "empty answer",
			exchange: api.NewMockClient(""),
			input:    "Hello",
			want: []models.ChatMessage{
				msg("Hello", models.SenderUser),
				msg("", models.SenderAssistant),
			},
			wantReq: 1,
		},
		{
			name:     "http failure",
			exchange: api.NewMockClientWithError(apierrors.NewHTTPError(500, models.DefaultEndpoint)),
			input:    "Hello",
			want: []models.ChatMessage{
				msg("Hello", models.SenderUser),
				msg("Sorry, something went wrong: HTTP error! status: 500", models.SenderAssistant),
			},
			wantReq: 1,
		},
		{
			name:     "network failure",
			exchange: api.NewMockClientWithError(apierrors.NewNetworkError("chat exchange", "", errors.New("Failed to fetch"))),
			input:    "Hello",
			want: []models.ChatMessage{
				msg("Hello", models.SenderUser),
				msg("Sorry, something went wrong: Failed to fetch", models.SenderAssistant),
			},
			wantReq: 1,
		},
		{
			name:     "empty input",
			exchange: api.NewMockClient("unused"),
			input:    "",
			want:     []models.ChatMessage{},
		},
		{
			name:     "whitespace input",
			exchange: api.NewMockClient("unused"),
			input:    "   \t\n",
			want:     []models.ChatMessage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.exchange)

			if err := c.Submit(context.Background(), tt.input); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, c.Messages(), ignoreID, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("transcript mismatch (-want +got):\n%s", diff)
			}
			if got := tt.exchange.CallCount(); got != tt.wantReq {
				t.Errorf("exchange calls = %d, want %d", got, tt.wantReq)
			}
			if c.Pending() {
				t.Error("Pending() = true after Submit")
			}
		})
	}
}

func TestController_SubmitSendsModeSnapshot(t *testing.T) {
	mock := api.NewMockClient("ok")
	c := New(mock, WithMode(models.ModeThinking))

	if err := c.Submit(context.Background(), "What is Go?"); err != nil {
		t.Fatal(err)
	}

	want := models.ChatRequest{Message: "What is Go?", Mode: models.ModeThinking}
	if diff := cmp.Diff([]models.ChatRequest{want}, mock.Requests()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestController_BeginShowsPending(t *testing.T) {
	c := New(api.NewMockClient("Hi there"))

	turn, err := c.Begin("Hello")
	if err != nil {
		t.Fatal(err)
	}

	want := []models.ChatMessage{
		msg("Hello", models.SenderUser),
		msg(models.PendingText, models.SenderPending),
	}
	if diff := cmp.Diff(want, c.Messages(), ignoreID); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	if !c.Pending() {
		t.Error("Pending() = false while awaiting answer")
	}

	// Mode changes after Begin do not affect the request
	c.ToggleMode()
	if turn.Request.Mode != models.ModeFast {
		t.Errorf("Request.Mode = %s, want fast", turn.Request.Mode)
	}

	answer, err := turn.Run(context.Background())
	c.Finish(turn, answer, err)

	if got := c.Transcript().PendingCount(); got != 0 {
		t.Errorf("PendingCount() = %d after Finish", got)
	}
}

func TestController_RejectsOverlappingSubmit(t *testing.T) {
	mock := api.NewMockClient("first answer")
	mock.Gate = make(chan struct{})
	c := New(mock)

	var wg sync.WaitGroup
	wg.Add(1)
	started := make(chan struct{})
	c.OnAppend(func(m models.ChatMessage) {
		if m.IsPending() {
			close(started)
		}
	})
	go func() {
		defer wg.Done()
		if err := c.Submit(context.Background(), "first"); err != nil {
			t.Errorf("first Submit() error = %v", err)
		}
	}()

	<-started
	before := c.Messages()
	if err := c.Submit(context.Background(), "second"); !errors.Is(err, ErrExchangeInFlight) {
		t.Errorf("second Submit() error = %v, want ErrExchangeInFlight", err)
	}
	if diff := cmp.Diff(before, c.Messages()); diff != "" {
		t.Errorf("rejected submit changed transcript:\n%s", diff)
	}

	close(mock.Gate)
	wg.Wait()

	want := []models.ChatMessage{
		msg("first", models.SenderUser),
		msg("first answer", models.SenderAssistant),
	}
	if diff := cmp.Diff(want, c.Messages(), ignoreID); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	if mock.CallCount() != 1 {
		t.Errorf("exchange calls = %d, want 1", mock.CallCount())
	}
}

func TestController_CancelledContextIsAFailure(t *testing.T) {
	mock := api.NewMockClient("never")
	mock.Gate = make(chan struct{})
	c := New(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Submit(ctx, "Hello"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	want := []models.ChatMessage{
		msg("Hello", models.SenderUser),
		msg("Sorry, something went wrong: context canceled", models.SenderAssistant),
	}
	if diff := cmp.Diff(want, c.Messages(), ignoreID); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestController_OnAppendOrderAndInputBuffer(t *testing.T) {
	var events []string
	c := New(api.NewMockClient("Hi there"),
		WithInputBuffer(func() { events = append(events, "clear") }),
		WithOnAppend(func(m models.ChatMessage) { events = append(events, string(m.Sender)+":"+m.Text) }),
	)

	if err := c.Submit(context.Background(), "Hello"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"user:Hello",
		"clear",
		"pending:Thinking...",
		"assistant:Hi there",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestController_BlankInputLeavesBufferAlone(t *testing.T) {
	cleared := false
	c := New(api.NewMockClient("x"), WithInputBuffer(func() { cleared = true }))

	turn, err := c.Begin("   ")
	if err != nil || turn != nil {
		t.Fatalf("Begin() = %v, %v; want nil, nil", turn, err)
	}
	if cleared {
		t.Error("input buffer cleared for blank input")
	}
}

func TestController_FinishIgnoresStaleTurn(t *testing.T) {
	c := New(api.NewMockClient("x"))

	turn, err := c.Begin("Hello")
	if err != nil {
		t.Fatal(err)
	}
	c.Finish(turn, "first", nil)
	got := c.Finish(turn, "again", nil)

	if got.ID != "" {
		t.Errorf("Finish() on stale turn appended %+v", got)
	}
	if c.Transcript().Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Transcript().Len())
	}
}

func TestController_Mode(t *testing.T) {
	c := New(api.NewMockClient("x"))

	if c.Mode() != models.ModeFast {
		t.Fatalf("default Mode() = %s, want fast", c.Mode())
	}
	if got := c.ToggleMode(); got != models.ModeThinking {
		t.Errorf("ToggleMode() = %s, want thinking", got)
	}
	if got := c.ToggleMode(); got != models.ModeFast {
		t.Errorf("ToggleMode() = %s, want fast", got)
	}

	c.SetMode(models.ModeThinking)
	if c.Mode() != models.ModeThinking {
		t.Errorf("SetMode(thinking) -> %s", c.Mode())
	}
	c.SetMode("bogus")
	if c.Mode() != models.ModeThinking {
		t.Errorf("SetMode(bogus) changed mode to %s", c.Mode())
	}
}

func TestController_SequentialSubmitsAppendInOrder(t *testing.T) {
	mock := api.NewMockClient("ok")
	c := New(mock)

	for _, text := range []string{"one", "two", "three"} {
		if err := c.Submit(context.Background(), text); err != nil {
			t.Fatal(err)
		}
	}

	want := []models.ChatMessage{
		msg("one", models.SenderUser),
		msg("ok", models.SenderAssistant),
		msg("two", models.SenderUser),
		msg("ok", models.SenderAssistant),
		msg("three", models.SenderUser),
		msg("ok", models.SenderAssistant),
	}
	if diff := cmp.Diff(want, c.Messages(), ignoreID); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}
