// Package session implements the chat session controller: it owns the
// transcript and drives one request/response cycle per submitted message.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/api"
	apierrors "github.com/diogo/wikichat/internal/errors"
	"github.com/diogo/wikichat/internal/models"
)

// ErrExchangeInFlight is returned when a message is submitted while the
// previous one is still awaiting its answer.
var ErrExchangeInFlight = errors.New("an exchange is already in flight")

// AppendFunc is called after every message appended to the transcript
type AppendFunc func(msg models.ChatMessage)

// Controller owns a transcript, the current mode and the exchanger used to
// answer messages.
type Controller struct {
	exchanger  api.Exchanger
	transcript *Transcript
	logger     *zap.Logger

	mu         sync.Mutex
	mode       models.Mode
	pending    *Turn
	onAppend   []AppendFunc
	clearInput func()
}

// Option configures a Controller
type Option func(*Controller)

// WithMode sets the initial mode
func WithMode(mode models.Mode) Option {
	return func(c *Controller) {
		if mode.Valid() {
			c.mode = mode
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInputBuffer registers the function that clears the caller's input
// once a message has been accepted.
func WithInputBuffer(clear func()) Option {
	return func(c *Controller) {
		c.clearInput = clear
	}
}

// WithOnAppend registers a callback invoked after each append
func WithOnAppend(fn AppendFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onAppend = append(c.onAppend, fn)
		}
	}
}

// New creates a Controller that answers messages through exchanger
func New(exchanger api.Exchanger, opts ...Option) *Controller {
	c := &Controller{
		exchanger:  exchanger,
		transcript: NewTranscript(),
		logger:     zap.NewNop(),
		mode:       models.DefaultMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Turn is one submitted message awaiting its answer
type Turn struct {
	// Request is the immutable payload sent to the backend
	Request models.ChatRequest

	controller *Controller
	user       models.ChatMessage
	pending    models.ChatMessage
}

// UserMessage returns the transcript entry created for the submitted text
func (t *Turn) UserMessage() models.ChatMessage {
	return t.user
}

// Run performs the exchange. It does not touch the transcript and may be
// called from any goroutine.
func (t *Turn) Run(ctx context.Context) (string, error) {
	resp, err := t.controller.exchanger.Exchange(ctx, t.Request)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Answer, nil
}

// OnAppend registers a callback invoked after each append
func (c *Controller) OnAppend(fn AppendFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAppend = append(c.onAppend, fn)
}

// Begin accepts text for submission. Blank text is ignored and yields a nil
// Turn. Otherwise the user message and the pending placeholder are appended
// and the input buffer is cleared.
func (c *Controller) Begin(text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return nil, ErrExchangeInFlight
	}

	turn := &Turn{
		Request:    models.ChatRequest{Message: text, Mode: c.mode},
		controller: c,
		user:       models.NewChatMessage(text, models.SenderUser),
		pending:    models.NewChatMessage(models.PendingText, models.SenderPending),
	}
	c.pending = turn
	hooks := c.hooks()
	clearInput := c.clearInput
	c.mu.Unlock()

	c.append(hooks, turn.user)
	if clearInput != nil {
		clearInput()
	}
	c.append(hooks, turn.pending)

	c.logger.Debug("turn started",
		zap.String("id", turn.user.ID),
		zap.String("mode", turn.Request.Mode.String()))

	return turn, nil
}

// Finish replaces the turn's pending placeholder with the answer, or with the
// failure text when exchangeErr is non-nil. It returns the appended message.
// A turn that is not the current one is ignored.
func (c *Controller) Finish(turn *Turn, answer string, exchangeErr error) models.ChatMessage {
	c.mu.Lock()
	if turn == nil || c.pending != turn {
		c.mu.Unlock()
		return models.ChatMessage{}
	}
	c.pending = nil
	hooks := c.hooks()
	c.mu.Unlock()

	c.transcript.Remove(turn.pending.ID)

	text := answer
	if exchangeErr != nil {
		c.logger.Debug("exchange failed",
			zap.String("id", turn.user.ID),
			zap.Error(exchangeErr),
			zap.Int("status", apierrors.GetHTTPStatus(exchangeErr)),
			zap.String("body", apierrors.GetResponseBody(exchangeErr)))
		text = apierrors.UserMessage(exchangeErr)
	}

	msg := models.NewChatMessage(text, models.SenderAssistant)
	c.append(hooks, msg)
	return msg
}

// Submit runs a whole cycle for text. Exchange failures are recorded in the
// transcript and not returned; the only error is ErrExchangeInFlight.
func (c *Controller) Submit(ctx context.Context, text string) error {
	turn, err := c.Begin(text)
	if err != nil || turn == nil {
		return err
	}

	answer, exchangeErr := turn.Run(ctx)
	c.Finish(turn, answer, exchangeErr)
	return nil
}

// Mode returns the mode used for the next submission
func (c *Controller) Mode() models.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode sets the mode used for the next submission. Invalid modes are ignored.
func (c *Controller) SetMode(mode models.Mode) {
	if !mode.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// ToggleMode flips between fast and thinking and returns the new mode
func (c *Controller) ToggleMode() models.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Toggle()
	return c.mode
}

// Pending reports whether a turn is awaiting its answer
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Messages returns a copy of the transcript
func (c *Controller) Messages() []models.ChatMessage {
	return c.transcript.Messages()
}

// Transcript returns the underlying transcript
func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

func (c *Controller) hooks() []AppendFunc {
	out := make([]AppendFunc, len(c.onAppend))
	copy(out, c.onAppend)
	return out
}

func (c *Controller) append(hooks []AppendFunc, msg models.ChatMessage) {
	c.transcript.Append(msg)
	for _, fn := range hooks {
		fn(msg)
	}
}
