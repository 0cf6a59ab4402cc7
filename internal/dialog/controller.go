// Package dialog orchestrates one webhook exchange per conversational turn:
// look up or create the session, classify the transcript, generate the
// reply, decide continue-or-terminate, and mutate the session. Rendering the
// decision into voice markup belongs to internal/telephony; nothing here
// writes HTTP.
package dialog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voicebot-platform/internal/calllog"
	"voicebot-platform/internal/greeting"
	"voicebot-platform/internal/intent"
	"voicebot-platform/internal/respond"
	"voicebot-platform/internal/session"
)

// State names the call session's position in the turn-taking protocol.
// Transitions are driven entirely by webhook arrivals; there is no timer.
type State string

const (
	StateGreeting   State = "greeting"
	StateListening  State = "listening"
	StateResponding State = "responding"
	StateTerminated State = "terminated"
)

// DefaultPurpose seeds sessions that were not given an explicit purpose.
const DefaultPurpose = "You are a helpful assistant for scheduling meetings and managing appointments. Help users with meeting scheduling, calendar management, and appointment coordination."

// DefaultGreeting opens calls that had no greeting staged.
const DefaultGreeting = "Hello! I'm your scheduling assistant. Would you like to schedule a meeting?"

// Controller drives the call session state machine. All fields are injected;
// the controller holds no ambient globals.
type Controller struct {
	sessions  *session.Store
	greetings greeting.Store
	log       calllog.Repository

	mu             sync.RWMutex
	defaultPurpose string

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func NewController(sessions *session.Store, greetings greeting.Store, log calllog.Repository, opts ...Option) *Controller {
	c := &Controller{
		sessions:       sessions,
		greetings:      greetings,
		log:            log,
		defaultPurpose: DefaultPurpose,
		now:            time.Now,
		logger:         slog.Default(),
	}
	if c.log == nil {
		c.log = calllog.NopRepository{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConnectInput is the call-connected webhook payload, post-parsing.
type ConnectInput struct {
	CallID string
	From   string
	To     string

	// Message is an explicit greeting from the answer URL query.
	Message string
	// TempToken is the pre-call staging token, if any.
	TempToken string
}

// ConnectResult tells the handler what to speak before listening.
type ConnectResult struct {
	// Utterance is empty on a listen-loop re-entry for a known session.
	Utterance string
	Created   bool
	State     State
}

// Connect handles the first webhook for a call (or a listen-loop re-entry).
// A new session moves greeting -> listening; a known one stays listening and
// gets a bare capture window.
func (c *Controller) Connect(ctx context.Context, in ConnectInput) ConnectResult {
	sess, created := c.sessions.GetOrCreate(in.CallID, c.CurrentDefaultPurpose())
	if !created {
		c.sessions.Touch(in.CallID)
		return ConnectResult{State: StateListening}
	}

	text := c.resolveGreeting(ctx, in)
	c.logger.Debug("session created",
		"call_id", in.CallID, "from", in.From, "to", in.To, "purpose", sess.Purpose)
	return ConnectResult{Utterance: text, Created: true, State: StateListening}
}

// resolveGreeting walks the staged-greeting fallback chain: entry keyed by
// the call ID, then the answer-URL message, then the pre-call temp token,
// then the default phrase. Every claim deletes its entry, found or not.
func (c *Controller) resolveGreeting(ctx context.Context, in ConnectInput) string {
	if text, ok, err := c.greetings.Claim(ctx, in.CallID); err != nil {
		c.logger.Warn("greeting claim failed", "call_id", in.CallID, "err", err)
	} else if ok {
		return text
	}
	if in.Message != "" {
		return in.Message
	}
	if in.TempToken != "" {
		if text, ok, err := c.greetings.Claim(ctx, in.TempToken); err != nil {
			c.logger.Warn("greeting claim failed", "temp_token", in.TempToken, "err", err)
		} else if ok {
			return text
		}
	}
	return DefaultGreeting
}

// SpeechInput is the speech-result webhook payload, post-parsing.
type SpeechInput struct {
	CallID     string
	Transcript string
	Confidence float64
}

// SpeechResult is the turn decision for a transcript.
type SpeechResult struct {
	// Known is false when no session exists for the call ID; the handler
	// answers with the generic error markup in that case.
	Known bool

	Utterance    string
	EndCall      bool
	OutOfContext bool
	EndReason    intent.EndReason
	State        State
}

// Speech handles one transcript-bearing webhook: listening -> responding ->
// listening or terminated.
//
// The out-of-context check runs first and short-circuits the ending check
// for the turn. Both the user turn and the agent turn are appended to
// history, in that order, on every branch.
func (c *Controller) Speech(ctx context.Context, in SpeechInput) SpeechResult {
	sess := c.sessions.Get(in.CallID)
	if sess == nil {
		c.logger.Warn("speech for unknown session", "call_id", in.CallID)
		return SpeechResult{Known: false, State: StateTerminated}
	}

	ctxCheck := intent.CheckOutOfContext(in.Transcript, sess.Purpose)
	if ctxCheck.OutOfContext {
		c.logger.Debug("transcript out of context",
			"call_id", in.CallID, "confidence", ctxCheck.Confidence)
		c.appendExchange(in.CallID, in.Transcript, respond.ReplyOffTopic)
		return SpeechResult{
			Known:        true,
			Utterance:    respond.ReplyOffTopic,
			OutOfContext: true,
			State:        StateListening,
		}
	}

	end := intent.CheckEnding(in.Transcript)
	reply := respond.Reply(in.Transcript, sess)
	c.appendExchange(in.CallID, in.Transcript, reply)

	if !end.ShouldEnd {
		return SpeechResult{Known: true, Utterance: reply, State: StateListening}
	}

	c.logger.Info("ending call", "call_id", in.CallID, "reason", string(end.Reason))
	c.finalize(ctx, in.CallID, calllog.CallStatusCompleted, string(end.Reason))
	return SpeechResult{
		Known:     true,
		Utterance: reply,
		EndCall:   true,
		EndReason: end.Reason,
		State:     StateTerminated,
	}
}

func (c *Controller) appendExchange(callID, userText, agentText string) {
	c.sessions.AppendTurn(callID, session.SpeakerUser, userText)
	c.sessions.AppendTurn(callID, session.SpeakerAgent, agentText)
}

// StatusResult reports what a status callback did.
type StatusResult struct {
	Terminal bool
	Removed  bool
	State    State
}

// Status handles a status-change webhook. Terminal statuses remove the
// session regardless of its current state; removal is idempotent, so a race
// with the transcript path is harmless. Unknown call IDs are acknowledged
// without creating a session.
func (c *Controller) Status(ctx context.Context, callID, rawStatus string) StatusResult {
	status := calllog.ParseStatus(rawStatus)
	if !status.IsTerminal() {
		return StatusResult{State: StateListening}
	}
	removed := c.finalize(ctx, callID, status, "")
	return StatusResult{Terminal: true, Removed: removed, State: StateTerminated}
}

// finalize removes the session, logs its conversation summary, and writes
// the disposition record. Safe to call twice for the same call; the second
// call finds no session and does nothing.
func (c *Controller) finalize(ctx context.Context, callID string, status calllog.CallStatus, reason string) bool {
	sess := c.sessions.Remove(callID)
	if sess == nil {
		return false
	}

	if len(sess.History) > 0 {
		c.logger.Info("conversation summary", "call_id", callID, "summary", Summarize(sess))
	}

	now := c.now()
	rec := calllog.Record{
		CallID:          callID,
		Status:          status,
		Reason:          reason,
		Purpose:         sess.Purpose,
		TurnCount:       len(sess.History),
		Summary:         Summarize(sess),
		StartedAt:       sess.StartedAt,
		EndedAt:         now,
		DurationSeconds: int(now.Sub(sess.StartedAt) / time.Second),
	}
	if err := c.log.Insert(ctx, rec); err != nil {
		c.logger.Error("disposition insert failed", "call_id", callID, "err", err)
	}
	return true
}

// EvictIdle reaps sessions idle longer than ttl, recording each as evicted.
// Guards against terminal status callbacks lost by the network.
func (c *Controller) EvictIdle(ctx context.Context, ttl time.Duration) int {
	evicted := c.sessions.EvictIdle(ttl)
	for _, sess := range evicted {
		c.logger.Warn("evicting idle session", "call_id", sess.CallID)
		now := c.now()
		rec := calllog.Record{
			CallID:          sess.CallID,
			Status:          calllog.CallStatusEvicted,
			Purpose:         sess.Purpose,
			TurnCount:       len(sess.History),
			Summary:         Summarize(sess),
			StartedAt:       sess.StartedAt,
			EndedAt:         now,
			DurationSeconds: int(now.Sub(sess.StartedAt) / time.Second),
		}
		if err := c.log.Insert(ctx, rec); err != nil {
			c.logger.Error("disposition insert failed", "call_id", sess.CallID, "err", err)
		}
	}
	return len(evicted)
}

// RunReaper sweeps idle sessions every interval until ctx is done.
func (c *Controller) RunReaper(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := c.EvictIdle(ctx, ttl); n > 0 {
				c.logger.Info("idle sessions evicted", "count", n)
			}
		}
	}
}

// CurrentDefaultPurpose returns the purpose assigned to new sessions.
func (c *Controller) CurrentDefaultPurpose() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultPurpose
}

// SetDefaultPurpose updates the purpose for future sessions. Live sessions
// keep theirs unless overridden individually.
func (c *Controller) SetDefaultPurpose(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p != "" {
		c.defaultPurpose = p
	}
}

// OverridePurpose replaces a live session's purpose. Returns false when the
// session is absent.
func (c *Controller) OverridePurpose(callID, purpose string) bool {
	return c.sessions.SetPurpose(callID, purpose)
}

// Sessions exposes the store for inspection endpoints.
func (c *Controller) Sessions() *session.Store { return c.sessions }
