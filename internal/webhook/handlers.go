// Package webhook exposes the telephony gateway callbacks over HTTP.
//
// The gateway must always receive a well-formed response within its timeout:
// every conversational fault collapses to the fixed apology-and-hangup
// markup, never a raw 5xx. Status callbacks are acknowledged with plain
// text.
//
// NOTE: these endpoints are intentionally unauthenticated; gateway signature
// validation is out of scope here.
package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicebot-platform/internal/dialog"
	"voicebot-platform/internal/telephony"
	"voicebot-platform/pkg/logger"
)

const contentTypeXML = "application/xml"

// Handlers answers gateway callbacks by delegating turn decisions to the
// dialog controller and rendering them as voice markup.
type Handlers struct {
	Ctrl   *dialog.Controller
	Params telephony.DeliveryParams
}

// HandleVoice serves the call-connected webhook and every listen-loop
// re-entry.
func (h Handlers) HandleVoice(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseVoiceWebhook(c.Request)
	if err != nil || form.CallSid == "" {
		log.Warn("voice webhook parse failed", "err", err)
		h.writeError(c)
		return
	}

	res := h.Ctrl.Connect(c.Request.Context(), dialog.ConnectInput{
		CallID:    form.CallSid,
		From:      form.From,
		To:        form.To,
		Message:   form.Message,
		TempToken: form.TempToken,
	})

	markup, err := telephony.RenderPrompt(res.Utterance, h.Params)
	if err != nil {
		log.Error("prompt render failed", "call_id", form.CallSid, "err", err)
		h.writeError(c)
		return
	}
	if res.Created {
		log.Info("call connected", "call_id", form.CallSid, "from", form.From, "to", form.To)
	}
	c.Data(http.StatusOK, contentTypeXML, []byte(markup))
}

// HandleSpeech serves the speech-result webhook.
func (h Handlers) HandleSpeech(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseSpeechWebhook(c.Request)
	if err != nil || form.CallSid == "" {
		log.Warn("speech webhook parse failed", "err", err)
		h.writeError(c)
		return
	}

	res := h.Ctrl.Speech(c.Request.Context(), dialog.SpeechInput{
		CallID:     form.CallSid,
		Transcript: form.Transcript,
		Confidence: form.Confidence,
	})
	if !res.Known {
		h.writeError(c)
		return
	}

	markup, err := telephony.RenderReply(res.Utterance, res.EndCall, h.Params)
	if err != nil {
		log.Error("reply render failed", "call_id", form.CallSid, "err", err)
		h.writeError(c)
		return
	}
	log.Debug("speech handled",
		"call_id", form.CallSid,
		"out_of_context", res.OutOfContext,
		"end_call", res.EndCall,
		"state", string(res.State))
	c.Data(http.StatusOK, contentTypeXML, []byte(markup))
}

// HandleStatus serves the status-change webhook. Always 200, markup-free.
func (h Handlers) HandleStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseStatusWebhook(c.Request)
	if err != nil || form.CallSid == "" {
		log.Warn("status webhook parse failed", "err", err)
		c.String(http.StatusOK, "OK")
		return
	}

	res := h.Ctrl.Status(c.Request.Context(), form.CallSid, form.CallStatus)
	if res.Terminal {
		log.Info("call terminated", "call_id", form.CallSid, "status", form.CallStatus, "removed", res.Removed)
	}
	c.String(http.StatusOK, "OK")
}

func (h Handlers) writeError(c *gin.Context) {
	c.Data(http.StatusOK, contentTypeXML, []byte(telephony.RenderError(h.Params)))
}
