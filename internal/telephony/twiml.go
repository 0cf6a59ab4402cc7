package telephony

import (
	"bytes"
	"encoding/xml"
)

// Voice-markup (TwiML) rendering for the webhook responses.
// Hand-rolled via encoding/xml so every interpolated string is escaped for
// the markup's reserved characters.
//
// Three shapes are produced:
//   - speak-then-listen-with-retry: greeting/listen entry. Speaks, opens a
//     speech capture window, re-prompts once on silence, then says goodbye
//     and hangs up.
//   - speak-then-redirect: mid-conversation reply. Speaks, then redirects
//     the gateway back to the voice handler so a fresh capture window opens.
//   - speak-then-hangup: terminal reply (also used for the error apology).

const (
	noInputRetryText = "I didn't hear anything. Let me try again."
	speakNowText     = "Please speak now."
	goodbyeText      = "Thank you for calling. Goodbye!"
	errorText        = "I apologize, but I'm experiencing technical difficulties. Please try calling again later."
)

// DeliveryParams are the fixed speech delivery settings interpolated into
// every response document.
type DeliveryParams struct {
	Voice    string
	Language string

	SpeechTimeout  string // "auto" or seconds
	SpeechModel    string
	SpeechEnhanced bool
	GatherTimeout  int // seconds

	// SpeechAction receives speech results; VoiceAction is the re-entry
	// point for the listen loop.
	SpeechAction string
	VoiceAction  string
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr"`
	Language string   `xml:"language,attr"`
	Text     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Language      string   `xml:"language,attr"`
	SpeechModel   string   `xml:"speechModel,attr"`
	Enhanced      bool     `xml:"enhanced,attr"`
	Timeout       int      `xml:"timeout,attr"`
	Say           *twimlSay
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func (p DeliveryParams) say(text string) twimlSay {
	return twimlSay{Voice: p.Voice, Language: p.Language, Text: text}
}

func (p DeliveryParams) gather(nested *twimlSay) twimlGather {
	return twimlGather{
		Input:         "speech",
		Action:        p.SpeechAction,
		Method:        "POST",
		SpeechTimeout: p.SpeechTimeout,
		Language:      p.Language,
		SpeechModel:   p.SpeechModel,
		Enhanced:      p.SpeechEnhanced,
		Timeout:       p.GatherTimeout,
		Say:           nested,
	}
}

// RenderPrompt builds the speak-then-listen-with-retry document. An empty
// utterance (listen-loop re-entry on a known session) omits the leading Say.
func RenderPrompt(utterance string, p DeliveryParams) (string, error) {
	var r twimlResponse
	if utterance != "" {
		r.Verbs = append(r.Verbs, p.say(utterance))
	}
	retrySay := p.say(speakNowText)
	r.Verbs = append(r.Verbs,
		p.gather(nil),
		p.say(noInputRetryText),
		p.gather(&retrySay),
		p.say(goodbyeText),
		twimlHangup{},
	)
	return encode(r)
}

// RenderReply builds the mid-conversation reply: speak-then-redirect when
// the conversation continues, speak-then-hangup when it ends.
func RenderReply(utterance string, endCall bool, p DeliveryParams) (string, error) {
	var r twimlResponse
	r.Verbs = append(r.Verbs, p.say(utterance))
	if endCall {
		r.Verbs = append(r.Verbs, twimlHangup{})
	} else {
		r.Verbs = append(r.Verbs, twimlRedirect{Method: "POST", URL: p.VoiceAction})
	}
	return encode(r)
}

// RenderError builds the fixed apology-and-hangup document. It must never
// fail at the call site; any internal fault collapses to this response.
func RenderError(p DeliveryParams) string {
	out, err := RenderReply(errorText, true, p)
	if err != nil {
		// Static fallback; the error text contains no reserved characters.
		return xml.Header + "<Response><Say>" + errorText + "</Say><Hangup></Hangup></Response>"
	}
	return out
}

func encode(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
