package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strconv"
)

// GatherConfig carries the speech-recognition tuning applied to every
// rendered Gather. Hints bias ASR toward the domain vocabulary.
type GatherConfig struct {
	Language    string
	Enhanced    bool
	SpeechModel string
	Hints       string
	Voice       string

	// DefaultAction is the processing endpoint used when a Prompt does
	// not override it.
	DefaultAction string
}

func (c GatherConfig) withDefaults() GatherConfig {
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.SpeechModel == "" {
		c.SpeechModel = "phone_call"
	}
	if c.Voice == "" {
		c.Voice = "Polly.Joanna"
	}
	if c.DefaultAction == "" {
		c.DefaultAction = "/voice/process"
	}
	return c
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName             xml.Name `xml:"Gather"`
	Input               string   `xml:"input,attr"`
	Action              string   `xml:"action,attr"`
	Method              string   `xml:"method,attr"`
	Timeout             int      `xml:"timeout,attr"`
	SpeechTimeout       string   `xml:"speechTimeout,attr"`
	Language            string   `xml:"language,attr"`
	Enhanced            string   `xml:"enhanced,attr"`
	SpeechModel         string   `xml:"speechModel,attr"`
	Hints               string   `xml:"hints,attr,omitempty"`
	ActionOnEmptyResult string   `xml:"actionOnEmptyResult,attr"`
	FinishOnKey         string   `xml:"finishOnKey,attr"`
	NumDigits           string   `xml:"numDigits,attr,omitempty"`
	Say                 twimlSay `xml:"Say"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type twimlDial struct {
	XMLName xml.Name `xml:"Dial"`
	Number  string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlMessage struct {
	XMLName xml.Name `xml:"Message"`
	Text    string   `xml:",chardata"`
}

// RenderSMSReply builds the messaging webhook response for an inbound text.
func RenderSMSReply(body string) (string, error) {
	r := twimlResponse{Verbs: []any{twimlMessage{Text: body}}}

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

// RenderTwiML maps a Directive to a TwiML document.
// FinishOnKey is pinned to "0" so the operator escape hatch works during
// any gather.
func RenderTwiML(d Directive, cfg GatherConfig) (string, error) {
	cfg = cfg.withDefaults()
	var r twimlResponse

	switch v := d.(type) {
	case Prompt:
		input := "speech dtmf"
		switch {
		case v.AllowSpeech && !v.AllowDigits:
			input = "speech"
		case v.AllowDigits && !v.AllowSpeech:
			input = "dtmf"
		}
		timeout := v.TimeoutSeconds
		if timeout <= 0 {
			timeout = 4
		}
		action := v.Action
		if action == "" {
			action = cfg.DefaultAction
		}
		g := twimlGather{
			Input:               input,
			Action:              action,
			Method:              "POST",
			Timeout:             timeout,
			SpeechTimeout:       "auto",
			Language:            cfg.Language,
			Enhanced:            strconv.FormatBool(cfg.Enhanced),
			SpeechModel:         cfg.SpeechModel,
			Hints:               cfg.Hints,
			ActionOnEmptyResult: "true",
			FinishOnKey:         "0",
			Say:                 twimlSay{Voice: cfg.Voice, Text: v.Message},
		}
		if v.NumDigits > 0 {
			g.NumDigits = strconv.Itoa(v.NumDigits)
		}
		r.Verbs = append(r.Verbs, g)
		if v.FallbackMessage != "" {
			r.Verbs = append(r.Verbs, twimlSay{Voice: cfg.Voice, Text: v.FallbackMessage})
		}
		if v.FallbackRedirect != "" {
			r.Verbs = append(r.Verbs, twimlRedirect{Method: "POST", URL: v.FallbackRedirect})
		}

	case Redirect:
		if v.URL == "" {
			return "", errors.New("telephony: redirect url required")
		}
		if v.Message != "" {
			r.Verbs = append(r.Verbs, twimlSay{Voice: cfg.Voice, Text: v.Message})
		}
		if v.PauseSeconds > 0 {
			r.Verbs = append(r.Verbs, twimlPause{Length: v.PauseSeconds})
		}
		r.Verbs = append(r.Verbs, twimlRedirect{Method: "POST", URL: v.URL})

	case Transfer:
		if v.Number == "" {
			return "", errors.New("telephony: transfer number required")
		}
		if v.PreMessage != "" {
			r.Verbs = append(r.Verbs, twimlSay{Voice: cfg.Voice, Text: v.PreMessage})
		}
		r.Verbs = append(r.Verbs, twimlDial{Number: v.Number})

	case Terminate:
		for _, msg := range v.Messages {
			r.Verbs = append(r.Verbs, twimlSay{Voice: cfg.Voice, Text: msg})
		}
		r.Verbs = append(r.Verbs, twimlHangup{})

	default:
		return "", errors.New("telephony: unknown directive")
	}

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
