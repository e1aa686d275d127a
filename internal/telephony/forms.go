package telephony

import (
	"net/http"
	"strings"
)

// InboundForm captures the subset of voice webhook fields the dialogue
// needs. Twilio sends application/x-www-form-urlencoded by default.
type InboundForm struct {
	CallSID      string
	AccountSID   string
	From         string
	To           string
	Direction    string
	CallStatus   string
	Digits       string
	SpeechResult string
}

func ParseInbound(r *http.Request) (InboundForm, error) {
	if err := r.ParseForm(); err != nil {
		return InboundForm{}, err
	}
	return InboundForm{
		CallSID:      r.PostFormValue("CallSid"),
		AccountSID:   r.PostFormValue("AccountSid"),
		From:         strings.TrimSpace(r.PostFormValue("From")),
		To:           strings.TrimSpace(r.PostFormValue("To")),
		Direction:    r.PostFormValue("Direction"),
		CallStatus:   r.PostFormValue("CallStatus"),
		Digits:       strings.TrimSpace(r.PostFormValue("Digits")),
		SpeechResult: r.PostFormValue("SpeechResult"),
	}, nil
}

// StatusForm is the call status callback payload. Duration and recording
// fields are only present on terminal statuses.
type StatusForm struct {
	CallSID      string
	CallStatus   string
	CallDuration string
	RecordingURL string
	From         string
	To           string
	Direction    string
}

func ParseStatus(r *http.Request) (StatusForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusForm{}, err
	}
	return StatusForm{
		CallSID:      r.PostFormValue("CallSid"),
		CallStatus:   r.PostFormValue("CallStatus"),
		CallDuration: r.PostFormValue("CallDuration"),
		RecordingURL: r.PostFormValue("RecordingUrl"),
		From:         strings.TrimSpace(r.PostFormValue("From")),
		To:           strings.TrimSpace(r.PostFormValue("To")),
		Direction:    r.PostFormValue("Direction"),
	}, nil
}

// SMSForm is the incoming message webhook payload.
type SMSForm struct {
	MessageSID string
	From       string
	To         string
	Body       string
}

func ParseSMS(r *http.Request) (SMSForm, error) {
	if err := r.ParseForm(); err != nil {
		return SMSForm{}, err
	}
	return SMSForm{
		MessageSID: r.PostFormValue("MessageSid"),
		From:       strings.TrimSpace(r.PostFormValue("From")),
		To:         strings.TrimSpace(r.PostFormValue("To")),
		Body:       r.PostFormValue("Body"),
	}, nil
}
