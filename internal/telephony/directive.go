// Package telephony is the Twilio adapter boundary: webhook form parsing,
// response directives, TwiML rendering, and the outbound call client.
// Business logic (dialogue decisions) is not made here.
package telephony

// Directive is what the state machine returns per turn; the transport
// renders it into TwiML. Exactly one of the concrete types below.
type Directive interface {
	directive()
}

// Prompt speaks a message and gathers the caller's next input.
type Prompt struct {
	Message string

	// Accepted input modes. Both false defaults to speech and DTMF.
	AllowSpeech bool
	AllowDigits bool

	// TimeoutSeconds is the gather timeout; zero uses the default.
	TimeoutSeconds int

	// NumDigits caps DTMF collection for fixed-length fields.
	NumDigits int

	// Action overrides the gather callback path; empty uses the default
	// processing endpoint.
	Action string

	// FallbackMessage is spoken when the gather times out with no input;
	// FallbackRedirect then re-enters the flow.
	FallbackMessage  string
	FallbackRedirect string
}

// Redirect hops to a follow-up endpoint, optionally speaking a short
// keep-alive first. Used to split slow work across webhook turns.
type Redirect struct {
	Message string
	URL     string
	// PauseSeconds inserts a pause between the keep-alive and the hop.
	PauseSeconds int
}

// Transfer dials a human, speaking PreMessage first.
type Transfer struct {
	Number     string
	PreMessage string
}

// Terminate speaks the final messages then hangs up.
type Terminate struct {
	Messages []string
}

func (Prompt) directive()    {}
func (Redirect) directive()  {}
func (Transfer) directive()  {}
func (Terminate) directive() {}
