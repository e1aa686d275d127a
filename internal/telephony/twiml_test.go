package telephony

import (
	"strings"
	"testing"
)

func TestRenderPrompt(t *testing.T) {
	out, err := RenderTwiML(Prompt{
		Message:     "Please tell me your full name.",
		AllowSpeech: true,
	}, GatherConfig{Hints: "yes,no,morning"})
	if err != nil {
		t.Fatalf("RenderTwiML: %v", err)
	}
	for _, want := range []string{
		`input="speech"`,
		`action="/voice/process"`,
		`finishOnKey="0"`,
		`actionOnEmptyResult="true"`,
		`speechModel="phone_call"`,
		`hints="yes,no,morning"`,
		"Please tell me your full name.",
		`voice="Polly.Joanna"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, out)
		}
	}
}

func TestRenderPromptDigitsWithFallback(t *testing.T) {
	out, err := RenderTwiML(Prompt{
		Message:          "Please enter your phone number.",
		AllowSpeech:      true,
		AllowDigits:      true,
		NumDigits:        10,
		FallbackMessage:  "I didn't catch that.",
		FallbackRedirect: "/voice/process",
	}, GatherConfig{})
	if err != nil {
		t.Fatalf("RenderTwiML: %v", err)
	}
	if !strings.Contains(out, `input="speech dtmf"`) {
		t.Fatalf("expected dual input mode:\n%s", out)
	}
	if !strings.Contains(out, `numDigits="10"`) {
		t.Fatalf("expected numDigits:\n%s", out)
	}
	if !strings.Contains(out, "<Redirect method=\"POST\">/voice/process</Redirect>") {
		t.Fatalf("expected fallback redirect:\n%s", out)
	}
}

func TestRenderRedirectKeepAlive(t *testing.T) {
	out, err := RenderTwiML(Redirect{
		Message:      "Thanks for holding.",
		URL:          "/voice/check_availability2",
		PauseSeconds: 1,
	}, GatherConfig{})
	if err != nil {
		t.Fatalf("RenderTwiML: %v", err)
	}
	sayIdx := strings.Index(out, "Thanks for holding.")
	pauseIdx := strings.Index(out, "<Pause")
	redirIdx := strings.Index(out, "<Redirect")
	if sayIdx < 0 || pauseIdx < 0 || redirIdx < 0 || !(sayIdx < pauseIdx && pauseIdx < redirIdx) {
		t.Fatalf("expected say, pause, redirect in order:\n%s", out)
	}
}

func TestRenderTransferAndTerminate(t *testing.T) {
	out, err := RenderTwiML(Transfer{
		Number:     "+18327999276",
		PreMessage: "Connecting you to our manager now. Please hold.",
	}, GatherConfig{})
	if err != nil {
		t.Fatalf("RenderTwiML: %v", err)
	}
	if !strings.Contains(out, "<Dial>+18327999276</Dial>") {
		t.Fatalf("expected dial verb:\n%s", out)
	}

	out, err = RenderTwiML(Terminate{Messages: []string{"Goodbye."}}, GatherConfig{})
	if err != nil {
		t.Fatalf("RenderTwiML: %v", err)
	}
	if !strings.Contains(out, "<Hangup") {
		t.Fatalf("expected hangup:\n%s", out)
	}

	if _, err := RenderTwiML(Transfer{}, GatherConfig{}); err == nil {
		t.Fatalf("expected error for transfer without number")
	}
}
