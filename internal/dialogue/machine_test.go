package dialogue

import (
	"context"
	"strings"
	"testing"
	"time"

	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/distance"
	"moving-voice-agent/internal/nlu"
	"moving-voice-agent/internal/notify"
	"moving-voice-agent/internal/pricing"
	"moving-voice-agent/internal/scheduling"
	"moving-voice-agent/internal/session"
	"moving-voice-agent/internal/telephony"
)

// testNow is a Monday morning so weekly counts and availability windows are
// deterministic.
var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	m        *Machine
	repo     *booking.MemoryRepo
	sms      *notify.MemorySMS
	sessions *session.Memory[Session]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := booking.NewMemoryRepo()
	repo.SetClock(func() time.Time { return testNow })
	sms := &notify.MemorySMS{}
	sessions := session.NewMemory[Session]()
	m := NewMachine(Config{}, Deps{
		Sessions:  sessions,
		Store:     repo,
		Pricer:    pricing.NewEngine(pricing.Config{}),
		Scheduler: scheduling.NewEngine(scheduling.Config{}, repo, nil),
		Distance: distance.Static{Default: distance.Route{
			PointToPointMiles:   15,
			RoundTripMiles:      30,
			PointToPointMinutes: 25,
			OK:                  true,
		}},
		Classifier: nlu.Heuristic{},
		Notifier:   notify.NewNotifier(sms, notify.Company{}, nil),
		SMS:        sms,
	})
	m.SetClock(func() time.Time { return testNow })
	return &testEnv{m: m, repo: repo, sms: sms, sessions: sessions}
}

func (e *testEnv) session(t *testing.T, callID string) Session {
	t.Helper()
	s, ok, err := e.sessions.Get(context.Background(), callID)
	if err != nil || !ok {
		t.Fatalf("session %s not found (ok=%v, err=%v)", callID, ok, err)
	}
	return s
}

func (e *testEnv) seed(t *testing.T, s Session) {
	t.Helper()
	if err := e.sessions.Put(context.Background(), s.CallSID, s); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestBeginGreetsNewCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d := env.m.Begin(ctx, "CA100", "+12815551234")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "thank you for calling USF Moving Company") {
		t.Fatalf("unexpected greeting: %q", p.Message)
	}

	s := env.session(t, "CA100")
	if s.Step != StepGreeting {
		t.Fatalf("expected step %s, got %s", StepGreeting, s.Step)
	}
	if s.ReturningCustomer {
		t.Fatal("fresh caller flagged as returning")
	}
}

func TestBeginRecognizesReturningCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.repo.SaveBooking(ctx, booking.Booking{
		Name: "Maria Lopez", Phone: "(281) 555-1234", MoveDate: testNow.AddDate(0, 0, 2),
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	d := env.m.Begin(ctx, "CA101", "+12815551234")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "Maria Lopez") || !strings.Contains(p.Message, "again") {
		t.Fatalf("expected returning-customer greeting, got %q", p.Message)
	}
	if !env.session(t, "CA101").ReturningCustomer {
		t.Fatal("expected returning customer flag")
	}
}

func TestDTMFZeroTransfersImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.m.Begin(ctx, "CA102", "+12815551234")
	d := env.m.Process(ctx, Input{CallID: "CA102", Digits: "0"})
	tr, ok := d.(telephony.Transfer)
	if !ok {
		t.Fatalf("expected Transfer, got %T", d)
	}
	if tr.Number != "+18327999276" {
		t.Fatalf("expected manager number, got %s", tr.Number)
	}
	if !env.session(t, "CA102").TransferPending {
		t.Fatal("expected transfer pending flag")
	}
}

func TestGreetingMovesToNameCollection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.m.Begin(ctx, "CA103", "+12815551234")
	d := env.m.Process(ctx, Input{CallID: "CA103", Speech: "I need an estimate for my move"})
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "full name") {
		t.Fatalf("expected name prompt, got %q", p.Message)
	}
	if got := env.session(t, "CA103").Step; got != StepCollectName {
		t.Fatalf("expected step %s, got %s", StepCollectName, got)
	}
}

func TestNameConfirmationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, Session{CallSID: "CA104", CallerNumber: "+12815551234", Step: StepCollectName})

	d := env.m.Process(ctx, Input{CallID: "CA104", Speech: "my name is John Smith"})
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "John Smith") {
		t.Fatalf("expected name echo, got %q", p.Message)
	}

	d = env.m.Process(ctx, Input{CallID: "CA104", Speech: "yes that's right"})
	p = d.(telephony.Prompt)
	if !strings.Contains(p.Message, "number you're calling from") {
		t.Fatalf("expected calling-number prompt, got %q", p.Message)
	}

	s := env.session(t, "CA104")
	name, ok := s.Name.Get()
	if !ok || name != "John Smith" {
		t.Fatalf("expected confirmed name John Smith, got %q (ok=%v)", name, ok)
	}
	if s.Step != StepConfirmCallingNumber {
		t.Fatalf("expected step %s, got %s", StepConfirmCallingNumber, s.Step)
	}
}

func TestNameRejectedRecollects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := Session{CallSID: "CA105", Step: StepConfirmName}
	s.Name.Propose("Jon Smyth")
	env.seed(t, s)

	env.m.Process(ctx, Input{CallID: "CA105", Speech: "no"})
	got := env.session(t, "CA105")
	if got.Step != StepCollectName {
		t.Fatalf("expected step %s, got %s", StepCollectName, got.Step)
	}
	if _, ok := got.Name.Pending(); ok {
		t.Fatal("expected rejected candidate to be discarded")
	}
}

func TestPhoneDigitAccumulation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, Session{CallSID: "CA106", Step: StepCollectPhone})

	d := env.m.Process(ctx, Input{CallID: "CA106", Speech: "two eight one"})
	p := d.(telephony.Prompt)
	if !strings.Contains(p.Message, "I have 3 digits") {
		t.Fatalf("expected partial-digit prompt, got %q", p.Message)
	}

	d = env.m.Process(ctx, Input{CallID: "CA106", Speech: "seven four three four five zero three"})
	p = d.(telephony.Prompt)
	if !strings.Contains(p.Message, "(281) 743-4503") {
		t.Fatalf("expected formatted number confirmation, got %q", p.Message)
	}

	d = env.m.Process(ctx, Input{CallID: "CA106", Speech: "yes"})
	p = d.(telephony.Prompt)
	if !strings.Contains(p.Message, "What type of move") {
		t.Fatalf("expected move-type prompt, got %q", p.Message)
	}

	s := env.session(t, "CA106")
	phone, ok := s.Phone.Get()
	if !ok || phone != "(281) 743-4503" {
		t.Fatalf("expected confirmed phone, got %q (ok=%v)", phone, ok)
	}
}

func TestTransferPhraseInterruptAndResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, Session{CallSID: "CA107", Step: StepCollectMoveType})

	d := env.m.Process(ctx, Input{CallID: "CA107", Speech: "can I talk to a manager"})
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "transfer you to our manager") {
		t.Fatalf("expected transfer confirmation prompt, got %q", p.Message)
	}
	if got := env.session(t, "CA107").Step; got != StepConfirmTransfer {
		t.Fatalf("expected step %s, got %s", StepConfirmTransfer, got)
	}

	env.m.Process(ctx, Input{CallID: "CA107", Speech: "no"})
	s := env.session(t, "CA107")
	if s.Step != StepCollectMoveType {
		t.Fatalf("expected restored step %s, got %s", StepCollectMoveType, s.Step)
	}
	if s.TransferPending {
		t.Fatal("expected transfer pending cleared")
	}
}

func TestRoomConfirmationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, Session{CallSID: "CA108", Step: StepCollectPickupRooms})

	env.m.Process(ctx, Input{CallID: "CA108", Speech: "three bedrooms"})
	d := env.m.Process(ctx, Input{CallID: "CA108", Speech: "yes"})
	p := d.(telephony.Prompt)
	if !strings.Contains(p.Message, "Got it, 3 rooms") {
		t.Fatalf("expected room confirmation, got %q", p.Message)
	}

	s := env.session(t, "CA108")
	rooms, ok := s.PickupRooms.Get()
	if !ok || rooms != 3 {
		t.Fatalf("expected 3 confirmed rooms, got %d (ok=%v)", rooms, ok)
	}
	if s.Step != StepCollectPickupStairs {
		t.Fatalf("expected step %s, got %s", StepCollectPickupStairs, s.Step)
	}
}

func TestLongDistanceSkipsHourlyAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := Session{
		CallSID:  "CA109",
		Step:     StepCollectTime,
		MoveType: "Long Distance",
		MoveDate: testNow.AddDate(0, 0, 3),
		MoveTime: "Morning",
	}
	env.seed(t, s)

	d := env.m.FinishAvailability(ctx, "CA109")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "schedule by day") {
		t.Fatalf("expected long distance scheduling message, got %q", p.Message)
	}
	if got := env.session(t, "CA109").Step; got != StepCollectPacking {
		t.Fatalf("expected step %s, got %s", StepCollectPacking, got)
	}
}

func TestAvailabilityOffersAlternatives(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Fill the requested morning so the engine has to propose slots.
	moveDate := testNow.AddDate(0, 0, 2)
	for i := 0; i < 3; i++ {
		b := booking.Booking{
			Name: "Existing", Phone: "(713) 555-0000",
			MoveDate: moveDate, MoveTime: "9:00 AM", Booked: true,
		}
		if _, err := env.repo.SaveBooking(ctx, b); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	s := Session{
		CallSID:  "CA110",
		Step:     StepCollectTime,
		MoveType: "Local",
		MoveDate: moveDate,
		MoveTime: "Morning",
	}
	env.seed(t, s)

	d := env.m.FinishAvailability(ctx, "CA110")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "Which of these works best for you?") {
		t.Fatalf("expected alternatives prompt, got %q", p.Message)
	}
	got := env.session(t, "CA110")
	if got.Step != StepSelectAlternative {
		t.Fatalf("expected step %s, got %s", StepSelectAlternative, got.Step)
	}
	if len(got.Alternatives) == 0 {
		t.Fatal("expected stored alternatives")
	}
}

func estimateReadySession(callID string) Session {
	s := Session{
		CallSID:        callID,
		CallerNumber:   "+12815551234",
		Step:           StepProvideEstimate,
		MoveType:       "Local",
		MoveDate:       testNow.AddDate(0, 0, 2),
		MoveTime:       "Morning",
		P2PMiles:       15,
		P2PMinutes:     25,
		RoundTripMiles: 30,
		DistanceOK:     true,
	}
	s.Name.Set("John Smith")
	s.Phone.Set("(281) 555-1234")
	s.PickupZip.Set("77063")
	s.DropoffZip.Set("77005")
	s.PickupRooms.Propose(2)
	s.PickupRooms.Accept()
	s.DropoffRooms.Propose(2)
	s.DropoffRooms.Accept()
	return s
}

func TestEstimateLocalMove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, estimateReadySession("CA111"))

	d := env.m.Estimate(ctx, "CA111")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.HasSuffix(p.Message, "Would you like to confirm this booking?") {
		t.Fatalf("expected booking confirmation question, got %q", p.Message)
	}

	s := env.session(t, "CA111")
	if s.Estimate == nil {
		t.Fatal("expected stored estimate")
	}
	// 2+2 rooms, no stairs, empty week: $100/hr * 2.5h labor, 15 miles
	// inside the free radius.
	if s.Estimate.TotalEstimate != 250 {
		t.Fatalf("expected total 250, got %v", s.Estimate.TotalEstimate)
	}
	if s.Step != StepConfirmBooking {
		t.Fatalf("expected step %s, got %s", StepConfirmBooking, s.Step)
	}
}

func TestEstimateLongDistanceOffersInHouseVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := estimateReadySession("CA112")
	s.MoveType = "Long Distance"
	env.seed(t, s)

	d := env.m.Estimate(ctx, "CA112")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "in-house estimate") {
		t.Fatalf("expected in-house estimate offer, got %q", p.Message)
	}
	if got := env.session(t, "CA112").Step; got != StepInHouseEstimate {
		t.Fatalf("expected step %s, got %s", StepInHouseEstimate, got)
	}
	if len(env.sms.Sent()) == 0 {
		t.Fatal("expected long distance quote request sms")
	}
}

func TestConfirmBookingSavesAndCollectsFinalAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, estimateReadySession("CA113"))
	env.m.Estimate(ctx, "CA113")

	d := env.m.ConfirmBooking(ctx, "CA113", "yes please")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "Your move is confirmed") {
		t.Fatalf("expected confirmation message, got %q", p.Message)
	}
	if !strings.Contains(p.Message, "full pickup address") {
		t.Fatalf("expected final address question, got %q", p.Message)
	}

	s := env.session(t, "CA113")
	if s.BookingID == "" {
		t.Fatal("expected booking id on session")
	}
	if s.Step != StepCollectFinalPickupAddress {
		t.Fatalf("expected step %s, got %s", StepCollectFinalPickupAddress, s.Step)
	}

	saved, err := env.repo.BookingsForDate(ctx, s.MoveDate)
	if err != nil {
		t.Fatalf("bookings for date: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved booking, got %d", len(saved))
	}
	if saved[0].Status != booking.StatusConfirmed || !saved[0].Booked {
		t.Fatalf("expected confirmed booking, got status %q booked %v", saved[0].Status, saved[0].Booked)
	}
}

func TestDeclineThenDiscountDeclineEndsCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, estimateReadySession("CA114"))
	env.m.Estimate(ctx, "CA114")

	d := env.m.ConfirmBooking(ctx, "CA114", "no thanks")
	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "discount") {
		t.Fatalf("expected discount offer, got %q", p.Message)
	}

	d = env.m.Process(ctx, Input{CallID: "CA114", Speech: "no"})
	term, ok := d.(telephony.Terminate)
	if !ok {
		t.Fatalf("expected Terminate, got %T", d)
	}
	if len(term.Messages) == 0 || !strings.Contains(term.Messages[0], "change your mind") {
		t.Fatalf("unexpected decline message: %v", term.Messages)
	}

	leads, err := env.repo.BookingsForDate(ctx, testNow.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("bookings for date: %v", err)
	}
	if len(leads) != 1 || leads[0].Status != booking.StatusDeclined {
		t.Fatalf("expected declined lead, got %+v", leads)
	}
}

func TestFinalAddressFlowSendsEstimateSMS(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := estimateReadySession("CA115")
	s.Step = StepCollectFinalPickupAddress
	s.BookingID = "BK-TEST-1"
	est := pricing.Estimate{MoversNeeded: 2, EstimatedHours: 2, TotalEstimate: 250}
	s.Estimate = &est
	env.seed(t, s)

	env.m.Process(ctx, Input{CallID: "CA115", Speech: "1200 Main Street Houston 77063"})
	env.m.Process(ctx, Input{CallID: "CA115", Speech: "yes"})
	env.m.Process(ctx, Input{CallID: "CA115", Speech: "500 Oak Lane Houston 77005"})
	d := env.m.Process(ctx, Input{CallID: "CA115", Speech: "yes"})

	p, ok := d.(telephony.Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", d)
	}
	if !strings.Contains(p.Message, "Did you receive it?") {
		t.Fatalf("expected sms receipt question, got %q", p.Message)
	}

	sent := env.sms.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected customer and manager sms, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Body, "BK-TEST-1") || !strings.Contains(sent[0].Body, "Estimate: $250.00") {
		t.Fatalf("unexpected sms body: %q", sent[0].Body)
	}

	got := env.session(t, "CA115")
	if addr, ok := got.FinalPickup.Get(); !ok || !strings.Contains(addr, "1200 main street") {
		t.Fatalf("expected confirmed final pickup, got %q (ok=%v)", addr, ok)
	}
	if got.Step != StepConfirmSMSReceived {
		t.Fatalf("expected step %s, got %s", StepConfirmSMSReceived, got.Step)
	}
}

func TestSMSNotReceivedRecollectsPhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := estimateReadySession("CA116")
	s.Step = StepConfirmSMSReceived
	env.seed(t, s)

	d := env.m.Process(ctx, Input{CallID: "CA116", Speech: "no I didn't get it"})
	p := d.(telephony.Prompt)
	if !strings.Contains(p.Message, "phone number") {
		t.Fatalf("expected phone confirmation, got %q", p.Message)
	}

	d = env.m.Process(ctx, Input{CallID: "CA116", Speech: "no"})
	p = d.(telephony.Prompt)
	if !strings.Contains(p.Message, "say your phone number") {
		t.Fatalf("expected phone recollection, got %q", p.Message)
	}

	d = env.m.Process(ctx, Input{CallID: "CA116", Digits: "7135559999"})
	p = d.(telephony.Prompt)
	if !strings.Contains(p.Message, "Did you receive it?") {
		t.Fatalf("expected resend confirmation, got %q", p.Message)
	}

	got := env.session(t, "CA116")
	phone, ok := got.Phone.Get()
	if !ok || phone != "(713) 555-9999" {
		t.Fatalf("expected reformatted phone, got %q (ok=%v)", phone, ok)
	}
	if len(env.sms.Sent()) == 0 {
		t.Fatal("expected resent estimate sms")
	}
}

func TestWindowPhrase(t *testing.T) {
	cases := []struct {
		moveTime string
		want     string
	}{
		{"Morning", "with a one-hour window (9-10 AM)"},
		{"Afternoon", "with a two-hour window (1-3 PM)"},
		{"Flexible", ""},
		{"", ""},
		{"9 AM", "with a one-hour window"},
		{"2 PM", "with a two-hour window (2-4 PM)"},
	}
	for _, tc := range cases {
		if got := windowPhrase(tc.moveTime); got != tc.want {
			t.Fatalf("windowPhrase(%q) = %q, want %q", tc.moveTime, got, tc.want)
		}
	}
}

func TestCallEndedSavesLeadAndSendsFollowUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := Session{CallSID: "CA117", CallerNumber: "+12815551234", Step: StepCollectMoveType}
	s.Name.Set("John Smith")
	s.Phone.Set("(281) 555-1234")
	env.seed(t, s)

	env.m.CallEnded(ctx, "CA117", "completed", "95")

	sent := env.sms.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected follow-up sms, got %d messages", len(sent))
	}
	if !strings.Contains(sent[0].Body, "We got disconnected") {
		t.Fatalf("unexpected follow-up body: %q", sent[0].Body)
	}

	calls := env.repo.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call log entry, got %d", len(calls))
	}
	if calls[0].Status != "completed" || calls[0].Converted {
		t.Fatalf("unexpected call log: %+v", calls[0])
	}

	if _, ok, _ := env.sessions.Get(ctx, "CA117"); ok {
		t.Fatal("expected session deleted after call end")
	}
}

func TestCallEndedBookedCallSkipsFollowUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := Session{CallSID: "CA118", CallerNumber: "+12815551234", Step: StepConfirmSMSReceived, BookingID: "BK-1"}
	s.Name.Set("John Smith")
	env.seed(t, s)

	env.m.CallEnded(ctx, "CA118", "completed", "300")

	if len(env.sms.Sent()) != 0 {
		t.Fatal("expected no follow-up for converted call")
	}
	calls := env.repo.Calls()
	if len(calls) != 1 || !calls[0].Converted {
		t.Fatalf("expected converted call log, got %+v", calls)
	}
}

func TestUnknownStepTerminates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seed(t, Session{CallSID: "CA119", Step: Step("bogus_step")})

	d := env.m.Process(ctx, Input{CallID: "CA119", Speech: "hello"})
	if _, ok := d.(telephony.Terminate); !ok {
		t.Fatalf("expected Terminate for unknown step, got %T", d)
	}
}
