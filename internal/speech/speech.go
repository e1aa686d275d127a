// Package speech turns noisy transcribed caller input into typed values.
//
// Every function is total: malformed input yields a sentinel (empty string,
// ok=false, or a safe default), never an error. Caller input arrives from a
// speech channel and is adversarial by nature; the dialogue layer re-prompts
// on a sentinel result.
package speech

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// digitWords maps spoken number words (including common ASR homophones) to
// digit strings. Order matters for deterministic substitution, so this is a
// slice rather than a map.
var digitWords = []struct {
	word  string
	digit string
}{
	{"zero", "0"}, {"oh", "0"}, {"o", "0"},
	{"one", "1"}, {"won", "1"},
	{"two", "2"}, {"too", "2"}, {"to", "2"}, {"tu", "2"},
	{"three", "3"}, {"tree", "3"},
	{"four", "4"}, {"for", "4"}, {"fore", "4"},
	{"five", "5"}, {"six", "6"}, {"seven", "7"}, {"eight", "8"}, {"nine", "9"},
	{"ate", "8"},
	{"ten", "10"}, {"eleven", "11"}, {"twelve", "12"},
	{"thirteen", "13"}, {"fourteen", "14"}, {"fifteen", "15"},
	{"sixteen", "16"}, {"seventeen", "17"}, {"eighteen", "18"}, {"nineteen", "19"},
	{"twenty", "20"}, {"thirty", "30"}, {"forty", "40"}, {"fifty", "50"},
	{"sixty", "60"}, {"seventy", "70"}, {"eighty", "80"}, {"ninety", "90"},
}

var digitWordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(digitWords))
	for i, dw := range digitWords {
		out[i] = regexp.MustCompile(`\b` + dw.word + `\b`)
	}
	return out
}()

var spokenDigits = [10]string{
	"zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// noiseTokens are filler phrases stripped before digit extraction. Longer
// phrases come first so substring removal does not leave fragments behind.
var noiseTokens = []string{
	"rest of the digits are", "rest of digits are", "remaining digits",
	"the rest is", "my number is", "the number is", "call me at",
	"number is", "it is", "its", "is",
	"plus", "dash", "hyphen", "space",
}

var zipNoise = []string{
	"zip code", "zipcode", "postal code", "area code", "zip", "postal",
}

var nonDigit = regexp.MustCompile(`[^0-9]`)

// ExtractDigits maps spoken number words to digits and strips everything
// else, returning a contiguous digit string ("" if nothing was found).
func ExtractDigits(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(text)
	for _, tok := range noiseTokens {
		t = strings.ReplaceAll(t, tok, " ")
	}
	for _, tok := range zipNoise {
		t = strings.ReplaceAll(t, tok, " ")
	}
	for i, dw := range digitWords {
		t = digitWordPatterns[i].ReplaceAllString(t, dw.digit)
	}
	return nonDigit.ReplaceAllString(t, "")
}

// FormatPhone renders a digit string in display form.
//
//	10 digits            -> (XXX) XXX-XXXX
//	11 digits leading 1  -> drop the 1, US format
//	11-14 digits         -> +<digits>
//	>14 digits           -> +<last 14>
//	shorter              -> digits unchanged (incomplete)
func FormatPhone(digits string) string {
	d := nonDigit.ReplaceAllString(digits, "")
	if d == "" {
		return ""
	}
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
	case len(d) >= 11 && len(d) <= 14:
		return "+" + d
	case len(d) > 14:
		return "+" + d[len(d)-14:]
	}
	return d
}

// DigitsToSpoken spells out each digit for confirmation prompts, e.g.
// "77063" -> "seven seven zero six three".
func DigitsToSpoken(digits string) string {
	d := nonDigit.ReplaceAllString(digits, "")
	if d == "" {
		return ""
	}
	words := make([]string, 0, len(d))
	for _, c := range d {
		words = append(words, spokenDigits[c-'0'])
	}
	return strings.Join(words, " ")
}

var zipRun = regexp.MustCompile(`\d{5}`)

// ValidateZip extracts a 5-digit US ZIP from speech. ZIP+4 input yields the
// first five digits.
func ValidateZip(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	t := strings.ToLower(text)
	for _, tok := range zipNoise {
		t = strings.ReplaceAll(t, tok, " ")
	}
	digits := ExtractDigits(t)
	if len(digits) < 5 {
		return "", false
	}
	if m := zipRun.FindString(digits); m != "" {
		return m, true
	}
	return "", false
}

var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday}, {"tuesday", time.Tuesday}, {"wednesday", time.Wednesday},
	{"thursday", time.Thursday}, {"friday", time.Friday},
	{"saturday", time.Saturday}, {"sunday", time.Sunday},
}

var (
	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	multiSpace    = regexp.MustCompile(`\s+`)

	monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|` +
		`jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec`

	monthDayPat = regexp.MustCompile(`\b(` + monthNames + `)\s+(\d{1,2})(?:\s+(\d{4}))?\b`)
	dayMonthPat = regexp.MustCompile(`\b(\d{1,2})\s+(` + monthNames + `)(?:\s+(\d{4}))?\b`)
	numericPat  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
)

// ValidateDate parses a move date from speech relative to now.
// Recognizes relative terms, weekday names (next future occurrence), month
// names in either order, numeric M/D[/Y], and a short list of strict
// formats. When the year is omitted and the date would be in the past, it
// rolls forward one year.
func ValidateDate(text string, now time.Time) (time.Time, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return time.Time{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(t, "day after tomorrow"):
		return today.AddDate(0, 0, 2), true
	case strings.Contains(t, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(t, "today"):
		return today, true
	case strings.Contains(t, "next week"):
		return today.AddDate(0, 0, 7), true
	}

	for _, wd := range weekdays {
		if strings.Contains(t, wd.name) {
			ahead := (int(wd.day) - int(today.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return today.AddDate(0, 0, ahead), true
		}
	}

	norm := strings.ReplaceAll(t, ",", " ")
	norm = ordinalSuffix.ReplaceAllString(norm, "$1")
	norm = strings.TrimSpace(multiSpace.ReplaceAllString(norm, " "))

	if m := monthDayPat.FindStringSubmatch(norm); m != nil {
		if dt, ok := monthDayDate(m[1], m[2], m[3], today); ok {
			return dt, true
		}
	}
	if m := dayMonthPat.FindStringSubmatch(norm); m != nil {
		if dt, ok := monthDayDate(m[2], m[1], m[3], today); ok {
			return dt, true
		}
	}
	if m := numericPat.FindStringSubmatch(norm); m != nil {
		if dt, ok := numericDate(m[1], m[2], m[3], today); ok {
			return dt, true
		}
	}

	for _, layout := range []string{"January 2 2006", "Jan 2 2006", "January 2", "Jan 2", "1/2/2006", "1/2", "2006-01-02"} {
		dt, err := parseInLocation(layout, norm, today.Location())
		if err != nil {
			continue
		}
		if dt.Year() == 0 {
			dt = time.Date(today.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, today.Location())
			if dt.Before(today) {
				dt = dt.AddDate(1, 0, 0)
			}
		}
		return dt, true
	}
	return time.Time{}, false
}

func parseInLocation(layout, value string, loc *time.Location) (time.Time, error) {
	// time.Parse wants canonical month casing.
	return time.ParseInLocation(layout, strings.Title(value), loc) //nolint:staticcheck
}

func monthDayDate(monthName, dayStr, yearStr string, today time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	year := today.Year()
	explicitYear := yearStr != ""
	if explicitYear {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, false
		}
		year = y
	}
	var month time.Month
	found := false
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if monthName == full || monthName == full[:3] || (m == time.September && monthName == "sept") {
			month = m
			found = true
			break
		}
	}
	if !found || day < 1 || day > 31 {
		return time.Time{}, false
	}
	dt := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	if dt.Day() != day {
		return time.Time{}, false
	}
	if !explicitYear && dt.Before(today) {
		dt = dt.AddDate(1, 0, 0)
	}
	return dt, true
}

func numericDate(monthStr, dayStr, yearStr string, today time.Time) (time.Time, bool) {
	month, err1 := strconv.Atoi(monthStr)
	day, err2 := strconv.Atoi(dayStr)
	if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := today.Year()
	explicitYear := yearStr != ""
	if explicitYear {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, false
		}
		if len(yearStr) == 2 {
			y += 2000
		}
		year = y
	}
	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
	if dt.Day() != day {
		return time.Time{}, false
	}
	if !explicitYear && dt.Before(today) {
		dt = dt.AddDate(1, 0, 0)
	}
	return dt, true
}

var hourToken = regexp.MustCompile(`\d`)

// ValidateTime normalizes a preferred-time utterance to one of the period
// labels, or keeps the raw text when it looks like a specific hour (the
// scheduling engine resolves it later). Defaults to Flexible.
func ValidateTime(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, period := range []string{"morning", "afternoon", "evening", "flexible"} {
		if strings.Contains(t, period) {
			return strings.ToUpper(period[:1]) + period[1:]
		}
	}
	if hourToken.MatchString(t) {
		return text
	}
	return "Flexible"
}

var roomWords = []struct {
	word string
	n    int
}{
	{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
}

var roomWordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(roomWords))
	for i, rw := range roomWords {
		out[i] = regexp.MustCompile(`\b` + rw.word + `\b`)
	}
	return out
}()

var digitRun = regexp.MustCompile(`\d+`)

// ExtractRoomCount finds a room count in speech, clamped to [1, 10] to shrug
// off ASR artifacts like "on 5001".
func ExtractRoomCount(text string) (int, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	for i, rw := range roomWords {
		if roomWordPatterns[i].MatchString(t) {
			return rw.n, true
		}
	}
	if m := digitRun.FindString(t); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		if n < 1 {
			return 1, true
		}
		if n > 10 {
			return 10, true
		}
		return n, true
	}
	return 0, false
}

var (
	yesKeywords = []string{"yes", "yeah", "yep", "yup", "ya", "sure", "okay", "ok", "correct", "right", "affirmative"}
	noKeywords  = []string{"no", "nope", "nah", "not", "incorrect", "wrong", "negative"}
)

// ValidateYesNo classifies an answer as "yes", "no", or "" when ambiguous.
func ValidateYesNo(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range yesKeywords {
		if strings.Contains(t, kw) {
			return "yes"
		}
	}
	for _, kw := range noKeywords {
		if strings.Contains(t, kw) {
			return "no"
		}
	}
	return ""
}

var (
	noStairsKeywords = []string{"no stairs", "no step", "ground floor", "first floor", "main floor", "flat"}
	stairsKeywords   = []string{"stair", "step", "floor", "level", "elevator", "lift"}
)

// ParseStairs reports whether speech indicates stairs or an elevator.
// Explicit negatives short-circuit to false.
func ParseStairs(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range noStairsKeywords {
		if strings.Contains(t, kw) {
			return false
		}
	}
	for _, kw := range stairsKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Ordinals before cardinals so "the second one" resolves to slot 1.
var ordinalChoices = []struct {
	word  string
	index int
}{
	{"first", 0}, {"second", 1}, {"third", 2}, {"fourth", 3}, {"fifth", 4},
	{"1st", 0}, {"2nd", 1}, {"3rd", 2}, {"4th", 3}, {"5th", 4},
	{"one", 0}, {"two", 1}, {"three", 2}, {"four", 3}, {"five", 4},
}

var ordinalChoicePatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(ordinalChoices))
	for i, oc := range ordinalChoices {
		out[i] = regexp.MustCompile(`\b` + oc.word + `\b`)
	}
	return out
}()

// ParseAlternativeChoice maps "first"/"1st"/"one" style utterances to a
// zero-based slot index. A bare affirmative counts as the first option.
func ParseAlternativeChoice(text string) (int, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	for i, oc := range ordinalChoices {
		if ordinalChoicePatterns[i].MatchString(t) {
			return oc.index, true
		}
	}
	if ValidateYesNo(t) == "yes" {
		return 0, true
	}
	return 0, false
}

var nameLeadIns = []string{"my name is", "this is", "i am", "i'm", "it's", "its", "name is"}

var nameFillers = regexp.MustCompile(`\b(uh|um|hmm|yeah|hello|hi|hey|so|well)\b`)

var nonAlpha = regexp.MustCompile(`[^a-zA-Z\s]`)

// ExtractName is the deterministic fallback for name extraction: strip
// lead-in phrases, keep letters, title-case up to two words.
func ExtractName(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, tok := range nameLeadIns {
		t = strings.ReplaceAll(t, tok, " ")
	}
	t = nameFillers.ReplaceAllString(t, " ")
	t = nonAlpha.ReplaceAllString(t, " ")
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var emailExact = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// ExtractEmail reconstructs an address from spoken form (" at " -> "@",
// " dot " -> "."). Kept for downstream consumers even though the current
// call flow does not collect email.
func ExtractEmail(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, " at ", "@")
	t = strings.ReplaceAll(t, " dot ", ".")
	t = strings.ReplaceAll(t, " underscore ", "_")
	for _, dom := range []string{"gmail", "yahoo", "hotmail", "outlook"} {
		if strings.Contains(t, dom) && !strings.Contains(t, dom+".com") {
			t = strings.ReplaceAll(t, dom, dom+".com")
		}
	}
	if m := emailPattern.FindString(t); m != "" {
		return m, true
	}
	return "", false
}

// IsValidEmail reports whether the candidate matches a basic email shape.
func IsValidEmail(candidate string) bool {
	e := strings.TrimSpace(candidate)
	e = strings.Trim(e, `"'`)
	return emailExact.MatchString(e)
}
