// Package greeting implements the Greeting Selector (GS): the opening line
// spoken on an incoming call, chosen from RuntimeStatus and the time of
// day.
package greeting

import (
	"strings"
	"time"

	"github.com/ristoranteadam/sara/internal/prompts"
	"github.com/ristoranteadam/sara/internal/runtime"
)

// recordingNoticeKey names the prompt appended to the open greeting when
// recordCalls is set.
const recordingNoticeKey = "recording_notice"

// Select builds the greeting line per spec.md §4.8. A closed status yields
// the greet_closed prompt as written, with no day-part choice. An open
// status yields the morning, afternoon or evening prompt picked by dayPart,
// plus the recording notice when recordCalls is set.
func Select(status runtime.Status, now time.Time, recordCalls bool, p *prompts.Set) string {
	part := dayPart(now)

	if status.Mode == "closed" {
		return p.Render("greet_closed", map[string]string{})
	}

	var key string
	switch part {
	case "morning":
		key = "greet_open_morning"
	case "afternoon":
		key = "greet_open_afternoon"
	default:
		key = "greet_open_evening"
	}

	greeting := p.Render(key, map[string]string{})
	if recordCalls {
		notice := p.RenderOptional(recordingNoticeKey, map[string]string{})
		if notice != "" {
			greeting = strings.TrimSpace(greeting + " " + notice)
		}
	}
	return greeting
}

// dayPart returns "morning" (< 12:00), "afternoon" (12:00-18:00) or
// "evening" (>= 18:00), per spec.md §4.8.
func dayPart(now time.Time) string {
	h := now.Hour()
	switch {
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
