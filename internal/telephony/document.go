// Package telephony builds the call-control XML documents the Webhook
// Adapter (WA) returns to the telephony provider: play-audio-from-URL,
// gather-speech-until-silence, redirect-to-URL, dial-a-phone-number and
// hang-up, per spec.md §4.9/§6's minimal vocabulary.
package telephony

import (
	"encoding/xml"
	"net/url"
)

// Document is the root call-control response. XML tag names follow the
// provider-neutral vocabulary spec.md §6 names rather than any single
// provider's dialect.
type Document struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []Verb   `xml:",any"`
}

// Verb is satisfied by each concrete call-control instruction.
type Verb interface {
	isVerb()
}

// Play plays audio fetched from a URL.
type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

func (Play) isVerb() {}

// Gather collects recognised speech until silence, with Dutch language
// hints, then posts the transcript to Action.
type Gather struct {
	XMLName     xml.Name `xml:"Gather"`
	Input       string   `xml:"input,attr"`
	Language    string   `xml:"language,attr"`
	Hints       string   `xml:"hints,attr,omitempty"`
	Action      string   `xml:"action,attr"`
	Method      string   `xml:"method,attr"`
	SpeechTimeout string `xml:"speechTimeout,attr,omitempty"`
}

func (Gather) isVerb() {}

// Redirect sends the next callback for this call to URL.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

func (Redirect) isVerb() {}

// Dial places the call to Number, presenting CallerID.
type Dial struct {
	XMLName  xml.Name `xml:"Dial"`
	CallerID string   `xml:"callerId,attr"`
	Number   string   `xml:",chardata"`
}

func (Dial) isVerb() {}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func (Hangup) isVerb() {}

// Render serialises doc as an XML document with its declaration header.
func Render(doc Document) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body))
	out = append(out, []byte(xml.Header)...)
	out = append(out, body...)
	return out, nil
}

// dutchOrderHints are the speech-recognition vocabulary hints passed to
// Gather, per spec.md §6's "hints list (dutch order vocabulary)".
const dutchOrderHints = "pizza,margherita,salami,hawai,pasta,schotel,afhalen,bezorgen,ja,nee,postcode"

// PlayURL builds the provider's play-from-TTS URL for a spoken message,
// per spec.md §4.9: "pointing the provider at the internal TTS endpoint
// with the text as a URL parameter."
func PlayURL(ttsBaseURL, text string) string {
	u, err := url.Parse(ttsBaseURL)
	if err != nil {
		return ttsBaseURL
	}
	q := u.Query()
	q.Set("text", text)
	u.RawQuery = q.Encode()
	return u.String()
}

// FallbackDocument dials the fallback number when the bot is disabled,
// per spec.md §4.9 step 1.
func FallbackDocument(callerID, fallbackNumber string) Document {
	return Document{Verbs: []Verb{Dial{CallerID: callerID, Number: fallbackNumber}}}
}

// IncomingDocument plays the greeting then redirects to the step endpoint,
// per spec.md §4.9 step 2.
func IncomingDocument(ttsBaseURL, greeting, stepURL string) Document {
	return Document{Verbs: []Verb{
		Play{URL: PlayURL(ttsBaseURL, greeting)},
		Redirect{Method: "POST", URL: stepURL},
	}}
}

// StepDocument gathers speech with Dutch hints and, on timeout, redirects
// back to itself, per spec.md §4.9 step 3.
func StepDocument(stepURL, handleURL string) Document {
	return Document{Verbs: []Verb{
		Gather{
			Input:         "speech",
			Language:      "nl-NL",
			Hints:         dutchOrderHints,
			Action:        handleURL,
			Method:        "POST",
			SpeechTimeout: "auto",
		},
		Redirect{Method: "POST", URL: stepURL},
	}}
}

// HandleDocument plays each DSM reply in sequence and either redirects to
// the step endpoint for the next turn or ends the call, per spec.md §4.9
// step 4.
func HandleDocument(ttsBaseURL string, messages []string, stepURL string, next string) Document {
	doc := Document{}
	for _, m := range messages {
		doc.Verbs = append(doc.Verbs, Play{URL: PlayURL(ttsBaseURL, m)})
	}
	if next == "end" {
		doc.Verbs = append(doc.Verbs, Hangup{})
	} else {
		doc.Verbs = append(doc.Verbs, Redirect{Method: "POST", URL: stepURL})
	}
	return doc
}
