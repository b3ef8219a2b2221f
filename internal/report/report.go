// Package report implements the animal rescue report form: the ordered
// questions, the validation of each answer and the rendering of the result.
package report

import (
	"errors"
	"fmt"
	"strings"
)

// State is one step of the report form.
type State string

const (
	StateIdle         State = "idle"
	StateAnimalType   State = "ask_animal_type"
	StateLocation     State = "ask_location"
	StateHealth       State = "ask_health"
	StateContactName  State = "ask_contact_name"
	StateContactPhone State = "ask_contact_phone"
	StateDescription  State = "ask_description"
	StatePhoto        State = "ask_photo"
	StateConfirm      State = "confirm"
)

// Active reports whether the state belongs to a form in progress.
func (s State) Active() bool {
	return s != StateIdle && s != ""
}

const (
	// AnonymousName replaces the contact name when the reporter opts out.
	AnonymousName = "Anonymous"
	// OmittedPhone replaces the contact phone of anonymous reports.
	OmittedPhone = "Omitted"
)

// ErrIncomplete is returned by Validate when a required field is empty.
var ErrIncomplete = errors.New("report: incomplete")

// Report is the record collected from the user.
type Report struct {
	AnimalType   string
	Location     string
	HealthStatus string
	ContactName  string
	ContactPhone string
	Description  string
	// PhotoRef is the Telegram file id of the attached photo, empty when skipped.
	PhotoRef string
}

// Anonymous reports whether the reporter chose not to share contact details.
func (r Report) Anonymous() bool {
	return r.ContactName == AnonymousName
}

// HasPhoto reports whether a photo was attached.
func (r Report) HasPhoto() bool {
	return r.PhotoRef != ""
}

// Validate checks that every required field is present.
func (r Report) Validate() error {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"animal_type", r.AnimalType},
		{"location", r.Location},
		{"health_status", r.HealthStatus},
		{"contact_name", r.ContactName},
		{"contact_phone", r.ContactPhone},
		{"description", r.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Session is the form value carried between updates of one conversation.
type Session struct {
	State  State
	Report Report
}

// Active reports whether a form is in progress.
func (s Session) Active() bool {
	return s.State.Active()
}

// Input is a single user message fed to the form.
type Input struct {
	Text     string
	PhotoRef string
}

// Reply is the message the bot answers with.
type Reply struct {
	Text     string
	Markdown bool
	// Keyboard holds quick answers offered under the message, one row per slice.
	Keyboard [][]string
}

// Result is the outcome of feeding one input to the form.
type Result struct {
	// Session is the value to store for the conversation.
	Session Session
	Reply   Reply
	// Submit is set when the user confirmed; Report then holds the finished report
	// and Session is already reset to idle.
	Submit bool
	Report Report
}

// Sender identifies the user who submitted a report.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
}
