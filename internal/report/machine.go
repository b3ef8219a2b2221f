package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/looplab/fsm"
)

// ErrNoActiveForm is returned by Step when the conversation has no form in progress.
var ErrNoActiveForm = errors.New("report: no active form")

const (
	evBegin        = "begin"
	evAnimalType   = "animal_type"
	evLocation     = "location"
	evHealth       = "health"
	evContactName  = "contact_name"
	evAnonymous    = "anonymous"
	evContactPhone = "contact_phone"
	evDescription  = "description"
	evPhoto        = "photo"
	evSubmit       = "submit"
)

var anonymousWords = map[string]struct{}{
	"anonymous": {},
	"anónimo":   {},
	"anonimo":   {},
	"omit":      {},
	"omitir":    {},
}

var confirmWords = map[string]struct{}{
	"send":   {},
	"enviar": {},
}

// IsAnonymousName reports whether a contact name answer means "stay anonymous".
func IsAnonymousName(text string) bool {
	_, ok := anonymousWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// IsConfirmation reports whether text confirms sending the report.
func IsConfirmation(text string) bool {
	_, ok := confirmWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Machine drives the report form. It holds no per-user data and is safe for concurrent use.
type Machine struct {
	events fsm.Events
}

// NewMachine declares the transition graph of the form.
func NewMachine() *Machine {
	return &Machine{events: fsm.Events{
		{Name: evBegin, Src: []string{string(StateIdle)}, Dst: string(StateAnimalType)},
		{Name: evAnimalType, Src: []string{string(StateAnimalType)}, Dst: string(StateLocation)},
		{Name: evLocation, Src: []string{string(StateLocation)}, Dst: string(StateHealth)},
		{Name: evHealth, Src: []string{string(StateHealth)}, Dst: string(StateContactName)},
		{Name: evContactName, Src: []string{string(StateContactName)}, Dst: string(StateContactPhone)},
		{Name: evAnonymous, Src: []string{string(StateContactName)}, Dst: string(StateDescription)},
		{Name: evContactPhone, Src: []string{string(StateContactPhone)}, Dst: string(StateDescription)},
		{Name: evDescription, Src: []string{string(StateDescription)}, Dst: string(StatePhoto)},
		{Name: evPhoto, Src: []string{string(StatePhoto)}, Dst: string(StateConfirm)},
		{Name: evSubmit, Src: []string{string(StateConfirm)}, Dst: string(StateIdle)},
	}}
}

func (m *Machine) fire(from State, event string) (State, error) {
	f := fsm.NewFSM(string(from), m.events, nil)
	if err := f.Event(context.Background(), event); err != nil {
		return from, fmt.Errorf("report: %s from %s: %w", event, from, err)
	}
	return State(f.Current()), nil
}

// Begin opens a fresh form, or repeats the current question when one is already open.
func (m *Machine) Begin(s Session) (Result, error) {
	if s.Active() {
		return Result{Session: s, Reply: Prompt(s.State)}, nil
	}
	next, err := m.fire(StateIdle, evBegin)
	if err != nil {
		return Result{Session: s}, err
	}
	return Result{Session: Session{State: next}, Reply: Prompt(next)}, nil
}

// Cancel drops the form from any state, known or not, and acknowledges it.
func (m *Machine) Cancel(Session) Result {
	return Result{Session: Session{State: StateIdle}, Reply: Reply{Text: ackCancelled}}
}

// Step feeds one user message to the form.
func (m *Machine) Step(s Session, in Input) (Result, error) {
	text := strings.TrimSpace(in.Text)

	switch s.State {
	case StateIdle, "":
		return Result{Session: s}, ErrNoActiveForm

	case StatePhoto:
		r := s.Report
		r.PhotoRef = in.PhotoRef
		ack := ackPhotoSkipped
		if r.HasPhoto() {
			ack = ackPhotoReceived
		}
		return m.advance(s, r, evPhoto, Reply{
			Text:     ack + "\n\n" + Summary(r) + "\n" + promptConfirm,
			Markdown: true,
			Keyboard: quickAnswers[StateConfirm],
		})

	case StateConfirm:
		if in.PhotoRef == "" && IsConfirmation(text) {
			if err := s.Report.Validate(); err != nil {
				return Result{Session: s}, err
			}
			next, err := m.fire(s.State, evSubmit)
			if err != nil {
				return Result{Session: s}, err
			}
			return Result{Session: Session{State: next}, Submit: true, Report: s.Report}, nil
		}
		return Result{Session: s, Reply: Reply{Text: promptConfirmAgain, Keyboard: quickAnswers[StateConfirm]}}, nil
	}

	if in.PhotoRef != "" || text == "" {
		reply := Prompt(s.State)
		reply.Text = nudgeTextOnly + "\n" + reply.Text
		return Result{Session: s, Reply: reply}, nil
	}

	r := s.Report
	var (
		event string
		reply Reply
	)
	switch s.State {
	case StateAnimalType:
		r.AnimalType, event = text, evAnimalType
	case StateLocation:
		r.Location, event = text, evLocation
	case StateHealth:
		r.HealthStatus, event = text, evHealth
	case StateContactName:
		if IsAnonymousName(text) {
			r.ContactName, r.ContactPhone = AnonymousName, OmittedPhone
			event, reply = evAnonymous, Reply{Text: promptAnonymous}
		} else {
			r.ContactName, r.ContactPhone = text, ""
			event = evContactName
		}
	case StateContactPhone:
		r.ContactPhone, event = text, evContactPhone
	case StateDescription:
		r.Description, event = text, evDescription
	default:
		return Result{Session: s}, fmt.Errorf("report: unknown state %q", s.State)
	}
	return m.advance(s, r, event, reply)
}

func (m *Machine) advance(s Session, r Report, event string, reply Reply) (Result, error) {
	next, err := m.fire(s.State, event)
	if err != nil {
		return Result{Session: s}, err
	}
	if reply.Text == "" {
		reply = Prompt(next)
	}
	return Result{Session: Session{State: next, Report: r}, Reply: reply}, nil
}
