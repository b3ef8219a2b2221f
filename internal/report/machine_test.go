package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func begin(t *testing.T, m *Machine) Session {
	t.Helper()
	res, err := m.Begin(Session{State: StateIdle})
	require.NoError(t, err)
	require.Equal(t, StateAnimalType, res.Session.State)
	return res.Session
}

func feed(t *testing.T, m *Machine, s Session, texts ...string) Session {
	t.Helper()
	for _, text := range texts {
		res, err := m.Step(s, Input{Text: text})
		require.NoError(t, err, "input %q at %s", text, s.State)
		require.NotEmpty(t, res.Reply.Text, "input %q at %s", text, s.State)
		s = res.Session
	}
	return s
}

func TestFullFormWithContact(t *testing.T) {
	m := NewMachine()
	s := begin(t, m)

	s = feed(t, m, s, "perro", "patio trasero", "herido", "Juan", "04140000000", "se ve débil", "omitir")
	require.Equal(t, StateConfirm, s.State)
	assert.Equal(t, Report{
		AnimalType:   "perro",
		Location:     "patio trasero",
		HealthStatus: "herido",
		ContactName:  "Juan",
		ContactPhone: "04140000000",
		Description:  "se ve débil",
	}, s.Report)

	res, err := m.Step(s, Input{Text: "enviar"})
	require.NoError(t, err)
	assert.True(t, res.Submit)
	assert.Equal(t, StateIdle, res.Session.State)
	assert.Equal(t, Report{}, res.Session.Report)
	assert.Equal(t, "Juan", res.Report.ContactName)
	assert.Empty(t, res.Reply.Text)
}

func TestStatesFollowTable(t *testing.T) {
	m := NewMachine()
	s := begin(t, m)
	want := []State{StateLocation, StateHealth, StateContactName, StateContactPhone, StateDescription, StatePhoto, StateConfirm}
	inputs := []string{"gato", "plaza", "desnutrido", "Ana", "0424", "en una caja", "no"}
	for i, in := range inputs {
		res, err := m.Step(s, Input{Text: in})
		require.NoError(t, err)
		assert.Equal(t, want[i], res.Session.State, "after %q", in)
		s = res.Session
	}
}

func TestAnonymousContactVariants(t *testing.T) {
	for _, name := range []string{"anonymous", "Anonymous", "ANÓNIMO", "anónimo", "Anonimo", " omit ", "OMITIR", "Omitir"} {
		t.Run(name, func(t *testing.T) {
			m := NewMachine()
			s := feed(t, m, begin(t, m), "ave", "parque", "sano")
			require.Equal(t, StateContactName, s.State)

			res, err := m.Step(s, Input{Text: name})
			require.NoError(t, err)
			assert.Equal(t, StateDescription, res.Session.State)
			assert.Equal(t, AnonymousName, res.Session.Report.ContactName)
			assert.Equal(t, OmittedPhone, res.Session.Report.ContactPhone)
			assert.True(t, res.Session.Report.Anonymous())
			assert.Equal(t, promptAnonymous, res.Reply.Text)
		})
	}
}

func TestNamedContactIsNotAnonymous(t *testing.T) {
	for _, name := range []string{"Anonymously Yours", "Omar", "omitted"} {
		assert.False(t, IsAnonymousName(name), name)
	}
}

func TestConfirmIgnoresOtherText(t *testing.T) {
	m := NewMachine()
	s := feed(t, m, begin(t, m), "perro", "calle 5", "herido", "anónimo", "cojea", "omitir")
	require.Equal(t, StateConfirm, s.State)

	for _, text := range []string{"yes", "ok", "sendd", "enviar ya", ""} {
		res, err := m.Step(s, Input{Text: text})
		require.NoError(t, err)
		assert.False(t, res.Submit)
		assert.Equal(t, s, res.Session, "input %q mutated the session", text)
		assert.Equal(t, promptConfirmAgain, res.Reply.Text)
	}

	res, err := m.Step(s, Input{PhotoRef: "late-photo"})
	require.NoError(t, err)
	assert.False(t, res.Submit)
	assert.Equal(t, s, res.Session)

	for _, text := range []string{"Send", "ENVIAR", " send "} {
		res, err := m.Step(s, Input{Text: text})
		require.NoError(t, err)
		assert.True(t, res.Submit, text)
	}
}

func TestPhotoStep(t *testing.T) {
	m := NewMachine()
	s := feed(t, m, begin(t, m), "perro", "calle 5", "herido", "Juan", "0414", "cojea")
	require.Equal(t, StatePhoto, s.State)

	res, err := m.Step(s, Input{PhotoRef: "AgACAgEAAxk"})
	require.NoError(t, err)
	assert.Equal(t, StateConfirm, res.Session.State)
	assert.Equal(t, "AgACAgEAAxk", res.Session.Report.PhotoRef)
	assert.True(t, res.Reply.Markdown)
	assert.Contains(t, res.Reply.Text, ackPhotoReceived)
	assert.Contains(t, res.Reply.Text, headerSummary)
	assert.Contains(t, res.Reply.Text, promptConfirm)

	res, err = m.Step(s, Input{Text: "no tengo"})
	require.NoError(t, err)
	assert.Equal(t, StateConfirm, res.Session.State)
	assert.Empty(t, res.Session.Report.PhotoRef)
	assert.Contains(t, res.Reply.Text, ackPhotoSkipped)
}

func TestTextStepsRejectPhotosAndBlankText(t *testing.T) {
	m := NewMachine()
	s := begin(t, m)

	res, err := m.Step(s, Input{PhotoRef: "photo"})
	require.NoError(t, err)
	assert.Equal(t, s, res.Session)
	assert.Contains(t, res.Reply.Text, nudgeTextOnly)
	assert.Contains(t, res.Reply.Text, promptAnimalType)

	res, err = m.Step(s, Input{Text: "   "})
	require.NoError(t, err)
	assert.Equal(t, s, res.Session)
}

func TestStepTrimsAnswers(t *testing.T) {
	m := NewMachine()
	s := feed(t, m, begin(t, m), "  perro \n")
	assert.Equal(t, "perro", s.Report.AnimalType)
}

func TestStepWithoutForm(t *testing.T) {
	m := NewMachine()
	_, err := m.Step(Session{State: StateIdle}, Input{Text: "hola"})
	assert.ErrorIs(t, err, ErrNoActiveForm)

	_, err = m.Step(Session{}, Input{Text: "hola"})
	assert.ErrorIs(t, err, ErrNoActiveForm)
}

func TestStepUnknownState(t *testing.T) {
	m := NewMachine()
	_, err := m.Step(Session{State: "ask_color"}, Input{Text: "negro"})
	assert.Error(t, err)
}

func TestBeginReusesActiveForm(t *testing.T) {
	m := NewMachine()
	s := feed(t, m, begin(t, m), "perro", "calle 5")
	require.Equal(t, StateHealth, s.State)

	res, err := m.Begin(s)
	require.NoError(t, err)
	assert.Equal(t, s, res.Session)
	assert.Equal(t, promptHealth, res.Reply.Text)
}

func TestCancelFromEveryState(t *testing.T) {
	m := NewMachine()
	s := begin(t, m)
	inputs := []string{"perro", "calle 5", "herido", "Juan", "0414", "cojea", "omitir"}
	states := []Session{s}
	for _, in := range inputs {
		s = feed(t, m, s, in)
		states = append(states, s)
	}
	states = append(states, Session{State: StateIdle})

	for _, st := range states {
		res := m.Cancel(st)
		assert.Equal(t, Session{State: StateIdle}, res.Session, "cancel from %s", st.State)
		assert.Equal(t, ackCancelled, res.Reply.Text)

		again, err := m.Begin(res.Session)
		require.NoError(t, err)
		assert.Equal(t, Report{}, again.Session.Report)
	}
}

func TestCancelFromUnknownState(t *testing.T) {
	m := NewMachine()
	res := m.Cancel(Session{State: "ask_color", Report: Report{AnimalType: "perro"}})
	assert.Equal(t, Session{State: StateIdle}, res.Session)
	assert.Equal(t, ackCancelled, res.Reply.Text)
}

func TestSubmitRequiresCompleteReport(t *testing.T) {
	m := NewMachine()
	_, err := m.Step(Session{State: StateConfirm, Report: Report{AnimalType: "perro"}}, Input{Text: "send"})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestPromptCoversActiveStates(t *testing.T) {
	for _, s := range []State{StateAnimalType, StateLocation, StateHealth, StateContactName,
		StateContactPhone, StateDescription, StatePhoto, StateConfirm} {
		assert.NotEmpty(t, Prompt(s).Text, s)
	}
	assert.Empty(t, Prompt(StateIdle).Text)
}

func TestQuickAnswersFollowPrompts(t *testing.T) {
	m := NewMachine()
	s := feed(t, m, begin(t, m), "perro", "calle 5")
	res, err := m.Step(s, Input{Text: "herido"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Anonymous"}}, res.Reply.Keyboard)

	s = feed(t, m, res.Session, "anónimo", "cojea")
	res, err = m.Step(s, Input{Text: "omit"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Send"}, {"/cancel"}}, res.Reply.Keyboard)

	res, err = m.Step(res.Session, Input{Text: "maybe"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Send"}, {"/cancel"}}, res.Reply.Keyboard)
	assert.True(t, IsConfirmation("Send"), "the quick answer must confirm")
	assert.True(t, IsAnonymousName("Anonymous"))
}
