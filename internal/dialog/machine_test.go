package dialog

import (
	"testing"

	"intake-bot/internal/model"
)

func effectTypes(effs []Effect) []EffectType {
	out := make([]EffectType, 0, len(effs))
	for _, e := range effs {
		out = append(out, e.Type)
	}
	return out
}

func sameEffects(a []Effect, want ...EffectType) bool {
	got := effectTypes(a)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestTransition_Table(t *testing.T) {
	contact := model.Contact{TelegramID: 111, FirstName: "Anna", Phone: "+7900"}
	sub := model.Submission{Kind: model.KindText, Summary: "Текст: hi"}

	cases := []struct {
		name    string
		from    State
		event   Event
		to      State
		effects []EffectType
	}{
		{"start user", StateNone, Event{Type: EventStart}, StateAwaitingContact, []EffectType{EffectAskContact}},
		{"start admin", StateAwaitingRequest, Event{Type: EventStart, Admin: true}, StateNone, []EffectType{EffectShowAdminMenu}},
		{"restart mid dialogue", StateSubmitted, Event{Type: EventStart}, StateAwaitingContact, []EffectType{EffectAskContact}},
		{"contact shared", StateAwaitingContact, Event{Type: EventContact, Contact: contact}, StateAwaitingContact, []EffectType{EffectSaveContact}},
		{"non-contact input", StateAwaitingContact, Event{Type: EventInput, Submission: sub}, StateAwaitingContact, []EffectType{EffectRepeatContactPrompt}},
		{"contact saved", StateAwaitingContact, Event{Type: EventContactSaved}, StateAwaitingRequest, []EffectType{EffectAskRequest}},
		{"contact failed", StateAwaitingContact, Event{Type: EventContactFailed}, StateAwaitingContact, []EffectType{EffectContactFailed}},
		{"request input", StateAwaitingRequest, Event{Type: EventInput, Submission: sub}, StateAwaitingRequest, []EffectType{EffectSaveRequest}},
		{"contact as request", StateAwaitingRequest, Event{Type: EventContact, Contact: contact}, StateAwaitingRequest, []EffectType{EffectSaveRequest}},
		{"request saved", StateAwaitingRequest, Event{Type: EventRequestSaved}, StateSubmitted, []EffectType{EffectRequestAccepted}},
		{"request failed", StateAwaitingRequest, Event{Type: EventRequestFailed}, StateAwaitingRequest, []EffectType{EffectRequestFailed}},
		{"change request", StateSubmitted, Event{Type: EventChangeRequest}, StateAwaitingRequest, []EffectType{EffectAskNewRequest}},
		{"change request after restart", StateNone, Event{Type: EventChangeRequest, Registered: true}, StateAwaitingRequest, []EffectType{EffectAskNewRequest}},
		{"change request unregistered", StateNone, Event{Type: EventChangeRequest}, StateNone, []EffectType{EffectHintStart}},
		{"change request before contact", StateAwaitingContact, Event{Type: EventChangeRequest}, StateAwaitingContact, []EffectType{EffectRepeatContactPrompt}},
		{"finish", StateSubmitted, Event{Type: EventFinish}, StateSubmitted, []EffectType{EffectFarewell}},
		{"finish mid request", StateAwaitingRequest, Event{Type: EventFinish}, StateAwaitingRequest, nil},
		{"text after submit", StateSubmitted, Event{Type: EventInput, Submission: sub}, StateSubmitted, []EffectType{EffectHintSubmitted}},
		{"text before start", StateNone, Event{Type: EventInput, Submission: sub}, StateNone, []EffectType{EffectHintStart}},
		{"stray saved event", StateNone, Event{Type: EventRequestSaved}, StateNone, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			to, effs := Transition(tc.from, tc.event)
			if to != tc.to {
				t.Fatalf("state: got %s, want %s", to, tc.to)
			}
			if !sameEffects(effs, tc.effects...) {
				t.Fatalf("effects: got %v, want %v", effectTypes(effs), tc.effects)
			}
		})
	}
}

func TestTransition_CarriesPayloads(t *testing.T) {
	contact := model.Contact{TelegramID: 5, Phone: "+1"}
	_, effs := Transition(StateAwaitingContact, Event{Type: EventContact, Contact: contact})
	if len(effs) != 1 || effs[0].Contact != contact {
		t.Fatalf("contact not forwarded: %+v", effs)
	}

	sub := model.Submission{Kind: model.KindVoice, Summary: "Голосовое сообщение: Без описания", MediaRef: "v1"}
	_, effs = Transition(StateAwaitingRequest, Event{Type: EventInput, Submission: sub})
	if len(effs) != 1 || effs[0].Submission != sub {
		t.Fatalf("submission not forwarded: %+v", effs)
	}
}

func TestFullFlow(t *testing.T) {
	state := StateNone
	steps := []Event{
		{Type: EventStart},
		{Type: EventInput},
		{Type: EventContact},
		{Type: EventContactSaved},
		{Type: EventInput},
		{Type: EventRequestSaved},
		{Type: EventChangeRequest},
		{Type: EventInput},
		{Type: EventRequestSaved},
		{Type: EventFinish},
	}
	for _, ev := range steps {
		state, _ = Transition(state, ev)
	}
	if state != StateSubmitted {
		t.Fatalf("final state %s, want submitted", state)
	}
}

func TestSessions(t *testing.T) {
	s := NewSessions()
	if got := s.Get(1); got != StateNone {
		t.Fatalf("unknown user state %s", got)
	}
	s.Set(1, StateAwaitingRequest)
	s.Set(2, StateAwaitingContact)
	if s.Get(1) != StateAwaitingRequest || s.Get(2) != StateAwaitingContact {
		t.Fatalf("states leaked between users")
	}
	s.Set(1, StateNone)
	if s.Get(1) != StateNone {
		t.Fatalf("reset to none failed")
	}
}
