// Package dialog holds the intake conversation as a pure state machine.
// The transport feeds events in and executes the returned effects; storage
// outcomes come back as events so every transition stays testable.
package dialog

import "intake-bot/internal/model"

// State is the position of a user in the intake dialogue.
type State int

const (
	StateNone State = iota
	StateAwaitingContact
	StateAwaitingRequest
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateAwaitingContact:
		return "awaiting_contact"
	case StateAwaitingRequest:
		return "awaiting_request"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// EventType enumerates everything that can move the dialogue.
type EventType int

const (
	EventStart EventType = iota
	EventContact
	EventInput
	EventContactSaved
	EventContactFailed
	EventRequestSaved
	EventRequestFailed
	EventChangeRequest
	EventFinish
)

// Event is one input to Transition.
type Event struct {
	Type EventType
	// Admin is set on EventStart for allowlisted users.
	Admin bool
	// Contact is set on EventContact.
	Contact model.Contact
	// Submission is set on EventInput; it is ignored outside the request phase.
	Submission model.Submission
	// Registered is set on EventChangeRequest when a record exists for the user.
	Registered bool
}

// EffectType enumerates what the transport must do after a transition.
type EffectType int

const (
	EffectShowAdminMenu EffectType = iota
	EffectAskContact
	EffectRepeatContactPrompt
	EffectSaveContact
	EffectContactFailed
	EffectAskRequest
	EffectSaveRequest
	EffectRequestAccepted
	EffectRequestFailed
	EffectAskNewRequest
	EffectFarewell
	EffectHintStart
	EffectHintSubmitted
)

// Effect is one side effect requested by Transition.
type Effect struct {
	Type       EffectType
	Contact    model.Contact
	Submission model.Submission
}

// Transition computes the next state and the effects for an event.
// It never fails: unexpected events keep the state and ask the user to continue.
func Transition(state State, ev Event) (State, []Effect) {
	if ev.Type == EventStart {
		if ev.Admin {
			return StateNone, effects(EffectShowAdminMenu)
		}
		return StateAwaitingContact, effects(EffectAskContact)
	}

	switch ev.Type {
	case EventChangeRequest:
		if state == StateSubmitted || ev.Registered {
			return StateAwaitingRequest, effects(EffectAskNewRequest)
		}
		if state == StateAwaitingContact {
			return state, effects(EffectRepeatContactPrompt)
		}
		return state, effects(EffectHintStart)
	case EventFinish:
		if state == StateSubmitted || state == StateNone {
			return StateSubmitted, effects(EffectFarewell)
		}
		return state, nil
	}

	switch state {
	case StateAwaitingContact:
		switch ev.Type {
		case EventContact:
			return StateAwaitingContact, []Effect{{Type: EffectSaveContact, Contact: ev.Contact}}
		case EventContactSaved:
			return StateAwaitingRequest, effects(EffectAskRequest)
		case EventContactFailed:
			return StateAwaitingContact, effects(EffectContactFailed)
		default:
			return StateAwaitingContact, effects(EffectRepeatContactPrompt)
		}

	case StateAwaitingRequest:
		switch ev.Type {
		case EventContact, EventInput:
			return StateAwaitingRequest, []Effect{{Type: EffectSaveRequest, Submission: ev.Submission}}
		case EventRequestSaved:
			return StateSubmitted, effects(EffectRequestAccepted)
		case EventRequestFailed:
			return StateAwaitingRequest, effects(EffectRequestFailed)
		default:
			return state, nil
		}

	case StateSubmitted:
		switch ev.Type {
		case EventContact, EventInput:
			return StateSubmitted, effects(EffectHintSubmitted)
		default:
			return state, nil
		}

	default:
		switch ev.Type {
		case EventContact, EventInput:
			return StateNone, effects(EffectHintStart)
		default:
			return state, nil
		}
	}
}

func effects(types ...EffectType) []Effect {
	out := make([]Effect, len(types))
	for i, t := range types {
		out[i] = Effect{Type: t}
	}
	return out
}
