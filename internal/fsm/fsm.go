package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateCascading  State = "cascading"
	StateConfirming State = "confirming"
	StateResponding State = "responding"
	StateSpeaking   State = "speaking"
	StateError      State = "error"
)

const (
	EventActivity  Event = "activity"
	EventConfirm   Event = "confirm"
	EventProceed   Event = "proceed"
	EventSpeak     Event = "speak"
	EventSpeechEnd Event = "speech_end"
	EventInterrupt Event = "interrupt"
	EventAbort     Event = "abort"
	EventFail      Event = "fail"
	EventReset     Event = "reset"
)

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}
	if event == EventInterrupt {
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventActivity:
			return StateCascading, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateCascading:
		switch event {
		case EventActivity:
			return StateCascading, nil
		case EventConfirm:
			return StateConfirming, nil
		case EventProceed:
			return StateResponding, nil
		case EventAbort:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConfirming:
		switch event {
		case EventActivity:
			return StateCascading, nil
		case EventProceed:
			return StateResponding, nil
		case EventAbort:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateResponding:
		switch event {
		case EventSpeak:
			return StateSpeaking, nil
		case EventAbort:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSpeaking:
		switch event {
		case EventSpeechEnd:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
