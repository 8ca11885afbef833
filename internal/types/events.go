package types

import "sync"

// Event names emitted by the ledger components. Observers and tests match on
// these names and on argument order, so they are part of the contract.
const (
	EventTransfer           = "Transfer"
	EventApproval           = "Approval"
	EventDeposit            = "Deposit"
	EventWithdraw           = "Withdraw"
	EventWithdrawal         = "Withdrawal"
	EventStaked             = "Staked"
	EventWithdrawn          = "Withdrawn"
	EventRewardPaid         = "RewardPaid"
	EventRewardAdded        = "RewardAdded"
	EventChangeTrustedToken = "ChangeTrustedToken"
)

// Event is one emitted log entry.
type Event struct {
	Emitter Address
	Name    string
	Args    []any
}

// EventLog is an append-only recorder of emitted events, shared by every
// component of one deployed world. It is the stand-in for a chain's event log.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Emit(emitter Address, name string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, Event{Emitter: emitter, Name: name, Args: args})
}

// Len returns the number of events recorded so far. Callers use it as a cursor
// into Since.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Since returns a copy of all events recorded at or after cursor.
func (l *EventLog) Since(cursor int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-cursor)
	copy(out, l.events[cursor:])
	return out
}

// Filter returns every recorded event from emitter with the given name.
// A zero emitter matches any emitter.
func (l *EventLog) Filter(emitter Address, name string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if name != "" && ev.Name != name {
			continue
		}
		if emitter != "" && ev.Emitter != emitter {
			continue
		}
		out = append(out, ev)
	}
	return out
}
