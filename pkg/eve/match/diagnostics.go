package match

// Tag classifies a diagnostics event.
type Tag string

const (
	TagSent     Tag = "sent"
	TagReceived Tag = "received"
	TagIllegal  Tag = "illegal"
	TagTimeout  Tag = "timeout"
	TagCrash    Tag = "crash"
)

// Event is a single exchange with a bot, or the failure of one.
type Event struct {
	Match  int    `json:"match"`
	Player string `json:"player"`
	Tag    Tag    `json:"tag"`

	// Line is the raw line sent or received, if any.
	Line string `json:"line,omitempty"`

	// Detail explains illegal, timeout, and crash events.
	Detail string `json:"detail,omitempty"`
}

// A Sink receives diagnostics events. Sinks must be safe for concurrent
// use, since matches may run in parallel.
type Sink interface {
	Trace(event Event)
}

// Nop is a Sink which discards every event.
type Nop struct{}

func (Nop) Trace(Event) {}
