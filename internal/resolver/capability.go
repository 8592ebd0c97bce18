package resolver

// Capability describes whether external probes can run at all.
// It is computed once by the caller and passed in, so tests can simulate an
// offline environment without touching the network.
type Capability struct {
	// Available is true when probes may be sent.
	Available bool

	// Reason explains why probes are unavailable. Empty when Available.
	Reason string
}

// Online returns an available capability.
func Online() Capability {
	return Capability{Available: true}
}

// Offline returns an unavailable capability with the given reason.
func Offline(reason string) Capability {
	return Capability{Available: false, Reason: reason}
}
