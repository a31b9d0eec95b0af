package ports

// Capabilities bundles the providers given to one guest instance. A nil
// provider makes the matching request kinds fail with a CapabilityError.
type Capabilities struct {
	Network    Network
	FileSystem FileSystem
	Timers     Timers
	TextCoder  TextCoder
}
