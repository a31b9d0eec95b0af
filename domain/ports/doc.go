// Package ports defines the capability interfaces the host supplies to each
// guest instance. Domain logic depends on these abstractions and
// infrastructure adapters implement them.
package ports
