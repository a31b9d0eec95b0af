// Package capabilities provides the default host implementations of the
// capability ports: net/http networking, os-backed files and wall-clock
// timers. Default pairs them with the shared textcoder.
package capabilities
