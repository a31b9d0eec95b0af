// Package resource implements the per-instance handle table through which a
// guest refers to host objects: open files, in-flight HTTP exchanges, and
// readable byte streams.
//
// Handles are issued from a counter that starts at 1 and only grows, so a
// removed handle is never issued again within the same table. Handle 0 is
// never valid.
package resource
