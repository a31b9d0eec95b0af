// Package syncbridge turns host-side asynchronous work into blocking round
// trips for a single-threaded guest.
//
// A guest request that needs host I/O starts an Operation keyed by the
// handle it concerns; the work runs on a host goroutine. When the guest
// later asks for the result, the Bridge parks the guest call with the
// configured Strategy until that one operation settles. Because results
// are keyed by handle, operations may complete in any order without
// crossing over.
package syncbridge
