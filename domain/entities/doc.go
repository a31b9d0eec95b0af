// Package entities contains the value types shared by the host and the guest:
// HTTP requests and responses, header and query multimaps, security schemes,
// capability grants, file open options, and the host configuration.
package entities
