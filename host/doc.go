// Package host runs guest modules.
//
// It wraps the wazero runtime, exports the message exchange to every module
// it instantiates, and gives each instance its own hostfuncs.Dispatcher, so
// resource handles and pending operations never cross instance
// boundaries. Closing an instance releases its handles before its pending
// operations, then closes the module.
//
// The Loader turns a YAML, TOML, or JSON configuration document into an
// entities.HostConfig, checking it against the generated JSON Schema and
// the struct's validate tags.
package host
