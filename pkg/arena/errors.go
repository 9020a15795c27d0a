package arena

import "errors"

// ErrTransportClosed is returned by a Transport when the underlying
// connection is no longer writable.
var ErrTransportClosed = errors.New("arena: transport closed")
