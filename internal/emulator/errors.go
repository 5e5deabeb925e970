package emulator

import "errors"

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("server is closed")
