package gauxc

import (
	"io"
	"log"
)

// Package-level loggers mirroring goHF's InfoLogger/WarningLogger/
// ErrorLogger split (main.go). They default to discarding all output: a
// library must stay silent unless its caller opts in, which it does by
// reassigning these with log.New against its own writer, exactly as
// goHF's initLog attaches its loggers to an output file.
var (
	Info = log.New(io.Discard, "INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(io.Discard, "WARNING: ", log.Ldate|log.Ltime)
	Err  = log.New(io.Discard, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)

// SetLogOutput redirects all three loggers to w in one call.
func SetLogOutput(w io.Writer) {
	Info.SetOutput(w)
	Warn.SetOutput(w)
	Err.SetOutput(w)
}
