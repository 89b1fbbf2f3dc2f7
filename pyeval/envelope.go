// envelope.go — the outcome envelope.
//
// Every invocation produces exactly one JSON document with exactly one of
// two top-level keys:
//
//	{"ok": <tagged document>}   evaluation and encoding both succeeded
//	{"err": <string>}           anything failed
//
// The err string is the failure's primary message (the Msg field of lex,
// parse and runtime errors; Error() otherwise) and is never empty. There is
// no partial output: an encoding failure halfway through a nested value
// collapses the whole result to a single err envelope.
package pyeval

import "encoding/json"

// Run evaluates src and returns the envelope for it, with default encoder
// options.
func Run(src string) []byte {
	return RunWithOptions(src, Options{})
}

// RunWithOptions is Run with explicit encoder options. A fresh interpreter
// is used; invocations share no state.
func RunWithOptions(src string, opts Options) []byte {
	return NewInterp().RunSource(src, opts)
}

// RunSource evaluates src on ip and returns the envelope.
func (ip *Interp) RunSource(src string, opts Options) []byte {
	value, err := ip.EvalSource(src)
	if err != nil {
		return errEnvelope(err)
	}
	doc, err := EncodeWithOptions(value, opts)
	if err != nil {
		return errEnvelope(err)
	}
	out, err := json.Marshal(map[string]any{"ok": doc})
	if err != nil {
		return errEnvelope(err)
	}
	return out
}

func errEnvelope(err error) []byte {
	msg := errMessage(err)
	if msg == "" {
		msg = "unknown error"
	}
	out, merr := json.Marshal(map[string]any{"err": msg})
	if merr != nil {
		// Marshaling a plain string map cannot realistically fail, but the
		// envelope contract allows no third outcome.
		return []byte(`{"err":"unknown error"}`)
	}
	return out
}

// errMessage extracts the primary message of an error: the bare Msg field
// for the typed diagnostics, Error() for anything else.
func errMessage(err error) string {
	switch e := err.(type) {
	case *LexError:
		return e.Msg
	case *ParseError:
		return e.Msg
	case *RuntimeError:
		return e.Msg
	case *UnsupportedTypeError:
		return e.Error()
	case *DepthError:
		return e.Error()
	default:
		return err.Error()
	}
}
