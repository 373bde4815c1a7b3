package posture

import "bytes"

// collect is the single entry point every provider funnels its result
// through, spec.md §4.4. It is safe to call only from the loop thread.
//
// key may have been obsoleted since the provider was dispatched (the
// query that asked for it fell out of every policy before the provider
// finished); in that case body is dropped, matching "locate, do not
// create" in spec.md §4.4 step 1.
func (s *State) collect(key string, body []byte) {
	e, ok := s.Responses[key]
	if !ok {
		return
	}

	e.Pending = false

	changed := e.Body == nil || !bytes.Equal(e.Body, body)
	if changed {
		e.Body = body
	}

	e.ShouldSend = s.MustSendEveryTime || s.lastSubmissionErrored(key) || changed
}
