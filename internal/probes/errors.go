package probes

// AssertionError indicates a response arrived but violated the probe's
// expected shape: wrong status, wrong content-type, empty body, or a
// broken link.
type AssertionError struct {
	Reason string
}

func (e *AssertionError) Error() string {
	return e.Reason
}
