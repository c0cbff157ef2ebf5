package spool

// queryFunc is one native call shape wrapped for negotiation. Called with a
// nil buffer it must report the size the call needs. Called with a sized
// buffer it fills it; done reports whether the fill succeeded, and needed
// carries the new requirement when it did not.
type queryFunc func(buf []byte) (needed int, done bool, err error)

// negotiate runs the two-phase buffer protocol: size probe, exact
// allocation, fill. The directory can legitimately change between the two
// calls, so a fill that comes back asking for more space is retried with
// the new size up to maxAttempts times before giving up with ErrUnstable.
//
// A zero size hint means "nothing available" and yields (nil, nil) - an
// empty result, not an error. On success the caller owns the returned
// buffer and must free it.
func negotiate(stride, maxAttempts int, fn queryFunc) (*Buffer, error) {
	needed, _, err := fn(nil)
	if err != nil {
		return nil, err
	}
	if needed == 0 {
		return nil, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		buf, err := newBuffer(needed, stride)
		if err != nil {
			return nil, err
		}

		grown, done, err := fn(buf.Bytes())
		if err != nil {
			buf.Free()
			return nil, err
		}
		if done {
			return buf, nil
		}

		buf.Free()
		if grown <= needed {
			// Not a growth report; the call failed outright.
			return nil, ErrUnstable
		}
		needed = grown
	}

	return nil, ErrUnstable
}
