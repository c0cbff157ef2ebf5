package spool

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Directory enumerates printers known to the host spooler and resolves the
// host default. All operations are synchronous and reentrant; each call
// negotiates its own buffers, so concurrent use needs no locking here.
type Directory struct {
	sp  Spooler
	log zerolog.Logger
}

// NewDirectory wraps a platform spooler backend.
func NewDirectory(sp Spooler, log zerolog.Logger) *Directory {
	return &Directory{sp: sp, log: log.With().Str("component", "spool").Logger()}
}

// Listing owns the enumeration buffer for one List call. Records borrowed
// from it become invalid once Close frees the buffer.
type Listing struct {
	buf   *Buffer
	count int
	sp    Spooler
}

// Len is the number of enumerated records.
func (l *Listing) Len() int { return l.count }

// Record returns the borrowed view at index i.
func (l *Listing) Record(i int) Record {
	if i < 0 || i >= l.count {
		panic(fmt.Sprintf("spool: record index %d out of range [0,%d)", i, l.count))
	}
	return l.sp.Record(l.buf, i)
}

// Close frees the enumeration buffer. Safe to call on an empty listing;
// closing twice returns ErrBufferFreed.
func (l *Listing) Close() error {
	if l.buf == nil {
		return nil
	}
	return l.buf.Free()
}

// List enumerates printers, optionally narrowed to an exact name. An empty
// directory is a valid empty listing, not an error. The caller owns the
// listing and must Close it after copying out any derived data.
func (d *Directory) List(filter string) (*Listing, error) {
	var count int
	buf, err := negotiate(d.sp.RecordStride(), negotiationAttempts, func(buf []byte) (int, bool, error) {
		needed, n, err := d.sp.Enumerate(filter, buf)
		if err != nil {
			return 0, false, err
		}
		if buf == nil {
			return needed, false, nil
		}
		if needed > len(buf) {
			return needed, false, nil
		}
		count = n
		return needed, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate printers: %w", err)
	}
	if buf == nil {
		return &Listing{sp: d.sp}, nil
	}

	d.log.Debug().Int("count", count).Str("filter", filter).Msg("enumerated printers")

	return &Listing{buf: buf, count: count, sp: d.sp}, nil
}

// DefaultIdentifier reports the host default printer identifier, or ""
// when the host has none configured.
func (d *Directory) DefaultIdentifier() (string, error) {
	return defaultIdentifier(d.sp)
}

// Default resolves the default printer within listing by identifier
// equality. A missing default, or a default that is no longer present in
// the listing, reports (nil, nil) rather than an error.
func (d *Directory) Default(listing *Listing) (Record, error) {
	name, err := defaultIdentifier(d.sp)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	for i := 0; i < listing.Len(); i++ {
		rec := listing.Record(i)
		if rec.SystemName() == name {
			return rec, nil
		}
	}
	// The default printer was removed between the two calls.
	d.log.Debug().Str("name", name).Msg("default printer not in listing")
	return nil, nil
}

// Snapshot lists printers and copies each record into an owned
// PrinterInfo, closing the listing before returning. This is the form the
// service layer consumes.
func (d *Directory) Snapshot(filter string) ([]PrinterInfo, error) {
	listing, err := d.List(filter)
	if err != nil {
		return nil, err
	}
	defer listing.Close()

	defName, err := defaultIdentifier(d.sp)
	if err != nil {
		// The listing is still usable without default resolution.
		d.log.Warn().Err(err).Msg("default printer lookup failed")
		defName = ""
	}

	infos := make([]PrinterInfo, 0, listing.Len())
	for i := 0; i < listing.Len(); i++ {
		rec := listing.Record(i)
		infos = append(infos, snapshotRecord(rec, defName != "" && rec.SystemName() == defName))
	}
	return infos, nil
}

// defaultIdentifier negotiates the default-printer identifier, whose size
// is unknown up front just like an enumeration. "" means no default.
func defaultIdentifier(sp Spooler) (string, error) {
	codec := sp.Codec()
	buf, err := negotiate(codec.UnitSize(), negotiationAttempts, func(buf []byte) (int, bool, error) {
		needed, err := sp.DefaultIdentifier(buf)
		if err != nil {
			return 0, false, err
		}
		if buf == nil || needed > len(buf) {
			return needed, false, nil
		}
		return needed, true, nil
	})
	if err != nil {
		return "", fmt.Errorf("default printer: %w", err)
	}
	if buf == nil {
		return "", nil
	}
	defer buf.Free()

	return codec.Decode(buf.Bytes()), nil
}
