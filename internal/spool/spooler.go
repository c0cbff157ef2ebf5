// Package spool queries the operating system print spooler for attached
// printers and their physical capabilities. Native spooler calls cannot
// report variable-length results in one shot, so every query here runs a
// two-phase protocol: probe for the required buffer size, allocate exactly
// that much, then ask again for the data.
package spool

import "errors"

var (
	// ErrUnstable is returned when the spooler directory kept changing
	// between the size query and the fill query and the bounded retries
	// ran out. Callers should retry the whole operation.
	ErrUnstable = errors.New("spool: directory changed between size and fill calls")

	// ErrAllocation is returned when a native size hint cannot be
	// satisfied (negative, or past the sanity cap).
	ErrAllocation = errors.New("spool: buffer allocation failed")

	// ErrNoSpooler is returned by NewPlatformSpooler on hosts without a
	// supported print spooler.
	ErrNoSpooler = errors.New("spool: no print spooler backend on this platform")

	// ErrBufferFreed is returned by Buffer.Free on a second free.
	ErrBufferFreed = errors.New("spool: buffer already freed")
)

// CapabilityKind selects which capability sub-query the native call runs.
// Values match the winspool DeviceCapabilitiesW selectors.
type CapabilityKind uint16

const (
	// CapabilityBins reports paper bins. With a nil output buffer the
	// call returns the bin count; with a buffer it fills one id per bin.
	CapabilityBins CapabilityKind = 6

	// CapabilityBinNames fills one fixed-width name slot per bin.
	CapabilityBinNames CapabilityKind = 12
)

const (
	// BinNameSlotLen is the width of one bin name slot in text units.
	BinNameSlotLen = 24

	// BinIDSize is the byte width of one bin identifier.
	BinIDSize = 2

	// CapabilityUnsupported is the sentinel a capability query returns
	// when the device does not support the query at all. Distinct from a
	// valid count of zero.
	CapabilityUnsupported = -1

	// negotiationAttempts bounds the fill retries when the directory
	// grows between the size call and the fill call.
	negotiationAttempts = 2
)

// Spooler is the native subsystem contract, implemented once per platform.
// All three calls follow the two-phase buffer protocol: a nil buffer asks
// for the required size, a sized buffer asks for the data.
type Spooler interface {
	// Enumerate lists printers into buf. filter narrows the listing to an
	// exact printer name; empty means all. It reports the buffer size the
	// call needs and how many records it wrote.
	Enumerate(filter string, buf []byte) (needed, count int, err error)

	// DefaultIdentifier writes the default printer identifier into buf
	// and reports the size needed, in bytes.
	DefaultIdentifier(buf []byte) (needed int, err error)

	// QueryCapability runs one capability sub-query against a device.
	// The return value is a count, or CapabilityUnsupported.
	QueryCapability(device, port string, kind CapabilityKind, out []byte) (int, error)

	// RecordStride is the byte width of one enumeration record in the
	// buffer Enumerate fills.
	RecordStride() int

	// Record returns a borrowed view over record index i of an
	// enumeration buffer. The view is only valid until the buffer is
	// freed.
	Record(buf *Buffer, index int) Record

	// Codec decodes this backend's native text representation.
	Codec() TextCodec
}
