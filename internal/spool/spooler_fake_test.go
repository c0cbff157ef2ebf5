package spool

import "encoding/binary"

// fakeCodec decodes single-byte text units terminated by NUL, so probe and
// decode logic can be exercised with synthetic slots.
type fakeCodec struct{}

func (fakeCodec) UnitSize() int { return 1 }

func (fakeCodec) Decode(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// fakePrinter is the scripted native state behind one enumerated record.
type fakePrinter struct {
	name      string
	driver    string
	location  string
	port      string
	processor string
	comment   string
	datatype  string
	shared    bool
	status    uint32

	// Capability script. binCount is what the count query reports
	// (CapabilityUnsupported for the sentinel). idReturn and nameReturn
	// override the counts the fill queries report; zero means "same as
	// binCount".
	binCount   int
	binIDs     []uint16
	binNames   []string
	idReturn   int
	nameReturn int
}

func (p *fakePrinter) idCount() int {
	if p.idReturn == 0 {
		return p.binCount
	}
	return p.idReturn
}

func (p *fakePrinter) nameCount() int {
	if p.nameReturn == 0 {
		return p.binCount
	}
	return p.nameReturn
}

// fakeSpooler is a scripted Spooler. Enumeration records are fixed-width
// slots holding an index into the printers slice, which is as opaque as
// any real backend representation.
type fakeSpooler struct {
	printers    []*fakePrinter
	defaultName string

	// needs, when set, scripts the "needed" sizes successive Enumerate
	// calls report, simulating a directory that changes between the size
	// call and the fill call.
	needs []int

	enumErr    error
	defaultErr error
	capErr     error

	enumCalls int
	capCalls  []CapabilityKind
}

const fakeStride = 8

func newFakeSpooler(printers ...*fakePrinter) *fakeSpooler {
	return &fakeSpooler{printers: printers}
}

func (f *fakeSpooler) matching(filter string) []int {
	var idx []int
	for i, p := range f.printers {
		if filter == "" || p.name == filter {
			idx = append(idx, i)
		}
	}
	return idx
}

func (f *fakeSpooler) Enumerate(filter string, buf []byte) (int, int, error) {
	f.enumCalls++
	if f.enumErr != nil {
		return 0, 0, f.enumErr
	}

	needed := len(f.matching(filter)) * fakeStride
	if len(f.needs) > 0 {
		needed = f.needs[0]
		f.needs = f.needs[1:]
	}

	if buf == nil || len(buf) < needed {
		return needed, 0, nil
	}

	idx := f.matching(filter)
	for slot, i := range idx {
		binary.LittleEndian.PutUint64(buf[slot*fakeStride:], uint64(i))
	}
	return needed, len(idx), nil
}

func (f *fakeSpooler) DefaultIdentifier(buf []byte) (int, error) {
	if f.defaultErr != nil {
		return 0, f.defaultErr
	}
	if f.defaultName == "" {
		return 0, nil
	}
	needed := len(f.defaultName) + 1
	if buf == nil || len(buf) < needed {
		return needed, nil
	}
	copy(buf, f.defaultName)
	buf[len(f.defaultName)] = 0
	return needed, nil
}

func (f *fakeSpooler) lookup(device string) *fakePrinter {
	for _, p := range f.printers {
		if p.name == device {
			return p
		}
	}
	return nil
}

func (f *fakeSpooler) QueryCapability(device, port string, kind CapabilityKind, out []byte) (int, error) {
	f.capCalls = append(f.capCalls, kind)
	if f.capErr != nil {
		return 0, f.capErr
	}

	p := f.lookup(device)
	if p == nil {
		return CapabilityUnsupported, nil
	}

	switch kind {
	case CapabilityBins:
		if out == nil {
			return p.binCount, nil
		}
		for i, id := range p.binIDs {
			if (i+1)*BinIDSize > len(out) {
				break
			}
			binary.LittleEndian.PutUint16(out[i*BinIDSize:], id)
		}
		return p.idCount(), nil
	case CapabilityBinNames:
		stride := BinNameSlotLen * f.Codec().UnitSize()
		for i, name := range p.binNames {
			if (i+1)*stride > len(out) {
				break
			}
			slot := out[i*stride : (i+1)*stride]
			n := copy(slot, name)
			if n < len(slot) {
				slot[n] = 0
			}
		}
		return p.nameCount(), nil
	}
	return CapabilityUnsupported, nil
}

func (f *fakeSpooler) RecordStride() int { return fakeStride }

func (f *fakeSpooler) Record(buf *Buffer, index int) Record {
	i := binary.LittleEndian.Uint64(buf.Slot(index))
	return &fakeRecord{sp: f, p: f.printers[i]}
}

func (f *fakeSpooler) Codec() TextCodec { return fakeCodec{} }

// capKinds returns the capability call sequence observed so far.
func (f *fakeSpooler) capKinds() []CapabilityKind { return f.capCalls }

// fakeRecord is the fake backend's borrowed record view.
type fakeRecord struct {
	sp *fakeSpooler
	p  *fakePrinter
}

func (r *fakeRecord) Name() string        { return r.p.name }
func (r *fakeRecord) SystemName() string  { return r.p.name }
func (r *fakeRecord) DriverModel() string { return r.p.driver }
func (r *fakeRecord) Location() string    { return r.p.location }
func (r *fakeRecord) PortName() string    { return r.p.port }
func (r *fakeRecord) Processor() string   { return r.p.processor }
func (r *fakeRecord) Description() string { return r.p.comment }
func (r *fakeRecord) DataType() string    { return r.p.datatype }
func (r *fakeRecord) State() uint32       { return r.p.status }
func (r *fakeRecord) URI() string         { return "" }
func (r *fakeRecord) IsShared() bool      { return r.p.shared }

func (r *fakeRecord) IsDefault() bool {
	name, err := defaultIdentifier(r.sp)
	return err == nil && name != "" && name == r.p.name
}

func (r *fakeRecord) Capabilities() (Capabilities, error) {
	return probeCapabilities(r.sp, r.p.name, r.p.port)
}

func (r *fakeRecord) BinCount() int {
	caps, err := r.Capabilities()
	if err != nil {
		return 0
	}
	return caps.BinCount
}

func (r *fakeRecord) BinNames() []string {
	caps, err := r.Capabilities()
	if err != nil {
		return nil
	}
	return caps.BinNames
}
