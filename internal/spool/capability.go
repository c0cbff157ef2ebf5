package spool

import "encoding/binary"

// Capabilities is the structured result of a bin capability probe.
// BinNames and BinIDs are either empty or exactly BinCount long; a partial
// or failed sub-query degrades to empty lists, never a mismatched length.
type Capabilities struct {
	BinCount int      `json:"bin_count"`
	BinIDs   []uint16 `json:"bin_ids,omitempty"`
	BinNames []string `json:"bin_names,omitempty"`
}

// probeCapabilities asks the spooler for the device's paper bins in three
// sub-queries: bin count, bin id list, bin name table. The id list must
// come back with the same count as the first query or the name table
// cannot be trusted to align, so the probe short-circuits rather than
// return misaligned data. A name-table count mismatch keeps the count but
// drops the names. Capability absence is a result, not an error; the only
// errors out of here are native call failures.
func probeCapabilities(sp Spooler, device, port string) (Capabilities, error) {
	count, err := sp.QueryCapability(device, port, CapabilityBins, nil)
	if err != nil {
		return Capabilities{}, err
	}
	if count == CapabilityUnsupported || count == 0 {
		return Capabilities{}, nil
	}

	ids, err := probeBinIDs(sp, device, port, count)
	if err != nil {
		return Capabilities{}, err
	}
	if ids == nil {
		// Id count disagreed with the bin count; bins exist but
		// neither ids nor names are reliable.
		return Capabilities{BinCount: count}, nil
	}

	names, err := probeBinNames(sp, device, port, count)
	if err != nil {
		return Capabilities{}, err
	}

	return Capabilities{BinCount: count, BinIDs: ids, BinNames: names}, nil
}

func probeBinIDs(sp Spooler, device, port string, count int) ([]uint16, error) {
	buf, err := newBuffer(count*BinIDSize, BinIDSize)
	if err != nil {
		return nil, err
	}
	defer buf.Free()

	got, err := sp.QueryCapability(device, port, CapabilityBins, buf.Bytes())
	if err != nil {
		return nil, err
	}
	if got != count {
		return nil, nil
	}

	ids := make([]uint16, count)
	for i := 0; i < count; i++ {
		ids[i] = binary.LittleEndian.Uint16(buf.Slot(i))
	}
	return ids, nil
}

func probeBinNames(sp Spooler, device, port string, count int) ([]string, error) {
	codec := sp.Codec()
	stride := BinNameSlotLen * codec.UnitSize()

	buf, err := newBuffer(count*stride, stride)
	if err != nil {
		return nil, err
	}
	defer buf.Free()

	got, err := sp.QueryCapability(device, port, CapabilityBinNames, buf.Bytes())
	if err != nil {
		return nil, err
	}
	if got != count {
		return nil, nil
	}

	return decodeSlots(buf, count, codec), nil
}
