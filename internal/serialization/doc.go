// Package serialization implements the native .vxf checkpoint format for
// Voxflow model parameters.
//
// A .vxf file is a fixed 64-byte header followed by a JSON header and the
// tensor payload:
//
//	0x00  4 bytes  magic "VOXF"
//	0x04  4 bytes  format version (uint32 LE)
//	0x08  4 bytes  flags (uint32 LE)
//	0x0C  4 bytes  reserved
//	0x10  8 bytes  JSON header size (uint64 LE)
//	0x18  8 bytes  payload size (uint64 LE)
//	0x20 32 bytes  SHA-256 of the payload
//	0x40           JSON header, then padding to a 64-byte boundary
//	               tensor payload, tensors packed in name order
//
// The JSON header records the library version, creation time, free-form
// metadata, and per-tensor name, dtype, shape, offset, and size. Offsets
// are relative to the payload start. The checksum covers the payload only,
// so metadata edits are detectable by the size fields alone.
//
// Flag bit 0 marks a float16 payload: float32 tensors are narrowed to two
// bytes per element on write and widened back to float32 on read. All
// other dtypes are stored verbatim.
//
// Example usage:
//
//	writer, err := serialization.NewWriter("model.vxf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := writer.WriteStateDict(stateDict, "FlowChain", nil); err != nil {
//	    log.Fatal(err)
//	}
//	writer.Close()
//
//	reader, err := serialization.NewReader("model.vxf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stateDict, err := reader.ReadStateDict(tensor.CPU)
//	reader.Close()
//
// For large checkpoints, MmapReader maps the file and exposes zero-copy
// views of individual tensors.
package serialization
