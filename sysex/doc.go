// Package sysex converts firmware images to and from the Novation SysEx
// transport used to update FLkey and Launchkey MK3 controllers.
//
// # Wire Format
//
// Every message uses the same envelope:
//
//	[0xF0][0x00][0x20 0x29][TYPE_H TYPE_L][BODY...][0xF7]
//
// Where TYPE is one of:
//   - 0x00 0x71 = Start    (manufacturer, model, build)
//   - 0x00 0x7C = Metadata (reserved, build, size nibbles, crc nibbles)
//   - 0x00 0x72 = Data     (one 7-bit packed 32-byte chunk)
//   - 0x00 0x73 = End      (one 7-bit packed 32-byte chunk)
//
// A firmware stream is Start, Metadata, Data for file chunks 1..N-1, and
// finally End, which carries file chunk 0.
//
// # Encoding
//
//	stream, err := sysex.Encode(firmware, "flkey", 52)
//
// # Decoding
//
//	fw, err := sysex.Decode(stream, sysex.WithStrictChecksum(true))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("build %s, %d bytes\n", fw.Build, len(fw.Data))
//
// Messages can also be read one at a time with NewReader, or listed with
// Inspect.
package sysex
