// Package protocol encodes commands for ELK-BLEDOM LED strip controllers into
// the 9-byte frames the device accepts on its write characteristic.
//
// Every frame has the same shape:
//
//	offset 0     start marker, always 0x7E
//	offset 1     length/type code
//	offset 2     opcode
//	offset 3..7  payload, unused bytes are 0xFF
//	offset 8     end marker, always 0xEF
//
// The encoder holds no state and may be used from any number of goroutines.
// Only SyncTime reads anything from the outside world (the wall clock).
//
// # Day numbering
//
// The two day fields disagree and the device expects both as they are. The
// SyncTime day byte counts from Sunday = 0 to Saturday = 6. The timing weekday
// mask is Monday first: bit 0 is Monday, bit 6 is Sunday.
//
// # Device quirks
//
// Two parts of the wire format look wrong but are what the controller expects:
// the power frame repeats the on/off flag at offsets 3 and 5, and the timing
// frame uses 0x00 for an ON time and 0x01 for an OFF time.
package protocol
