// Command perpffi builds the C-callable risk library:
//
//	go build -buildmode=c-shared -o libperpffi.so ./cmd/perpffi
//
// Every fallible export writes an encoded result into the caller's out
// buffer and returns its tag, or -1 when out is too small.
//
// Plain accessors such as order_is_limit_order or perp_market_get_open_interest
// also return a result, since their record bytes are validated before use.
// The only error they carry is structural: CouldNotLoadAccountData (also
// for a null record), AccountDiscriminatorMismatch, MisalignedAccountData
// or UnsupportedHostEndianness.
package main

var lib = newLibrary(DefaultConfig())

func main() {}
