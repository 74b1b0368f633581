// Package memmap describes the target's address space and validates
// addresses before the protocol engine touches them.
//
// A Table is an ordered list of non-overlapping address ranges, each tagged
// with an access Kind. Lookups are a linear first-match scan. The Validator
// owns the active table and the debug override; the protocol engine
// receives one explicitly instead of consulting global state.
//
// The default table matches the static layout of the target's user-mode
// address space. Once connected, SetDataUpper can replace the first three
// entries with the live process's segment bounds read from kernel memory.
package memmap
