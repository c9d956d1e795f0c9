package db

import "fmt"

// RecPtr is a record pointer: an absolute byte offset into the database
// file. Null (0) is reserved and never a live allocation.
type RecPtr uint32

// Null is the reserved null record pointer.
const Null RecPtr = 0

// IsNull reports whether p is the null pointer.
func (p RecPtr) IsNull() bool { return p == Null }

// Add returns p advanced by n bytes.
func (p RecPtr) Add(n int) RecPtr { return p + RecPtr(n) }

func (p RecPtr) String() string { return fmt.Sprintf("0x%X", uint32(p)) }
