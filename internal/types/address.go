/*

This file contains the identity types shared by every ledger component.

*/

package types

// Address identifies an account or a deployed component instance. Addresses are
// opaque; nothing in the system derives information from their content.
type Address string

// ZeroAddress is the burn target. Tokens transferred here are considered
// destroyed for supply-accounting purposes.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

func (a Address) IsZero() bool {
	return a == ZeroAddress || a == ""
}
