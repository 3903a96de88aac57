package core

import "strconv"

// OutputNumber identifies a logical output slot (the P/E word of M62-M68)
type OutputNumber uint8

// UndefinedOutput marks "no output assigned"
const UndefinedOutput OutputNumber = 0xFF

// Defined reports whether n names a real output slot
func (n OutputNumber) Defined() bool {
	return n != UndefinedOutput
}

func (n OutputNumber) String() string {
	if !n.Defined() {
		return "undefined"
	}
	return strconv.Itoa(int(n))
}
