package mcwire

import "errors"

var (
	errExpansionChainTooLong = errors.New("mcwire: expansion chain exceeds max length")
	errExpansionListTooLong  = errors.New("mcwire: expansion chain list exceeds max length")
)
