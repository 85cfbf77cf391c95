package filingset

import "errors"

var errDuplicateMatch = errors.New("duplicate file for a singleton filing slot")
