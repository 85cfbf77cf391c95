package tdnet

import "errors"

var errRetriesExhausted = errors.New("exhausted retries fetching tdnet listing page")
