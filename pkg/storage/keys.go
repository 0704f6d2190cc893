package storage

import "fmt"

// Key schema for Pebble storage:
//
//	order:<orderID>                     → Order (JSON)
//	quote:<orderID>:<seq>:<venue>       → Quote (JSON)
//
// Quote sequence numbers are zero-padded so a prefix scan returns the audit
// trail in insertion order.
const (
	prefixOrder = "order:"
	prefixQuote = "quote:"
)

func orderKey(orderID string) []byte {
	return []byte(prefixOrder + orderID)
}

func quoteKey(orderID string, seq uint64, venue string) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixQuote, orderID, seq, venue))
}

// quotePrefix returns the prefix for all quotes saved against an order.
func quotePrefix(orderID string) []byte {
	return []byte(fmt.Sprintf("%s%s:", prefixQuote, orderID))
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
