// Package codec orchestrates the usc pipeline: lines flow through the
// canonicalizer and template miner, windows of rows become DATA packets,
// the frozen bank becomes the one-time DICT packet, and the outer framer
// produces the final container.
//
// An Encoder owns all per-session state (template bank, MTF recency list,
// slot statistics); sessions are single-goroutine and never shared.
// Independent streams encode in parallel by giving each its own Encoder.
// The Decoder reconstructs its own bank from the DICT packet and replays
// packets strictly in emission order.
//
//	enc, _ := codec.NewEncoder(codec.WithMode(format.ModeCold))
//	for _, line := range lines {
//	    enc.AddLine(line)
//	}
//	container, stats, _ := enc.Finish()
//
//	decoded, _ := codec.Decode(container)
package codec
