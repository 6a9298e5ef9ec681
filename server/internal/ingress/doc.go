// Package ingress implements the bounded, lossy conduit between the gRPC
// receive path and the aggregator.
//
// Publish never blocks: when the queue is full the oldest buffered item is
// dropped so the newest report always gets in. Drain hands the aggregator
// everything buffered so far, in receipt order, without waiting.
package ingress
