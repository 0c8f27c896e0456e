// Package comm models a one-way message channel between two processors. One
// producer and one consumer exchange fixed-format messages through a bounded
// FIFO channel with a drop-oldest overwrite policy, and each message carries
// an XOR checksum that the consumer side verifies on receive.
package comm
