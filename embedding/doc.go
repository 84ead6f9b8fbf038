// Package embedding turns chunks into vectors in batches.
//
// A Runner splits chunks into fixed-size batches, embeds batches
// concurrently with retry, exponential backoff and optional rate limiting,
// normalizes the vectors to unit length, and hands the results to a sink
// in the original chunk order. ProgressTracker reports throughput for long
// runs.
package embedding
