// Package worker contains the background runner that picks up pending
// research tasks and drives them through their lifecycle using a pluggable
// Executor for the actual research computation. It also reclaims tasks left
// in the running state by crashed workers.
package worker
