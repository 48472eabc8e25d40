// Package batch generates a whole dataset from a config.
//
// For every stimulus, set size and target condition the orchestrator plans
// the group's displays sequentially on the stimulus's own seeded random
// source, then renders and writes them on a bounded worker pool. A group that
// cannot be planned, or whose writes fail, leaves no files behind.
package batch
