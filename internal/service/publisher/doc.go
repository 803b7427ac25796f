// Package publisher is the control-flow backbone of the pipeline. It runs
// preflight tool checks, guards against concurrent runs, drives every
// package through the check-changed/build/upload/record state machine in
// manifest order, finalizes the main template and optionally makes the
// release public. The first failure aborts the whole run; reruns re-skip
// packages whose publish records are intact.
package publisher
