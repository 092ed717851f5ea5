package graph

import "errors"

var (
	// ErrUnknownNode is returned for sockets pointing outside the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownOutput is returned for outputs a node does not have.
	ErrUnknownOutput = errors.New("unknown output")
	// ErrEvalCycle is returned when evaluation revisits a node it is computing.
	ErrEvalCycle = errors.New("cycle during evaluation")
)
