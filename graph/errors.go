package graph

import (
	"errors"
	"fmt"
)

// ErrUnknownNode is returned when an operation references a node name that
// was never added via AddNode.
var ErrUnknownNode = errors.New("graph: unknown node")

// ErrDuplicateNode is returned by AddNode when the given name is already
// taken.
var ErrDuplicateNode = errors.New("graph: duplicate node name")

// ErrNotCompiled is returned by Execute when Compile has not yet succeeded.
var ErrNotCompiled = errors.New("graph: not compiled")

// TypeMismatchError reports that Connect was asked to wire an output slot
// to an input slot whose DataType tags differ.
type TypeMismatchError struct {
	FromNode, FromSlot string
	ToNode, ToSlot     string
	Produced, Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("graph: type mismatch wiring %s.%s (%s) -> %s.%s (%s)",
		e.FromNode, e.FromSlot, e.Produced, e.ToNode, e.ToSlot, e.Expected)
}

// ArrayShapeMismatchError reports that a consumer's slot array mode cannot
// admit the shape a producer's slot declares.
type ArrayShapeMismatchError struct {
	FromNode, FromSlot string
	ToNode, ToSlot     string
}

func (e *ArrayShapeMismatchError) Error() string {
	return fmt.Sprintf("graph: %s.%s's array shape cannot accept %s.%s",
		e.ToNode, e.ToSlot, e.FromNode, e.FromSlot)
}

// WouldCreateCycleError is returned by Connect when adding an edge would
// make the graph non-acyclic.
type WouldCreateCycleError struct {
	FromNode, ToNode string
}

func (e *WouldCreateCycleError) Error() string {
	return fmt.Sprintf("graph: connecting %s -> %s would create a cycle", e.FromNode, e.ToNode)
}

// CycleDetectedError is returned by Compile if Kahn's algorithm cannot
// fully drain the ready queue: the remaining Nodes lie on or downstream of
// at least one cycle. Connect already rejects cycle-forming edges, so this
// is a defensive check.
type CycleDetectedError struct {
	Nodes []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("graph: cycle detected among nodes %v", e.Nodes)
}

// SlotIndexError reports an out-of-range slot index passed to Connect.
type SlotIndexError struct {
	Node  string
	Slot  int
	Bound int
}

func (e *SlotIndexError) Error() string {
	return fmt.Sprintf("graph: node %s: slot index %d out of range [0,%d)", e.Node, e.Slot, e.Bound)
}
