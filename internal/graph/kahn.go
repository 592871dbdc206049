package graph

import (
	"container/list"
	"errors"
	"fmt"
	"strings"
)

// ProcessingQueue holds nodes that are ready to be emitted (in-degree 0).
type ProcessingQueue struct {
	queue *list.List
}

// NewProcessingQueue creates a new empty processing queue.
func NewProcessingQueue() *ProcessingQueue {
	return &ProcessingQueue{
		queue: list.New(),
	}
}

// InitializeQueue enqueues every zero in-degree node in insertion order.
func (g *Graph) InitializeQueue(inDegree map[string]int) *ProcessingQueue {
	pq := NewProcessingQueue()
	for _, id := range g.order {
		if inDegree[id] == 0 {
			pq.Enqueue(id)
		}
	}
	return pq
}

// Enqueue adds a node to the back of the queue.
func (pq *ProcessingQueue) Enqueue(node string) {
	pq.queue.PushBack(node)
}

// Dequeue removes and returns the node at the front of the queue.
// Returns empty string and false if queue is empty.
func (pq *ProcessingQueue) Dequeue() (string, bool) {
	if pq.queue.Len() == 0 {
		return "", false
	}
	elem := pq.queue.Front()
	pq.queue.Remove(elem)
	return elem.Value.(string), true
}

// Len returns the number of nodes in the queue.
func (pq *ProcessingQueue) Len() int {
	return pq.queue.Len()
}

// IsEmpty returns true if the queue has no nodes.
func (pq *ProcessingQueue) IsEmpty() bool {
	return pq.queue.Len() == 0
}

// CalculateInDegrees counts, for each node, the tables it references.
func (g *Graph) CalculateInDegrees() map[string]int {
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = len(g.Parents[id])
	}
	return inDegree
}

// ErrCycleDetected is returned when the dependency graph contains a cycle,
// making topological sorting impossible.
var ErrCycleDetected = errors.New("cycle detected in dependency graph")

// CycleInfo describes the nodes left over when Kahn's algorithm stalls.
type CycleInfo struct {
	TotalNodes        int
	ProcessedNodes    int
	UnprocessedNodes  []string // part of, or blocked by, a cycle
	CycleParticipants []string // subset of UnprocessedNodes that lie on a cycle
	CyclePath         []string // e.g. [A, B, C, A]
}

// CycleError reports a dependency cycle. Node ids are rendered through the
// graph's display names.
type CycleError struct {
	Info *CycleInfo
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("cycle detected in dependency graph: %d of %d tables could not be ordered",
		len(e.Info.UnprocessedNodes), e.Info.TotalNodes)

	if len(e.Info.CyclePath) > 0 {
		msg += fmt.Sprintf("\nCycle path: %s", strings.Join(e.Info.CyclePath, " -> "))
	}

	if len(e.Info.CycleParticipants) > 0 {
		msg += fmt.Sprintf("\nTables in cycle: %s", strings.Join(e.Info.CycleParticipants, ", "))
	}

	if len(e.Info.UnprocessedNodes) > len(e.Info.CycleParticipants) {
		participantSet := make(map[string]bool)
		for _, p := range e.Info.CycleParticipants {
			participantSet[p] = true
		}

		var blocked []string
		for _, u := range e.Info.UnprocessedNodes {
			if !participantSet[u] {
				blocked = append(blocked, u)
			}
		}

		if len(blocked) > 0 {
			msg += fmt.Sprintf("\nTables blocked by cycle: %s", strings.Join(blocked, ", "))
		}
	}

	return msg
}

// Unwrap lets errors.Is match ErrCycleDetected.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// DetectIncompleteProcessing runs Kahn's algorithm and describes the nodes it
// could not emit. Returns nil when the graph is acyclic.
func (g *Graph) DetectIncompleteProcessing() *CycleInfo {
	processed, _ := g.kahn()
	if len(processed) == len(g.order) {
		return nil
	}

	done := make(map[string]bool, len(processed))
	for _, id := range processed {
		done[id] = true
	}

	var unprocessed []string
	unprocessedSet := make(map[string]bool)
	for _, id := range g.order {
		if !done[id] {
			unprocessed = append(unprocessed, id)
			unprocessedSet[id] = true
		}
	}

	var participants []string
	for _, id := range unprocessed {
		if g.canReachSelf(id, unprocessedSet) {
			participants = append(participants, id)
		}
	}

	var path []string
	if len(participants) > 0 {
		path = g.FindCyclePath(participants[0], unprocessedSet)
	}

	return &CycleInfo{
		TotalNodes:        len(g.order),
		ProcessedNodes:    len(processed),
		UnprocessedNodes:  g.names(unprocessed),
		CycleParticipants: g.names(participants),
		CyclePath:         g.names(path),
	}
}

// FindCyclePath finds a cycle through start within allowedNodes. The start
// node appears at both ends of the returned path.
func (g *Graph) FindCyclePath(start string, allowedNodes map[string]bool) []string {
	visited := make(map[string]bool)
	path := []string{start}

	if g.dfsFindPath(start, start, visited, allowedNodes, &path) {
		return path
	}

	return nil
}

func (g *Graph) dfsFindPath(current, target string, visited, allowedNodes map[string]bool, path *[]string) bool {
	for _, child := range g.GetChildren(current) {
		if !allowedNodes[child] {
			continue
		}

		if child == target {
			*path = append(*path, target)
			return true
		}

		if visited[child] {
			continue
		}

		visited[child] = true
		*path = append(*path, child)

		if g.dfsFindPath(child, target, visited, allowedNodes, path) {
			return true
		}

		*path = (*path)[:len(*path)-1]
	}

	return false
}

func (g *Graph) canReachSelf(start string, allowedNodes map[string]bool) bool {
	visited := make(map[string]bool)
	return g.dfsCanReach(start, start, visited, allowedNodes, true)
}

// dfsCanReach reports whether target is reachable from current. isStart is
// true only for the initial call to avoid an immediate self-match.
func (g *Graph) dfsCanReach(current, target string, visited, allowedNodes map[string]bool, isStart bool) bool {
	if current == target && !isStart {
		return true
	}
	if visited[current] || !allowedNodes[current] {
		return false
	}

	visited[current] = true
	for _, child := range g.GetChildren(current) {
		if g.dfsCanReach(child, target, visited, allowedNodes, false) {
			return true
		}
	}

	return false
}

// kahn returns the emitted nodes and whether every node was emitted.
func (g *Graph) kahn() ([]string, bool) {
	inDegree := g.CalculateInDegrees()
	queue := g.InitializeQueue(inDegree)

	result := make([]string, 0, len(g.order))
	for !queue.IsEmpty() {
		node, _ := queue.Dequeue()
		result = append(result, node)

		for _, child := range g.GetChildren(node) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.Enqueue(child)
			}
		}
	}

	return result, len(result) == len(g.order)
}

// TopologicalSort returns node ids with every referenced table before the
// tables referencing it. Ties keep insertion order. Returns a *CycleError
// (matching ErrCycleDetected) if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	result, ok := g.kahn()
	if !ok {
		return nil, &CycleError{Info: g.DetectIncompleteProcessing()}
	}
	return result, nil
}

// CreateOrder is the order in which CREATE TABLE statements can be executed.
func (g *Graph) CreateOrder() ([]string, error) {
	return g.TopologicalSort()
}

// DropOrder is the reverse of CreateOrder.
func (g *Graph) DropOrder() ([]string, error) {
	createOrder, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	dropOrder := make([]string, len(createOrder))
	for i, table := range createOrder {
		dropOrder[len(createOrder)-1-i] = table
	}

	return dropOrder, nil
}

// Validate returns a *CycleError if the graph contains cycles, nil otherwise.
func (g *Graph) Validate() error {
	if info := g.DetectIncompleteProcessing(); info != nil {
		return &CycleError{Info: info}
	}
	return nil
}
