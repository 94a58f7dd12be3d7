// Package graph discovers relationships between form fields across
// submitted sessions: co-occurrence counts, observed ordering, and named
// value dependencies. The graph is append-only; forgetting is the external
// persistence collaborator's concern.
package graph

import (
	"sort"
	"strings"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// Node is one field in the relationship graph.
type Node struct {
	FieldName    string          `json:"fieldName"`
	InferredType form.FieldKind  `json:"inferredType,omitempty"`
	Connected    map[string]bool `json:"connected"`
}

// Edge is a directed relation between two fields. Data carries the relation
// counters keyed by relation name.
type Edge struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Data map[string]int `json:"data,omitempty"`
}

// Relations is the result of a Discover pass over session history.
type Relations struct {
	Cooccurrence      map[string]int `json:"cooccurrence"`
	Temporal          map[string]int `json:"temporal"`
	ValueDependencies map[string]int `json:"valueDependencies"`
}

// Graph holds nodes and edges keyed for idempotent insertion.
type Graph struct {
	nodes map[string]*Node
	edges map[string]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// AddNode ensures a node exists for the field. Re-adding is a no-op that
// preserves existing connections; a non-generic kind refines an earlier
// generic inference.
func (g *Graph) AddNode(fieldName string, kind form.FieldKind) *Node {
	if node, ok := g.nodes[fieldName]; ok {
		if node.InferredType == form.FieldKindGeneric && kind != "" {
			node.InferredType = kind
		}
		return node
	}
	node := &Node{
		FieldName:    fieldName,
		InferredType: kind,
		Connected:    make(map[string]bool),
	}
	g.nodes[fieldName] = node
	return node
}

// AddEdge inserts a directed edge at most once per ordered pair. Re-adding
// is a no-op for the edge table but still ensures both endpoint nodes exist
// and are marked connected.
func (g *Graph) AddEdge(from, to string) *Edge {
	fromNode := g.AddNode(from, form.FieldKindGeneric)
	toNode := g.AddNode(to, form.FieldKindGeneric)
	fromNode.Connected[to] = true
	toNode.Connected[from] = true

	key := from + "->" + to
	if edge, ok := g.edges[key]; ok {
		return edge
	}
	edge := &Edge{From: from, To: to, Data: make(map[string]int)}
	g.edges[key] = edge
	return edge
}

// Node returns the node for a field name, or nil when absent.
func (g *Graph) Node(fieldName string) *Node {
	return g.nodes[fieldName]
}

// Nodes returns the node names in sorted order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EdgeCount reports how many distinct ordered pairs have been inserted.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Session is one submitted form plus the order its fields were recorded in.
// When Order is empty the field names are taken in sorted order, since Go
// maps do not preserve insertion order.
type Session struct {
	Record form.SubmissionRecord
	Order  []string
}

// Discover runs the three relation miners over the session history and
// updates the graph's node/edge tables along the way.
func (g *Graph) Discover(sessions []Session) Relations {
	relations := Relations{
		Cooccurrence:      make(map[string]int),
		Temporal:          make(map[string]int),
		ValueDependencies: make(map[string]int),
	}
	for _, session := range sessions {
		names := recordedOrder(session)
		g.cooccurrence(names, relations.Cooccurrence)
		g.temporal(names, relations.Temporal)
		valueDependencies(session.Record, relations.ValueDependencies)
	}
	return relations
}

// cooccurrence increments a directed counter for every ordered pair of
// distinct fields in the session; the pair loop is symmetric so "A-B" and
// "B-A" both move.
func (g *Graph) cooccurrence(names []string, counters map[string]int) {
	for _, a := range names {
		for _, b := range names {
			if a == b {
				continue
			}
			counters[a+"-"+b]++
			g.AddEdge(a, b).Data["cooccurrence"]++
		}
	}
}

// temporal increments "A->B" for consecutive fields in recorded order. The
// recorded order is whatever order the session was captured in, not a
// guaranteed chronological fill order.
func (g *Graph) temporal(names []string, counters map[string]int) {
	for i := 0; i+1 < len(names); i++ {
		key := names[i] + "->" + names[i+1]
		counters[key]++
		g.AddEdge(names[i], names[i+1]).Data["temporal"]++
	}
}

// valueDependencies runs the named pattern checks. Each check is a condition
// over two field values that increments a named counter; extend by adding
// more checks of the same shape.
func valueDependencies(session form.SubmissionRecord, counters map[string]int) {
	email, hasEmail := session["email"]
	username, hasUsername := session["username"]
	if hasEmail && hasUsername {
		if local, _, found := strings.Cut(email, "@"); found && local == username {
			counters["email-contains-username"]++
		}
	}
}

// recordedOrder returns the session's field names, preferring the captured
// order and falling back to sorted names. Names in Order but absent from the
// record are skipped.
func recordedOrder(session Session) []string {
	if len(session.Order) > 0 {
		names := make([]string, 0, len(session.Order))
		for _, name := range session.Order {
			if _, ok := session.Record[name]; ok {
				names = append(names, name)
			}
		}
		return names
	}
	names := make([]string, 0, len(session.Record))
	for name := range session.Record {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Restore rebuilds the graph from exported node/edge lists.
func (g *Graph) Restore(nodes []Node, edges []Edge) {
	for _, node := range nodes {
		restored := g.AddNode(node.FieldName, node.InferredType)
		for name := range node.Connected {
			restored.Connected[name] = true
		}
	}
	for _, edge := range edges {
		restored := g.AddEdge(edge.From, edge.To)
		for relation, count := range edge.Data {
			restored.Data[relation] = count
		}
	}
}

// Export returns the graph's nodes and edges as plain values for the
// persistence collaborator.
func (g *Graph) Export() ([]Node, []Edge) {
	nodes := make([]Node, 0, len(g.nodes))
	for _, name := range g.Nodes() {
		nodes = append(nodes, *g.nodes[name])
	}
	keys := make([]string, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	edges := make([]Edge, 0, len(keys))
	for _, key := range keys {
		edges = append(edges, *g.edges[key])
	}
	return nodes, edges
}
