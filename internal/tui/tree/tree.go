package tree

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingNode is returned when a lookup finds no attached node. Callers
// treat it as a broken precondition, not as a recoverable condition.
var ErrMissingNode = errors.New("view node not found")

type Kind string

const (
	KindRoot       Kind = "root"
	KindThreadList Kind = "thread-list"
	KindThread     Kind = "thread"
	KindHeader     Kind = "header"
	KindAction     Kind = "action"
	KindComments   Kind = "comments"
	KindControl    Kind = "control"
	KindOption     Kind = "option"
)

const (
	ClassHidden   = "hidden"
	ClassExpanded = "expanded"
	ClassReady    = "ready"
	ClassResolved = "resolved"
	ClassEmpty    = "empty"
	ClassBound    = "bound"
	ClassActive   = "active"
	ClassSelected = "selected"
	ClassLoading  = "loading"
)

const (
	AttrThreadID    = "data-thread-id"
	AttrAction      = "data-action"
	AttrTitleAction = "data-title-action"
	AttrValue       = "value"
)

const (
	ControlError             = "error"
	ControlEmpty             = "empty"
	ControlTotals            = "totals"
	ControlFilterByUsers     = "filterByUsers"
	ControlFilterByProcesses = "filterByProcesses"
	ControlFilterByState     = "filterByState"
	ControlFilterByMyThreads = "filterByMyThreads"
	ControlSortBy            = "sortThreadsBy"
	ControlSortReversed      = "sortThreadsReversed"
)

var standardControls = []string{
	ControlError,
	ControlEmpty,
	ControlTotals,
	ControlFilterByUsers,
	ControlFilterByProcesses,
	ControlFilterByState,
	ControlFilterByMyThreads,
	ControlSortBy,
	ControlSortReversed,
}

const threadListID = "threads-list"

// Node is an addressable, mutable region of the view.
type Node interface {
	ID() string
	Kind() Kind
	Attr(name string) string
	SetAttr(name, value string)
	HasClass(name string) bool
	ToggleClass(name string, on bool)
	Content() string
	SetContent(markup string)
	Parent() Node
	Children() []Node
	// ReplaceChildren and Append move nodes by identity: a node that is
	// already attached elsewhere is detached first, never copied.
	ReplaceChildren(children ...Node)
	Append(children ...Node)
}

// ViewTree looks up view regions. Every lookup fails with ErrMissingNode when
// the region has not been built.
type ViewTree interface {
	Root() (Node, error)
	ThreadList() (Node, error)
	Thread(threadID int64) (Node, error)
	Comments(threadID int64) (Node, error)
	Control(name string) (Node, error)
	NewNode(kind Kind, id string) Node
}

func ThreadNodeID(threadID int64) string {
	return "thread-" + strconv.FormatInt(threadID, 10)
}

func CommentsNodeID(threadID int64) string {
	return "comments-for-thread-" + strconv.FormatInt(threadID, 10)
}

// ThreadIDOf reads the thread id attribute of a node.
func ThreadIDOf(n Node) (int64, bool) {
	raw := n.Attr(AttrThreadID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FindChild returns the first direct child matching fn.
func FindChild(n Node, fn func(Node) bool) Node {
	for _, child := range n.Children() {
		if fn(child) {
			return child
		}
	}
	return nil
}

// Walk visits n and its descendants depth first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	for _, child := range n.Children() {
		Walk(child, fn)
	}
}

// Tree is the in-memory ViewTree used by the terminal program and tests.
type Tree struct {
	root *Element
	byID map[string]*Element
}

// New builds the standard layout: a root holding the thread list and every
// named control.
func New() *Tree {
	t := NewBare()
	list := t.NewNode(KindThreadList, threadListID)
	children := []Node{list}
	for _, name := range standardControls {
		children = append(children, t.NewNode(KindControl, name))
	}
	t.root.Append(children...)
	return t
}

// NewBare builds a tree that has only a root node.
func NewBare() *Tree {
	t := &Tree{byID: make(map[string]*Element)}
	t.root = t.NewNode(KindRoot, "root").(*Element)
	return t
}

func (t *Tree) NewNode(kind Kind, id string) Node {
	e := &Element{
		id:      id,
		kind:    kind,
		attrs:   make(map[string]string),
		classes: make(map[string]bool),
		tree:    t,
	}
	if id != "" {
		t.byID[id] = e
	}
	return e
}

func (t *Tree) Root() (Node, error) {
	return t.root, nil
}

func (t *Tree) ThreadList() (Node, error) {
	return t.lookup(threadListID)
}

func (t *Tree) Thread(threadID int64) (Node, error) {
	return t.lookup(ThreadNodeID(threadID))
}

func (t *Tree) Comments(threadID int64) (Node, error) {
	return t.lookup(CommentsNodeID(threadID))
}

func (t *Tree) Control(name string) (Node, error) {
	return t.lookup(name)
}

func (t *Tree) lookup(id string) (Node, error) {
	if e, ok := t.byID[id]; ok && e.attachedTo(t.root) {
		return e, nil
	}
	// The index keeps the most recently created node per id; fall back to a
	// walk when that node was never attached.
	var found *Element
	t.root.walk(func(e *Element) bool {
		if e.id == id {
			found = e
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingNode, id)
	}
	t.byID[id] = found
	return found, nil
}

// Element is the Tree's Node implementation.
type Element struct {
	id       string
	kind     Kind
	attrs    map[string]string
	classes  map[string]bool
	content  string
	parent   *Element
	children []*Element
	tree     *Tree
}

func (e *Element) ID() string { return e.id }

func (e *Element) Kind() Kind { return e.kind }

func (e *Element) Attr(name string) string { return e.attrs[name] }

func (e *Element) SetAttr(name, value string) { e.attrs[name] = value }

func (e *Element) HasClass(name string) bool { return e.classes[name] }

func (e *Element) ToggleClass(name string, on bool) {
	if on {
		e.classes[name] = true
		return
	}
	delete(e.classes, name)
}

func (e *Element) Content() string { return e.content }

func (e *Element) SetContent(markup string) { e.content = markup }

func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

func (e *Element) ReplaceChildren(children ...Node) {
	next := make([]*Element, 0, len(children))
	for _, n := range children {
		next = append(next, mustElement(n))
	}
	for _, old := range e.children {
		old.parent = nil
	}
	for _, c := range next {
		if c.parent != nil && c.parent != e {
			c.parent.removeChild(c)
		}
		c.parent = e
	}
	e.children = next
}

func (e *Element) Append(children ...Node) {
	for _, n := range children {
		c := mustElement(n)
		if c.parent != nil {
			c.parent.removeChild(c)
		}
		c.parent = e
		e.children = append(e.children, c)
	}
}

func (e *Element) removeChild(c *Element) {
	for i, existing := range e.children {
		if existing == c {
			e.children = append(e.children[:i], e.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

func (e *Element) attachedTo(root *Element) bool {
	for n := e; n != nil; n = n.parent {
		if n == root {
			return true
		}
	}
	return false
}

func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func mustElement(n Node) *Element {
	e, ok := n.(*Element)
	if !ok {
		panic(fmt.Sprintf("tree: foreign node %T", n))
	}
	return e
}
