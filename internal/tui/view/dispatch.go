package view

import (
	"fmt"

	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

type Action string

const (
	ActionExpandThread Action = "expand-thread"
	ActionTitleClick   Action = "title-action-click"
)

type TitleAction string

const (
	TitleActionAddComment TitleAction = "add-comment"
	TitleActionResolve    TitleAction = "resolve"
)

// Event is what a handler receives for a dispatched action.
type Event struct {
	Action      Action
	ThreadID    int64
	TitleAction TitleAction
	Target      tuitree.Node
}

type Handler func(Event) error

// Handlers maps action names to their handlers.
type Handlers map[Action]Handler

// Start registers the dispatch table and binds every action node already in
// the tree. Nodes created later are bound by RenderData.
func (r *Renderer) Start(handlers Handlers) error {
	r.handlers = make(Handlers, len(handlers))
	for action, h := range handlers {
		r.handlers[action] = h
	}
	root, err := r.tree.Root()
	if err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}
	r.bindTree(root)
	return nil
}

func (r *Renderer) bindTree(n tuitree.Node) {
	tuitree.Walk(n, func(node tuitree.Node) {
		action := Action(node.Attr(tuitree.AttrAction))
		if action == "" {
			return
		}
		_, ok := r.handlers[action]
		node.ToggleClass(tuitree.ClassBound, ok)
	})
}

// Dispatch delivers an activation of target to the handler of the nearest
// bound ancestor carrying an action marker. It reports whether a handler ran.
func (r *Renderer) Dispatch(target tuitree.Node) (bool, error) {
	for n := target; n != nil; n = n.Parent() {
		action := Action(n.Attr(tuitree.AttrAction))
		if action == "" || !n.HasClass(tuitree.ClassBound) {
			continue
		}
		h, ok := r.handlers[action]
		if !ok {
			continue
		}
		id, _ := tuitree.ThreadIDOf(n)
		return true, h(Event{
			Action:      action,
			ThreadID:    id,
			TitleAction: TitleAction(n.Attr(tuitree.AttrTitleAction)),
			Target:      target,
		})
	}
	return false, nil
}

// ThreadAction finds the action node of a thread header: the header itself for
// ActionExpandThread, or the title action node otherwise.
func (r *Renderer) ThreadAction(id int64, action Action, title TitleAction) (tuitree.Node, error) {
	node, err := r.tree.Thread(id)
	if err != nil {
		return nil, fmt.Errorf("thread action: %w", err)
	}
	header := tuitree.FindChild(node, func(n tuitree.Node) bool { return n.Kind() == tuitree.KindHeader })
	if header == nil {
		return nil, fmt.Errorf("thread action of %d: %w", id, tuitree.ErrMissingNode)
	}
	if action == ActionExpandThread {
		return header, nil
	}
	target := tuitree.FindChild(header, func(n tuitree.Node) bool {
		return TitleAction(n.Attr(tuitree.AttrTitleAction)) == title
	})
	if target == nil {
		return nil, fmt.Errorf("thread %d title action %s: %w", id, title, tuitree.ErrMissingNode)
	}
	return target, nil
}
