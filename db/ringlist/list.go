// Package ringlist chains records into persisted circular doubly-linked
// lists.
//
// A list is anchored by one record-pointer slot holding its first node, or 0
// when empty. Each node is a 12-byte record:
//
//	+0  item  record the node stands for
//	+4  prev  previous node
//	+8  next  next node
//
// The last node's next is the head and the head's prev is the last node, so
// appending is a splice in front of the head. The list owns its nodes, never
// the items.
package ringlist

import (
	"errors"
	"fmt"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/db/alloc"
	"github.com/joshuapare/symdb/internal/format"
)

// ErrCorruptList indicates links that disagree or a ring that never returns
// to its head.
var ErrCorruptList = errors.New("ringlist: corrupt list")

// ChildrenFunc returns the anchor slot of item's own member list, or db.Null
// when the item has none.
type ChildrenFunc func(item db.RecPtr) (db.RecPtr, error)

// Visitor receives the items of a list in order. Visit returns true to
// descend into the item's children before Leave is called for it.
type Visitor interface {
	Visit(item db.RecPtr) (bool, error)
	Leave(item db.RecPtr) error
}

// VisitFunc adapts a function to a Visitor that never needs Leave.
type VisitFunc func(item db.RecPtr) (bool, error)

func (f VisitFunc) Visit(item db.RecPtr) (bool, error) { return f(item) }
func (VisitFunc) Leave(db.RecPtr) error                { return nil }

// List is a ring anchored at a slot in some record.
type List struct {
	d        *db.Database
	a        alloc.Allocator
	anchor   db.RecPtr
	children ChildrenFunc
}

// New returns the list anchored at anchor.
func New(d *db.Database, a alloc.Allocator, anchor db.RecPtr) *List {
	return &List{d: d, a: a, anchor: anchor}
}

// WithChildren sets how Accept finds an item's own list.
func (l *List) WithChildren(fn ChildrenFunc) *List {
	l.children = fn
	return l
}

// Anchor returns the slot holding the head pointer.
func (l *List) Anchor() db.RecPtr { return l.anchor }

// Head returns the first node, or db.Null for an empty list.
func (l *List) Head() (db.RecPtr, error) {
	return l.d.RecPtr(l.anchor)
}

// Item returns the item node stands for.
func (l *List) Item(node db.RecPtr) (db.RecPtr, error) {
	return l.d.RecPtr(node + format.NodeItemOffset)
}

// Next returns the node after node.
func (l *List) Next(node db.RecPtr) (db.RecPtr, error) {
	return l.d.RecPtr(node + format.NodeNextOffset)
}

// Prev returns the node before node.
func (l *List) Prev(node db.RecPtr) (db.RecPtr, error) {
	return l.d.RecPtr(node + format.NodePrevOffset)
}

// AddMember appends item at the tail of the ring and returns the new node.
func (l *List) AddMember(item db.RecPtr) (db.RecPtr, error) {
	head, err := l.Head()
	if err != nil {
		return db.Null, err
	}
	node, err := l.a.Malloc(format.NodeRecordSize)
	if err != nil {
		return db.Null, err
	}
	if err := l.d.PutRecPtr(node+format.NodeItemOffset, item); err != nil {
		return db.Null, err
	}

	if head.IsNull() {
		if err := l.link(node, node, node); err != nil {
			return db.Null, err
		}
		return node, l.d.PutRecPtr(l.anchor, node)
	}

	tail, err := l.Prev(head)
	if err != nil {
		return db.Null, err
	}
	if err := l.link(node, tail, head); err != nil {
		return db.Null, err
	}
	if err := l.d.PutRecPtr(tail+format.NodeNextOffset, node); err != nil {
		return db.Null, err
	}
	return node, l.d.PutRecPtr(head+format.NodePrevOffset, node)
}

func (l *List) link(node, prev, next db.RecPtr) error {
	if err := l.d.PutRecPtr(node+format.NodePrevOffset, prev); err != nil {
		return err
	}
	return l.d.PutRecPtr(node+format.NodeNextOffset, next)
}

// nodes calls fn for every node from the head around the ring. It checks
// that each next link is mirrored by a prev link and bounds the walk by the
// number of nodes the file could hold.
func (l *List) nodes(fn func(node db.RecPtr) error) error {
	head, err := l.Head()
	if err != nil || head.IsNull() {
		return err
	}
	limit := int(l.d.Size() / format.MinBlockSize)
	node := head
	for steps := 0; ; steps++ {
		if steps > limit {
			return fmt.Errorf("%w: ring at %s does not close", ErrCorruptList, l.anchor)
		}
		next, err := l.Next(node)
		if err != nil {
			return fmt.Errorf("%w: node %s: %w", ErrCorruptList, node, err)
		}
		back, err := l.Prev(next)
		if err != nil {
			return fmt.Errorf("%w: node %s: %w", ErrCorruptList, next, err)
		}
		if back != node {
			return fmt.Errorf("%w: %s.next=%s but %s.prev=%s", ErrCorruptList, node, next, next, back)
		}
		if err := fn(node); err != nil {
			return err
		}
		if next == head {
			return nil
		}
		node = next
	}
}

// Accept walks the ring from the head, handing each item to v. When Visit
// returns true and the list has a ChildrenFunc, the item's own list is walked
// before Leave is called for it.
func (l *List) Accept(v Visitor) error {
	return l.nodes(func(node db.RecPtr) error {
		item, err := l.Item(node)
		if err != nil {
			return err
		}
		descend, err := v.Visit(item)
		if err != nil {
			return err
		}
		if descend && l.children != nil {
			anchor, err := l.children(item)
			if err != nil {
				return err
			}
			if !anchor.IsNull() {
				sub := New(l.d, l.a, anchor).WithChildren(l.children)
				if err := sub.Accept(v); err != nil {
					return err
				}
			}
		}
		return v.Leave(item)
	})
}

// Items returns every item in ring order.
func (l *List) Items() ([]db.RecPtr, error) {
	var out []db.RecPtr
	err := l.nodes(func(node db.RecPtr) error {
		item, err := l.Item(node)
		out = append(out, item)
		return err
	})
	return out, err
}

// Len counts the nodes.
func (l *List) Len() (int, error) {
	n := 0
	err := l.nodes(func(db.RecPtr) error {
		n++
		return nil
	})
	return n, err
}

// errStop ends a walk early without reporting failure.
var errStop = errors.New("stop")

// ItemAt returns the item at position pos counted from the head.
func (l *List) ItemAt(pos int) (db.RecPtr, error) {
	if pos < 0 {
		return db.Null, fmt.Errorf("ringlist: position %d out of range", pos)
	}
	var found db.RecPtr
	i := 0
	err := l.nodes(func(node db.RecPtr) error {
		if i == pos {
			var err error
			if found, err = l.Item(node); err != nil {
				return err
			}
			return errStop
		}
		i++
		return nil
	})
	switch {
	case errors.Is(err, errStop):
		return found, nil
	case err != nil:
		return db.Null, err
	default:
		return db.Null, fmt.Errorf("ringlist: position %d out of range (len %d)", pos, i)
	}
}

// find returns the first node standing for item.
func (l *List) find(item db.RecPtr) (db.RecPtr, error) {
	var found db.RecPtr
	err := l.nodes(func(node db.RecPtr) error {
		it, err := l.Item(node)
		if err != nil {
			return err
		}
		if it == item {
			found = node
			return errStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return db.Null, err
	}
	return found, nil
}

// RemoveMember unlinks and frees the first node standing for item. It
// reports false when item is not a member.
func (l *List) RemoveMember(item db.RecPtr) (bool, error) {
	node, err := l.find(item)
	if err != nil || node.IsNull() {
		return false, err
	}
	next, err := l.Next(node)
	if err != nil {
		return false, err
	}
	if next == node {
		if err := l.d.PutRecPtr(l.anchor, db.Null); err != nil {
			return false, err
		}
		return true, l.a.Free(node)
	}

	prev, err := l.Prev(node)
	if err != nil {
		return false, err
	}
	if err := l.d.PutRecPtr(prev+format.NodeNextOffset, next); err != nil {
		return false, err
	}
	if err := l.d.PutRecPtr(next+format.NodePrevOffset, prev); err != nil {
		return false, err
	}
	head, err := l.Head()
	if err != nil {
		return false, err
	}
	if head == node {
		if err := l.d.PutRecPtr(l.anchor, next); err != nil {
			return false, err
		}
	}
	return true, l.a.Free(node)
}

// Delete frees every node and empties the anchor. Items are untouched.
func (l *List) Delete() error {
	var nodes []db.RecPtr
	if err := l.nodes(func(node db.RecPtr) error {
		nodes = append(nodes, node)
		return nil
	}); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := l.a.Free(n); err != nil {
			return err
		}
	}
	return l.d.PutRecPtr(l.anchor, db.Null)
}
