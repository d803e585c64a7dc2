package cache

// node is an element of the recency list. It carries the key so that the
// oldest entry can be dropped from the index map in O(1).
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// recency is a doubly-linked list ordered from most recent (head) to
// least recent (tail). It is not synchronized.
type recency[K comparable, V any] struct {
	head *node[K, V]
	tail *node[K, V]
	n    int
}

func (l *recency[K, V]) len() int { return l.n }

// pushFront inserts n as the most recent node.
func (l *recency[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.n++
}

// touch moves n to the front.
func (l *recency[K, V]) touch(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.remove(n)
	l.pushFront(n)
}

// remove unlinks n.
func (l *recency[K, V]) remove(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.n--
}

// back returns the least recent node, or nil.
func (l *recency[K, V]) back() *node[K, V] {
	return l.tail
}

func (l *recency[K, V]) reset() {
	l.head, l.tail, l.n = nil, nil, 0
}
