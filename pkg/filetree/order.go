package filetree

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Order sorts sibling nodes: folders first, then names by locale collation.
// Names the collator considers equal fall back to byte order so the result
// is total and stable across runs.
//
// A collate.Collator is not safe for concurrent use, so Order keeps a pool.
type Order struct {
	tag  language.Tag
	pool sync.Pool
}

// NewOrder returns an Order collating names for the given language.
func NewOrder(tag language.Tag) *Order {
	o := &Order{tag: tag}
	o.pool.New = func() any { return collate.New(tag) }
	return o
}

// ParseOrder builds an Order from a BCP 47 tag such as "en" or "de-DE".
// An empty tag selects the root collation.
func ParseOrder(tag string) (*Order, error) {
	if tag == "" {
		return NewOrder(language.Und), nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return nil, err
	}
	return NewOrder(t), nil
}

// Tag returns the collation language.
func (o *Order) Tag() language.Tag {
	return o.tag
}

// Compare orders a before b when it returns a negative number.
func (o *Order) Compare(a, b *Node) int {
	c := o.pool.Get().(*collate.Collator)
	defer o.pool.Put(c)
	return compare(c, a, b)
}

// Sort orders nodes in place. It does not recurse into children.
func (o *Order) Sort(nodes []*Node) {
	c := o.pool.Get().(*collate.Collator)
	defer o.pool.Put(c)
	slices.SortStableFunc(nodes, func(a, b *Node) int { return compare(c, a, b) })
}

// IsSorted reports whether nodes, and all their descendants, are in order.
func (o *Order) IsSorted(nodes []*Node) bool {
	c := o.pool.Get().(*collate.Collator)
	defer o.pool.Put(c)
	return isSorted(c, nodes)
}

func isSorted(c *collate.Collator, nodes []*Node) bool {
	for i := 1; i < len(nodes); i++ {
		if compare(c, nodes[i-1], nodes[i]) > 0 {
			return false
		}
	}
	for _, n := range nodes {
		if n.IsFolder() && !isSorted(c, n.Children) {
			return false
		}
	}
	return true
}

func compare(c *collate.Collator, a, b *Node) int {
	if a.IsFolder() != b.IsFolder() {
		if a.IsFolder() {
			return -1
		}
		return 1
	}
	if r := c.CompareString(a.Name, b.Name); r != 0 {
		return r
	}
	return strings.Compare(a.Name, b.Name)
}
