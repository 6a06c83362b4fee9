package finance

import (
	"sort"

	"tendo-schools/app/models"
)

// ClassOrder is a school's ordered class list. The sequence defines range
// membership for fee rules: "P1 to P4" covers every class positioned between
// the two, inclusive.
type ClassOrder struct {
	names []string
	index map[string]int
}

// NewClassOrder builds a ClassOrder from a school's class levels, sorted by
// position. Inactive levels are skipped.
func NewClassOrder(levels []*models.ClassLevel) *ClassOrder {
	sorted := make([]*models.ClassLevel, 0, len(levels))
	for _, l := range levels {
		if l.IsActive {
			sorted = append(sorted, l)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	o := &ClassOrder{index: make(map[string]int, len(sorted))}
	for i, l := range sorted {
		o.names = append(o.names, l.Name)
		o.index[l.Name] = i
	}
	return o
}

// Index returns the position of name in the ordered list, or -1 if the class
// is unknown. Unknown classes never match any rule and so owe 0.
func (o *ClassOrder) Index(name string) int {
	if i, ok := o.index[name]; ok {
		return i
	}
	return -1
}

// Names returns the class names in order.
func (o *ClassOrder) Names() []string {
	return o.names
}

// Len returns the number of classes in the order.
func (o *ClassOrder) Len() int {
	return len(o.names)
}
