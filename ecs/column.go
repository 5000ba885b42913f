package ecs

const (
	columnBlockSize = 64
)

// column is a type-erased, row-addressed store for one component type.
// Row allocation is owned by the archetype; a column only holds values.
type column interface {
	Set(row int, item any)
	Get(row int) any
	Clear(row int)
	Cap() int
}

// typedColumn stores components of type T in fixed-size blocks. Blocks are
// held by pointer so growing the column never moves existing values.
type typedColumn[T any] struct {
	blocks []*[columnBlockSize]T
}

func (c *typedColumn[T]) ensure(row int) {
	for row >= len(c.blocks)*columnBlockSize {
		c.blocks = append(c.blocks, new([columnBlockSize]T))
	}
}

// Set stores item at row. item may be a T, a *T, or nil for the zero value.
func (c *typedColumn[T]) Set(row int, item any) {
	c.ensure(row)
	slot := &c.blocks[row/columnBlockSize][row%columnBlockSize]

	switch v := item.(type) {
	case *T:
		if v != nil {
			*slot = *v
			return
		}
	case T:
		*slot = v
		return
	}
	var zero T
	*slot = zero
}

// Get returns a pointer to the value at row, or nil outside the allocated range
func (c *typedColumn[T]) Get(row int) any {
	if p := c.at(row); p != nil {
		return p
	}
	return nil
}

func (c *typedColumn[T]) at(row int) *T {
	if row < 0 || row >= len(c.blocks)*columnBlockSize {
		return nil
	}
	return &c.blocks[row/columnBlockSize][row%columnBlockSize]
}

// Clear zeroes the value at row
func (c *typedColumn[T]) Clear(row int) {
	if p := c.at(row); p != nil {
		var zero T
		*p = zero
	}
}

func (c *typedColumn[T]) Cap() int {
	return len(c.blocks) * columnBlockSize
}
