package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartAddIncrementsExistingLine(t *testing.T) {
	c := New("u1")
	assert.NoError(t, c.Add(1, 1))
	assert.NoError(t, c.Add(2, 2))
	assert.NoError(t, c.Add(1, 3))

	assert.Equal(t, []Line{{ProductID: 1, Quantity: 4}, {ProductID: 2, Quantity: 2}}, c.Lines)
	assert.Equal(t, 6, c.ItemCount())
	assert.ErrorIs(t, c.Add(1, 0), ErrInvalidQuantity)
}

func TestCartSetAndRemove(t *testing.T) {
	c := New("u1")
	c.Set(3, 2)
	c.Set(4, 1)
	c.Set(3, 5)
	assert.Equal(t, []Line{{ProductID: 3, Quantity: 5}, {ProductID: 4, Quantity: 1}}, c.Lines)

	c.Set(3, 0)
	assert.Equal(t, []Line{{ProductID: 4, Quantity: 1}}, c.Lines)

	c.Remove(4)
	assert.True(t, c.Empty())
}
