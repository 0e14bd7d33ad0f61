package nncache

import (
	"testing"

	"github.com/matryer/is"
)

func TestInsertGet(t *testing.T) {
	is := is.New(t)
	c := New(2)
	c.Insert(1, Entry{Value: 0.5})
	v, ok := c.Get(1)
	is.True(ok)
	is.Equal(v.Value, float32(0.5))
}

func TestLRUEviction(t *testing.T) {
	is := is.New(t)
	c := New(2)
	c.Insert(1, Entry{Value: 0.1})
	c.Insert(2, Entry{Value: 0.2})
	// touch 1 so 2 becomes the least recently used
	c.Get(1)
	c.Insert(3, Entry{Value: 0.3})

	is.True(c.Contains(1))
	is.True(!c.Contains(2))
	is.True(c.Contains(3))
}

func TestShrinkCapacityEvicts(t *testing.T) {
	is := is.New(t)
	c := New(4)
	c.Insert(1, Entry{})
	c.Insert(2, Entry{})
	c.Insert(3, Entry{})
	c.SetCapacity(1)
	is.Equal(c.Size(), 1)
}

func TestHashfull(t *testing.T) {
	is := is.New(t)
	c := New(10)
	for i := uint64(0); i < 5; i++ {
		c.Insert(i, Entry{})
	}
	is.Equal(c.Hashfull(), 500)
}

func TestZeroCapacityNeverCaches(t *testing.T) {
	is := is.New(t)
	c := New(0)
	c.Insert(1, Entry{Value: 1})
	_, ok := c.Get(1)
	is.True(!ok)
}
