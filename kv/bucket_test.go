package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memStore map[string][]byte

var errNotFound = errors.New("not found")

func (m memStore) Get(key []byte) ([]byte, error) {
	if v, ok := m[string(key)]; ok {
		return v, nil
	}
	return nil, errNotFound
}
func (m memStore) Has(key []byte) (bool, error) {
	_, ok := m[string(key)]
	return ok, nil
}
func (m memStore) IsNotFound(err error) bool { return err == errNotFound }
func (m memStore) Put(key, val []byte) error {
	m[string(key)] = val
	return nil
}
func (m memStore) Delete(key []byte) error {
	delete(m, string(key))
	return nil
}

func TestBucket(t *testing.T) {
	src := memStore{}

	b1 := Bucket("b1-").NewGetPutter(src)
	b2 := Bucket("b2-").NewGetPutter(src)

	assert.Nil(t, b1.Put([]byte("k"), []byte("v1")))
	assert.Nil(t, b2.Put([]byte("k"), []byte("v2")))

	v, err := b1.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = b2.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v2"), v)

	// raw keys carry the bucket prefix
	_, ok := src["b1-k"]
	assert.True(t, ok)

	assert.Nil(t, b1.Delete([]byte("k")))
	has, _ := b1.Has([]byte("k"))
	assert.False(t, has)

	// sibling bucket untouched
	has, _ = b2.Has([]byte("k"))
	assert.True(t, has)

	_, err = b1.Get([]byte("k"))
	assert.True(t, b1.IsNotFound(err))
}
