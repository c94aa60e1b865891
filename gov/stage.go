package gov

import (
	"github.com/votepool/votepool/kv"
)

// stage buffers an invocation's writes over the backing store. Reads see the
// buffered writes; nothing touches the store until commit. A failed operation
// simply drops its stage, which gives each invocation all-or-nothing
// visibility.
type stage struct {
	src  kv.Getter
	kvs  map[string][]byte
	keys []string // insertion order, for deterministic commit
}

var _ kv.GetPutter = (*stage)(nil)

func newStage(src kv.Getter) *stage {
	return &stage{
		src: src,
		kvs: make(map[string][]byte),
	}
}

func (s *stage) Get(key []byte) ([]byte, error) {
	if v, ok := s.kvs[string(key)]; ok {
		return v, nil
	}
	return s.src.Get(key)
}

func (s *stage) Has(key []byte) (bool, error) {
	if _, ok := s.kvs[string(key)]; ok {
		return true, nil
	}
	return s.src.Has(key)
}

func (s *stage) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *stage) Put(key, value []byte) error {
	k := string(key)
	if _, ok := s.kvs[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.kvs[k] = value
	return nil
}

// Delete is unused by contract operations; records are never removed.
func (s *stage) Delete(key []byte) error {
	return s.Put(key, nil)
}

func (s *stage) commit(store kv.Store) error {
	batch := store.NewBatch()
	for _, k := range s.keys {
		if err := batch.Put([]byte(k), s.kvs[k]); err != nil {
			return err
		}
	}
	return batch.Write()
}
