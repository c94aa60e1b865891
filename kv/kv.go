package kv

// Getter wraps methods for getting kvs.
type Getter interface {
	// Get value for given key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool
}

// Putter wraps methods for putting kvs.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// GetPutter wraps methods for getting/putting kvs.
type GetPutter interface {
	Getter
	Putter
}

// Batch defines batch of putting ops. Ops take effect all at once on Write.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Store is a full functional kv store.
type Store interface {
	GetPutter

	NewBatch() Batch
}

// StoreCloser is a store with close method.
type StoreCloser interface {
	Store
	Close() error
}
