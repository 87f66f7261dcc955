package interfaces

// StorageApi is a window's per-origin key/value storage (the browser's localStorage).
//
// GetItem returns storage.ErrNotFound when the key is absent. Implementations may fail on any call
// (quota exceeded, storage disabled); callers log such errors and carry on as if the operation had no effect.
//
// Implemented by storage.MemoryStorage, adapters/myredis and leader.ProxyStorage; wrapped by
// storage.ReplicatingStorage and storage.LocalStorage.
//
//go:generate moq -stub -out mock/storage.go -pkg mock . StorageApi
type StorageApi interface {
	GetItem(key string) (string, error)
	SetItem(key string, value string) error
	RemoveItem(key string) error
}
