package mock

import (
	"id5multiplexing/interfaces"
	"sync"
)

// Ensure, that StorageApiMock does implement interfaces.StorageApi.
// If this is not the case, regenerate this file with moq.
var _ interfaces.StorageApi = &StorageApiMock{}

// StorageApiMock is a mock implementation of interfaces.StorageApi.
//
//	func TestSomethingThatUsesStorageApi(t *testing.T) {
//
//		// make and configure a mocked interfaces.StorageApi
//		mockedStorageApi := &StorageApiMock{
//			GetItemFunc: func(key string) (string, error) {
//				panic("mock out the GetItem method")
//			},
//			RemoveItemFunc: func(key string) error {
//				panic("mock out the RemoveItem method")
//			},
//			SetItemFunc: func(key string, value string) error {
//				panic("mock out the SetItem method")
//			},
//		}
//
//		// use mockedStorageApi in code that requires interfaces.StorageApi
//		// and then make assertions.
//
//	}
type StorageApiMock struct {
	// GetItemFunc mocks the GetItem method.
	GetItemFunc func(key string) (string, error)

	// RemoveItemFunc mocks the RemoveItem method.
	RemoveItemFunc func(key string) error

	// SetItemFunc mocks the SetItem method.
	SetItemFunc func(key string, value string) error

	// calls tracks calls to the methods.
	calls struct {
		// GetItem holds details about calls to the GetItem method.
		GetItem []struct {
			// Key is the key argument value.
			Key string
		}
		// RemoveItem holds details about calls to the RemoveItem method.
		RemoveItem []struct {
			// Key is the key argument value.
			Key string
		}
		// SetItem holds details about calls to the SetItem method.
		SetItem []struct {
			// Key is the key argument value.
			Key string
			// Value is the value argument value.
			Value string
		}
	}
	lockGetItem    sync.RWMutex
	lockRemoveItem sync.RWMutex
	lockSetItem    sync.RWMutex
}

// GetItem calls GetItemFunc.
func (mock *StorageApiMock) GetItem(key string) (string, error) {
	callInfo := struct {
		Key string
	}{
		Key: key,
	}
	mock.lockGetItem.Lock()
	mock.calls.GetItem = append(mock.calls.GetItem, callInfo)
	mock.lockGetItem.Unlock()
	if mock.GetItemFunc == nil {
		var (
			sOut   string
			errOut error
		)
		return sOut, errOut
	}
	return mock.GetItemFunc(key)
}

// GetItemCalls gets all the calls that were made to GetItem.
// Check the length with:
//
//	len(mockedStorageApi.GetItemCalls())
func (mock *StorageApiMock) GetItemCalls() []struct {
	Key string
} {
	var calls []struct {
		Key string
	}
	mock.lockGetItem.RLock()
	calls = mock.calls.GetItem
	mock.lockGetItem.RUnlock()
	return calls
}

// RemoveItem calls RemoveItemFunc.
func (mock *StorageApiMock) RemoveItem(key string) error {
	callInfo := struct {
		Key string
	}{
		Key: key,
	}
	mock.lockRemoveItem.Lock()
	mock.calls.RemoveItem = append(mock.calls.RemoveItem, callInfo)
	mock.lockRemoveItem.Unlock()
	if mock.RemoveItemFunc == nil {
		var (
			errOut error
		)
		return errOut
	}
	return mock.RemoveItemFunc(key)
}

// RemoveItemCalls gets all the calls that were made to RemoveItem.
// Check the length with:
//
//	len(mockedStorageApi.RemoveItemCalls())
func (mock *StorageApiMock) RemoveItemCalls() []struct {
	Key string
} {
	var calls []struct {
		Key string
	}
	mock.lockRemoveItem.RLock()
	calls = mock.calls.RemoveItem
	mock.lockRemoveItem.RUnlock()
	return calls
}

// SetItem calls SetItemFunc.
func (mock *StorageApiMock) SetItem(key string, value string) error {
	callInfo := struct {
		Key   string
		Value string
	}{
		Key:   key,
		Value: value,
	}
	mock.lockSetItem.Lock()
	mock.calls.SetItem = append(mock.calls.SetItem, callInfo)
	mock.lockSetItem.Unlock()
	if mock.SetItemFunc == nil {
		var (
			errOut error
		)
		return errOut
	}
	return mock.SetItemFunc(key, value)
}

// SetItemCalls gets all the calls that were made to SetItem.
// Check the length with:
//
//	len(mockedStorageApi.SetItemCalls())
func (mock *StorageApiMock) SetItemCalls() []struct {
	Key   string
	Value string
} {
	var calls []struct {
		Key   string
		Value string
	}
	mock.lockSetItem.RLock()
	calls = mock.calls.SetItem
	mock.lockSetItem.RUnlock()
	return calls
}
