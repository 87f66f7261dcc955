package mock

import (
	"id5multiplexing/domain"
	"id5multiplexing/interfaces"
	"id5multiplexing/messaging"
	"sync"
)

// Ensure, that FollowerMock does implement interfaces.Follower.
// If this is not the case, regenerate this file with moq.
var _ interfaces.Follower = &FollowerMock{}

// FollowerMock is a mock implementation of interfaces.Follower.
//
//	func TestSomethingThatUsesFollower(t *testing.T) {
//
//		// make and configure a mocked interfaces.Follower
//		mockedFollower := &FollowerMock{
//			CacheIDFunc: func() string {
//				panic("mock out the CacheID method")
//			},
//			CanDoCascadeFunc: func() bool {
//				panic("mock out the CanDoCascade method")
//			},
//			FetchIdDataFunc: func() domain.FetchIdData {
//				panic("mock out the FetchIdData method")
//			},
//			IDFunc: func() string {
//				panic("mock out the ID method")
//			},
//			NotifyCascadeNeededFunc: func(data domain.CascadeData) {
//				panic("mock out the NotifyCascadeNeeded method")
//			},
//			NotifyFetchUidCanceledFunc: func(cancel domain.FetchCancel) {
//				panic("mock out the NotifyFetchUidCanceled method")
//			},
//			NotifyUidReadyFunc: func(uid domain.UserID, ctx domain.NotificationContext) {
//				panic("mock out the NotifyUidReady method")
//			},
//			StorageFunc: func() interfaces.StorageApi {
//				panic("mock out the Storage method")
//			},
//			UpdateFetchIdDataFunc: func(data domain.FetchIdData) {
//				panic("mock out the UpdateFetchIdData method")
//			},
//			WindowFunc: func() *messaging.Window {
//				panic("mock out the Window method")
//			},
//		}
//
//		// use mockedFollower in code that requires interfaces.Follower
//		// and then make assertions.
//
//	}
type FollowerMock struct {
	// CacheIDFunc mocks the CacheID method.
	CacheIDFunc func() string

	// CanDoCascadeFunc mocks the CanDoCascade method.
	CanDoCascadeFunc func() bool

	// FetchIdDataFunc mocks the FetchIdData method.
	FetchIdDataFunc func() domain.FetchIdData

	// IDFunc mocks the ID method.
	IDFunc func() string

	// NotifyCascadeNeededFunc mocks the NotifyCascadeNeeded method.
	NotifyCascadeNeededFunc func(data domain.CascadeData)

	// NotifyFetchUidCanceledFunc mocks the NotifyFetchUidCanceled method.
	NotifyFetchUidCanceledFunc func(cancel domain.FetchCancel)

	// NotifyUidReadyFunc mocks the NotifyUidReady method.
	NotifyUidReadyFunc func(uid domain.UserID, ctx domain.NotificationContext)

	// StorageFunc mocks the Storage method.
	StorageFunc func() interfaces.StorageApi

	// UpdateFetchIdDataFunc mocks the UpdateFetchIdData method.
	UpdateFetchIdDataFunc func(data domain.FetchIdData)

	// WindowFunc mocks the Window method.
	WindowFunc func() *messaging.Window

	// calls tracks calls to the methods.
	calls struct {
		// CacheID holds details about calls to the CacheID method.
		CacheID []struct {
		}
		// CanDoCascade holds details about calls to the CanDoCascade method.
		CanDoCascade []struct {
		}
		// FetchIdData holds details about calls to the FetchIdData method.
		FetchIdData []struct {
		}
		// ID holds details about calls to the ID method.
		ID []struct {
		}
		// NotifyCascadeNeeded holds details about calls to the NotifyCascadeNeeded method.
		NotifyCascadeNeeded []struct {
			// Data is the data argument value.
			Data domain.CascadeData
		}
		// NotifyFetchUidCanceled holds details about calls to the NotifyFetchUidCanceled method.
		NotifyFetchUidCanceled []struct {
			// Cancel is the cancel argument value.
			Cancel domain.FetchCancel
		}
		// NotifyUidReady holds details about calls to the NotifyUidReady method.
		NotifyUidReady []struct {
			// UID is the uid argument value.
			UID domain.UserID
			// Ctx is the ctx argument value.
			Ctx domain.NotificationContext
		}
		// Storage holds details about calls to the Storage method.
		Storage []struct {
		}
		// UpdateFetchIdData holds details about calls to the UpdateFetchIdData method.
		UpdateFetchIdData []struct {
			// Data is the data argument value.
			Data domain.FetchIdData
		}
		// Window holds details about calls to the Window method.
		Window []struct {
		}
	}
	lockCacheID                sync.RWMutex
	lockCanDoCascade           sync.RWMutex
	lockFetchIdData            sync.RWMutex
	lockID                     sync.RWMutex
	lockNotifyCascadeNeeded    sync.RWMutex
	lockNotifyFetchUidCanceled sync.RWMutex
	lockNotifyUidReady         sync.RWMutex
	lockStorage                sync.RWMutex
	lockUpdateFetchIdData      sync.RWMutex
	lockWindow                 sync.RWMutex
}

// CacheID calls CacheIDFunc.
func (mock *FollowerMock) CacheID() string {
	callInfo := struct {
	}{}
	mock.lockCacheID.Lock()
	mock.calls.CacheID = append(mock.calls.CacheID, callInfo)
	mock.lockCacheID.Unlock()
	if mock.CacheIDFunc == nil {
		var (
			sOut string
		)
		return sOut
	}
	return mock.CacheIDFunc()
}

// CacheIDCalls gets all the calls that were made to CacheID.
// Check the length with:
//
//	len(mockedFollower.CacheIDCalls())
func (mock *FollowerMock) CacheIDCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockCacheID.RLock()
	calls = mock.calls.CacheID
	mock.lockCacheID.RUnlock()
	return calls
}

// CanDoCascade calls CanDoCascadeFunc.
func (mock *FollowerMock) CanDoCascade() bool {
	callInfo := struct {
	}{}
	mock.lockCanDoCascade.Lock()
	mock.calls.CanDoCascade = append(mock.calls.CanDoCascade, callInfo)
	mock.lockCanDoCascade.Unlock()
	if mock.CanDoCascadeFunc == nil {
		var (
			bOut bool
		)
		return bOut
	}
	return mock.CanDoCascadeFunc()
}

// CanDoCascadeCalls gets all the calls that were made to CanDoCascade.
// Check the length with:
//
//	len(mockedFollower.CanDoCascadeCalls())
func (mock *FollowerMock) CanDoCascadeCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockCanDoCascade.RLock()
	calls = mock.calls.CanDoCascade
	mock.lockCanDoCascade.RUnlock()
	return calls
}

// FetchIdData calls FetchIdDataFunc.
func (mock *FollowerMock) FetchIdData() domain.FetchIdData {
	callInfo := struct {
	}{}
	mock.lockFetchIdData.Lock()
	mock.calls.FetchIdData = append(mock.calls.FetchIdData, callInfo)
	mock.lockFetchIdData.Unlock()
	if mock.FetchIdDataFunc == nil {
		var (
			fetchIdDataOut domain.FetchIdData
		)
		return fetchIdDataOut
	}
	return mock.FetchIdDataFunc()
}

// FetchIdDataCalls gets all the calls that were made to FetchIdData.
// Check the length with:
//
//	len(mockedFollower.FetchIdDataCalls())
func (mock *FollowerMock) FetchIdDataCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockFetchIdData.RLock()
	calls = mock.calls.FetchIdData
	mock.lockFetchIdData.RUnlock()
	return calls
}

// ID calls IDFunc.
func (mock *FollowerMock) ID() string {
	callInfo := struct {
	}{}
	mock.lockID.Lock()
	mock.calls.ID = append(mock.calls.ID, callInfo)
	mock.lockID.Unlock()
	if mock.IDFunc == nil {
		var (
			sOut string
		)
		return sOut
	}
	return mock.IDFunc()
}

// IDCalls gets all the calls that were made to ID.
// Check the length with:
//
//	len(mockedFollower.IDCalls())
func (mock *FollowerMock) IDCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockID.RLock()
	calls = mock.calls.ID
	mock.lockID.RUnlock()
	return calls
}

// NotifyCascadeNeeded calls NotifyCascadeNeededFunc.
func (mock *FollowerMock) NotifyCascadeNeeded(data domain.CascadeData) {
	callInfo := struct {
		Data domain.CascadeData
	}{
		Data: data,
	}
	mock.lockNotifyCascadeNeeded.Lock()
	mock.calls.NotifyCascadeNeeded = append(mock.calls.NotifyCascadeNeeded, callInfo)
	mock.lockNotifyCascadeNeeded.Unlock()
	if mock.NotifyCascadeNeededFunc == nil {
		return
	}
	mock.NotifyCascadeNeededFunc(data)
}

// NotifyCascadeNeededCalls gets all the calls that were made to NotifyCascadeNeeded.
// Check the length with:
//
//	len(mockedFollower.NotifyCascadeNeededCalls())
func (mock *FollowerMock) NotifyCascadeNeededCalls() []struct {
	Data domain.CascadeData
} {
	var calls []struct {
		Data domain.CascadeData
	}
	mock.lockNotifyCascadeNeeded.RLock()
	calls = mock.calls.NotifyCascadeNeeded
	mock.lockNotifyCascadeNeeded.RUnlock()
	return calls
}

// NotifyFetchUidCanceled calls NotifyFetchUidCanceledFunc.
func (mock *FollowerMock) NotifyFetchUidCanceled(cancel domain.FetchCancel) {
	callInfo := struct {
		Cancel domain.FetchCancel
	}{
		Cancel: cancel,
	}
	mock.lockNotifyFetchUidCanceled.Lock()
	mock.calls.NotifyFetchUidCanceled = append(mock.calls.NotifyFetchUidCanceled, callInfo)
	mock.lockNotifyFetchUidCanceled.Unlock()
	if mock.NotifyFetchUidCanceledFunc == nil {
		return
	}
	mock.NotifyFetchUidCanceledFunc(cancel)
}

// NotifyFetchUidCanceledCalls gets all the calls that were made to NotifyFetchUidCanceled.
// Check the length with:
//
//	len(mockedFollower.NotifyFetchUidCanceledCalls())
func (mock *FollowerMock) NotifyFetchUidCanceledCalls() []struct {
	Cancel domain.FetchCancel
} {
	var calls []struct {
		Cancel domain.FetchCancel
	}
	mock.lockNotifyFetchUidCanceled.RLock()
	calls = mock.calls.NotifyFetchUidCanceled
	mock.lockNotifyFetchUidCanceled.RUnlock()
	return calls
}

// NotifyUidReady calls NotifyUidReadyFunc.
func (mock *FollowerMock) NotifyUidReady(uid domain.UserID, ctx domain.NotificationContext) {
	callInfo := struct {
		UID domain.UserID
		Ctx domain.NotificationContext
	}{
		UID: uid,
		Ctx: ctx,
	}
	mock.lockNotifyUidReady.Lock()
	mock.calls.NotifyUidReady = append(mock.calls.NotifyUidReady, callInfo)
	mock.lockNotifyUidReady.Unlock()
	if mock.NotifyUidReadyFunc == nil {
		return
	}
	mock.NotifyUidReadyFunc(uid, ctx)
}

// NotifyUidReadyCalls gets all the calls that were made to NotifyUidReady.
// Check the length with:
//
//	len(mockedFollower.NotifyUidReadyCalls())
func (mock *FollowerMock) NotifyUidReadyCalls() []struct {
	UID domain.UserID
	Ctx domain.NotificationContext
} {
	var calls []struct {
		UID domain.UserID
		Ctx domain.NotificationContext
	}
	mock.lockNotifyUidReady.RLock()
	calls = mock.calls.NotifyUidReady
	mock.lockNotifyUidReady.RUnlock()
	return calls
}

// Storage calls StorageFunc.
func (mock *FollowerMock) Storage() interfaces.StorageApi {
	callInfo := struct {
	}{}
	mock.lockStorage.Lock()
	mock.calls.Storage = append(mock.calls.Storage, callInfo)
	mock.lockStorage.Unlock()
	if mock.StorageFunc == nil {
		var (
			storageApiOut interfaces.StorageApi
		)
		return storageApiOut
	}
	return mock.StorageFunc()
}

// StorageCalls gets all the calls that were made to Storage.
// Check the length with:
//
//	len(mockedFollower.StorageCalls())
func (mock *FollowerMock) StorageCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockStorage.RLock()
	calls = mock.calls.Storage
	mock.lockStorage.RUnlock()
	return calls
}

// UpdateFetchIdData calls UpdateFetchIdDataFunc.
func (mock *FollowerMock) UpdateFetchIdData(data domain.FetchIdData) {
	callInfo := struct {
		Data domain.FetchIdData
	}{
		Data: data,
	}
	mock.lockUpdateFetchIdData.Lock()
	mock.calls.UpdateFetchIdData = append(mock.calls.UpdateFetchIdData, callInfo)
	mock.lockUpdateFetchIdData.Unlock()
	if mock.UpdateFetchIdDataFunc == nil {
		return
	}
	mock.UpdateFetchIdDataFunc(data)
}

// UpdateFetchIdDataCalls gets all the calls that were made to UpdateFetchIdData.
// Check the length with:
//
//	len(mockedFollower.UpdateFetchIdDataCalls())
func (mock *FollowerMock) UpdateFetchIdDataCalls() []struct {
	Data domain.FetchIdData
} {
	var calls []struct {
		Data domain.FetchIdData
	}
	mock.lockUpdateFetchIdData.RLock()
	calls = mock.calls.UpdateFetchIdData
	mock.lockUpdateFetchIdData.RUnlock()
	return calls
}

// Window calls WindowFunc.
func (mock *FollowerMock) Window() *messaging.Window {
	callInfo := struct {
	}{}
	mock.lockWindow.Lock()
	mock.calls.Window = append(mock.calls.Window, callInfo)
	mock.lockWindow.Unlock()
	if mock.WindowFunc == nil {
		var (
			windowOut *messaging.Window
		)
		return windowOut
	}
	return mock.WindowFunc()
}

// WindowCalls gets all the calls that were made to Window.
// Check the length with:
//
//	len(mockedFollower.WindowCalls())
func (mock *FollowerMock) WindowCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockWindow.RLock()
	calls = mock.calls.Window
	mock.lockWindow.RUnlock()
	return calls
}
