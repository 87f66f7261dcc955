package mock

import (
	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/interfaces"
	"sync"
)

// Ensure, that LeaderMock does implement interfaces.Leader.
// If this is not the case, regenerate this file with moq.
var _ interfaces.Leader = &LeaderMock{}

// LeaderMock is a mock implementation of interfaces.Leader.
//
//	func TestSomethingThatUsesLeader(t *testing.T) {
//
//		// make and configure a mocked interfaces.Leader
//		mockedLeader := &LeaderMock{
//			AddFollowerFunc: func(f interfaces.Follower) interfaces.AddFollowerResult {
//				panic("mock out the AddFollower method")
//			},
//			PropertiesFunc: func() domain.Properties {
//				panic("mock out the Properties method")
//			},
//			RefreshUidFunc: func(opts domain.RefreshOptions, requester string) {
//				panic("mock out the RefreshUid method")
//			},
//			UpdateConsentFunc: func(data consent.Data, requester string) {
//				panic("mock out the UpdateConsent method")
//			},
//			UpdateFetchIdDataFunc: func(instanceID string, data domain.FetchIdData) {
//				panic("mock out the UpdateFetchIdData method")
//			},
//		}
//
//		// use mockedLeader in code that requires interfaces.Leader
//		// and then make assertions.
//
//	}
type LeaderMock struct {
	// AddFollowerFunc mocks the AddFollower method.
	AddFollowerFunc func(f interfaces.Follower) interfaces.AddFollowerResult

	// PropertiesFunc mocks the Properties method.
	PropertiesFunc func() domain.Properties

	// RefreshUidFunc mocks the RefreshUid method.
	RefreshUidFunc func(opts domain.RefreshOptions, requester string)

	// UpdateConsentFunc mocks the UpdateConsent method.
	UpdateConsentFunc func(data consent.Data, requester string)

	// UpdateFetchIdDataFunc mocks the UpdateFetchIdData method.
	UpdateFetchIdDataFunc func(instanceID string, data domain.FetchIdData)

	// calls tracks calls to the methods.
	calls struct {
		// AddFollower holds details about calls to the AddFollower method.
		AddFollower []struct {
			// F is the f argument value.
			F interfaces.Follower
		}
		// Properties holds details about calls to the Properties method.
		Properties []struct {
		}
		// RefreshUid holds details about calls to the RefreshUid method.
		RefreshUid []struct {
			// Opts is the opts argument value.
			Opts domain.RefreshOptions
			// Requester is the requester argument value.
			Requester string
		}
		// UpdateConsent holds details about calls to the UpdateConsent method.
		UpdateConsent []struct {
			// Data is the data argument value.
			Data consent.Data
			// Requester is the requester argument value.
			Requester string
		}
		// UpdateFetchIdData holds details about calls to the UpdateFetchIdData method.
		UpdateFetchIdData []struct {
			// InstanceID is the instanceID argument value.
			InstanceID string
			// Data is the data argument value.
			Data domain.FetchIdData
		}
	}
	lockAddFollower       sync.RWMutex
	lockProperties        sync.RWMutex
	lockRefreshUid        sync.RWMutex
	lockUpdateConsent     sync.RWMutex
	lockUpdateFetchIdData sync.RWMutex
}

// AddFollower calls AddFollowerFunc.
func (mock *LeaderMock) AddFollower(f interfaces.Follower) interfaces.AddFollowerResult {
	callInfo := struct {
		F interfaces.Follower
	}{
		F: f,
	}
	mock.lockAddFollower.Lock()
	mock.calls.AddFollower = append(mock.calls.AddFollower, callInfo)
	mock.lockAddFollower.Unlock()
	if mock.AddFollowerFunc == nil {
		var (
			addFollowerResultOut interfaces.AddFollowerResult
		)
		return addFollowerResultOut
	}
	return mock.AddFollowerFunc(f)
}

// AddFollowerCalls gets all the calls that were made to AddFollower.
// Check the length with:
//
//	len(mockedLeader.AddFollowerCalls())
func (mock *LeaderMock) AddFollowerCalls() []struct {
	F interfaces.Follower
} {
	var calls []struct {
		F interfaces.Follower
	}
	mock.lockAddFollower.RLock()
	calls = mock.calls.AddFollower
	mock.lockAddFollower.RUnlock()
	return calls
}

// Properties calls PropertiesFunc.
func (mock *LeaderMock) Properties() domain.Properties {
	callInfo := struct {
	}{}
	mock.lockProperties.Lock()
	mock.calls.Properties = append(mock.calls.Properties, callInfo)
	mock.lockProperties.Unlock()
	if mock.PropertiesFunc == nil {
		var (
			propertiesOut domain.Properties
		)
		return propertiesOut
	}
	return mock.PropertiesFunc()
}

// PropertiesCalls gets all the calls that were made to Properties.
// Check the length with:
//
//	len(mockedLeader.PropertiesCalls())
func (mock *LeaderMock) PropertiesCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockProperties.RLock()
	calls = mock.calls.Properties
	mock.lockProperties.RUnlock()
	return calls
}

// RefreshUid calls RefreshUidFunc.
func (mock *LeaderMock) RefreshUid(opts domain.RefreshOptions, requester string) {
	callInfo := struct {
		Opts      domain.RefreshOptions
		Requester string
	}{
		Opts:      opts,
		Requester: requester,
	}
	mock.lockRefreshUid.Lock()
	mock.calls.RefreshUid = append(mock.calls.RefreshUid, callInfo)
	mock.lockRefreshUid.Unlock()
	if mock.RefreshUidFunc == nil {
		return
	}
	mock.RefreshUidFunc(opts, requester)
}

// RefreshUidCalls gets all the calls that were made to RefreshUid.
// Check the length with:
//
//	len(mockedLeader.RefreshUidCalls())
func (mock *LeaderMock) RefreshUidCalls() []struct {
	Opts      domain.RefreshOptions
	Requester string
} {
	var calls []struct {
		Opts      domain.RefreshOptions
		Requester string
	}
	mock.lockRefreshUid.RLock()
	calls = mock.calls.RefreshUid
	mock.lockRefreshUid.RUnlock()
	return calls
}

// UpdateConsent calls UpdateConsentFunc.
func (mock *LeaderMock) UpdateConsent(data consent.Data, requester string) {
	callInfo := struct {
		Data      consent.Data
		Requester string
	}{
		Data:      data,
		Requester: requester,
	}
	mock.lockUpdateConsent.Lock()
	mock.calls.UpdateConsent = append(mock.calls.UpdateConsent, callInfo)
	mock.lockUpdateConsent.Unlock()
	if mock.UpdateConsentFunc == nil {
		return
	}
	mock.UpdateConsentFunc(data, requester)
}

// UpdateConsentCalls gets all the calls that were made to UpdateConsent.
// Check the length with:
//
//	len(mockedLeader.UpdateConsentCalls())
func (mock *LeaderMock) UpdateConsentCalls() []struct {
	Data      consent.Data
	Requester string
} {
	var calls []struct {
		Data      consent.Data
		Requester string
	}
	mock.lockUpdateConsent.RLock()
	calls = mock.calls.UpdateConsent
	mock.lockUpdateConsent.RUnlock()
	return calls
}

// UpdateFetchIdData calls UpdateFetchIdDataFunc.
func (mock *LeaderMock) UpdateFetchIdData(instanceID string, data domain.FetchIdData) {
	callInfo := struct {
		InstanceID string
		Data       domain.FetchIdData
	}{
		InstanceID: instanceID,
		Data:       data,
	}
	mock.lockUpdateFetchIdData.Lock()
	mock.calls.UpdateFetchIdData = append(mock.calls.UpdateFetchIdData, callInfo)
	mock.lockUpdateFetchIdData.Unlock()
	if mock.UpdateFetchIdDataFunc == nil {
		return
	}
	mock.UpdateFetchIdDataFunc(instanceID, data)
}

// UpdateFetchIdDataCalls gets all the calls that were made to UpdateFetchIdData.
// Check the length with:
//
//	len(mockedLeader.UpdateFetchIdDataCalls())
func (mock *LeaderMock) UpdateFetchIdDataCalls() []struct {
	InstanceID string
	Data       domain.FetchIdData
} {
	var calls []struct {
		InstanceID string
		Data       domain.FetchIdData
	}
	mock.lockUpdateFetchIdData.RLock()
	calls = mock.calls.UpdateFetchIdData
	mock.lockUpdateFetchIdData.RUnlock()
	return calls
}
