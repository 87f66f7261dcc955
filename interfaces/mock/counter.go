package mock

import (
	"id5multiplexing/interfaces"
	"sync"
)

// Ensure, that CounterMock does implement interfaces.Counter.
// If this is not the case, regenerate this file with moq.
var _ interfaces.Counter = &CounterMock{}

// CounterMock is a mock implementation of interfaces.Counter.
//
//	func TestSomethingThatUsesCounter(t *testing.T) {
//
//		// make and configure a mocked interfaces.Counter
//		mockedCounter := &CounterMock{
//			AddFunc: func(v float64) {
//				panic("mock out the Add method")
//			},
//			IncFunc: func() {
//				panic("mock out the Inc method")
//			},
//		}
//
//		// use mockedCounter in code that requires interfaces.Counter
//		// and then make assertions.
//
//	}
type CounterMock struct {
	// AddFunc mocks the Add method.
	AddFunc func(v float64)

	// IncFunc mocks the Inc method.
	IncFunc func()

	// calls tracks calls to the methods.
	calls struct {
		// Add holds details about calls to the Add method.
		Add []struct {
			// V is the v argument value.
			V float64
		}
		// Inc holds details about calls to the Inc method.
		Inc []struct {
		}
	}
	lockAdd sync.RWMutex
	lockInc sync.RWMutex
}

// Add calls AddFunc.
func (mock *CounterMock) Add(v float64) {
	callInfo := struct {
		V float64
	}{
		V: v,
	}
	mock.lockAdd.Lock()
	mock.calls.Add = append(mock.calls.Add, callInfo)
	mock.lockAdd.Unlock()
	if mock.AddFunc == nil {
		return
	}
	mock.AddFunc(v)
}

// AddCalls gets all the calls that were made to Add.
// Check the length with:
//
//	len(mockedCounter.AddCalls())
func (mock *CounterMock) AddCalls() []struct {
	V float64
} {
	var calls []struct {
		V float64
	}
	mock.lockAdd.RLock()
	calls = mock.calls.Add
	mock.lockAdd.RUnlock()
	return calls
}

// Inc calls IncFunc.
func (mock *CounterMock) Inc() {
	callInfo := struct {
	}{}
	mock.lockInc.Lock()
	mock.calls.Inc = append(mock.calls.Inc, callInfo)
	mock.lockInc.Unlock()
	if mock.IncFunc == nil {
		return
	}
	mock.IncFunc()
}

// IncCalls gets all the calls that were made to Inc.
// Check the length with:
//
//	len(mockedCounter.IncCalls())
func (mock *CounterMock) IncCalls() []struct {
} {
	var calls []struct {
	}
	mock.lockInc.RLock()
	calls = mock.calls.Inc
	mock.lockInc.RUnlock()
	return calls
}
