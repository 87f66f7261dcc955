package mock

import (
	"id5multiplexing/interfaces"
	"sync"
	"time"
)

// Ensure, that TimerMock does implement interfaces.Timer.
// If this is not the case, regenerate this file with moq.
var _ interfaces.Timer = &TimerMock{}

// TimerMock is a mock implementation of interfaces.Timer.
//
//	func TestSomethingThatUsesTimer(t *testing.T) {
//
//		// make and configure a mocked interfaces.Timer
//		mockedTimer := &TimerMock{
//			RecordFunc: func(d time.Duration) {
//				panic("mock out the Record method")
//			},
//		}
//
//		// use mockedTimer in code that requires interfaces.Timer
//		// and then make assertions.
//
//	}
type TimerMock struct {
	// RecordFunc mocks the Record method.
	RecordFunc func(d time.Duration)

	// calls tracks calls to the methods.
	calls struct {
		// Record holds details about calls to the Record method.
		Record []struct {
			// D is the d argument value.
			D time.Duration
		}
	}
	lockRecord sync.RWMutex
}

// Record calls RecordFunc.
func (mock *TimerMock) Record(d time.Duration) {
	callInfo := struct {
		D time.Duration
	}{
		D: d,
	}
	mock.lockRecord.Lock()
	mock.calls.Record = append(mock.calls.Record, callInfo)
	mock.lockRecord.Unlock()
	if mock.RecordFunc == nil {
		return
	}
	mock.RecordFunc(d)
}

// RecordCalls gets all the calls that were made to Record.
// Check the length with:
//
//	len(mockedTimer.RecordCalls())
func (mock *TimerMock) RecordCalls() []struct {
	D time.Duration
} {
	var calls []struct {
		D time.Duration
	}
	mock.lockRecord.RLock()
	calls = mock.calls.Record
	mock.lockRecord.RUnlock()
	return calls
}
