package mock

import (
	"id5multiplexing/interfaces"
	"sync"
)

// Ensure, that SummaryMock does implement interfaces.Summary.
// If this is not the case, regenerate this file with moq.
var _ interfaces.Summary = &SummaryMock{}

// SummaryMock is a mock implementation of interfaces.Summary.
//
//	func TestSomethingThatUsesSummary(t *testing.T) {
//
//		// make and configure a mocked interfaces.Summary
//		mockedSummary := &SummaryMock{
//			RecordFunc: func(v float64) {
//				panic("mock out the Record method")
//			},
//		}
//
//		// use mockedSummary in code that requires interfaces.Summary
//		// and then make assertions.
//
//	}
type SummaryMock struct {
	// RecordFunc mocks the Record method.
	RecordFunc func(v float64)

	// calls tracks calls to the methods.
	calls struct {
		// Record holds details about calls to the Record method.
		Record []struct {
			// V is the v argument value.
			V float64
		}
	}
	lockRecord sync.RWMutex
}

// Record calls RecordFunc.
func (mock *SummaryMock) Record(v float64) {
	callInfo := struct {
		V float64
	}{
		V: v,
	}
	mock.lockRecord.Lock()
	mock.calls.Record = append(mock.calls.Record, callInfo)
	mock.lockRecord.Unlock()
	if mock.RecordFunc == nil {
		return
	}
	mock.RecordFunc(v)
}

// RecordCalls gets all the calls that were made to Record.
// Check the length with:
//
//	len(mockedSummary.RecordCalls())
func (mock *SummaryMock) RecordCalls() []struct {
	V float64
} {
	var calls []struct {
		V float64
	}
	mock.lockRecord.RLock()
	calls = mock.calls.Record
	mock.lockRecord.RUnlock()
	return calls
}
