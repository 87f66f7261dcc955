package mock

import (
	"id5multiplexing/interfaces"
	"sync"
)

// Ensure, that MeterRegistryMock does implement interfaces.MeterRegistry.
// If this is not the case, regenerate this file with moq.
var _ interfaces.MeterRegistry = &MeterRegistryMock{}

// MeterRegistryMock is a mock implementation of interfaces.MeterRegistry.
//
//	func TestSomethingThatUsesMeterRegistry(t *testing.T) {
//
//		// make and configure a mocked interfaces.MeterRegistry
//		mockedMeterRegistry := &MeterRegistryMock{
//			CounterFunc: func(name string, tags map[string]string) interfaces.Counter {
//				panic("mock out the Counter method")
//			},
//			SummaryFunc: func(name string, tags map[string]string) interfaces.Summary {
//				panic("mock out the Summary method")
//			},
//			TimerFunc: func(name string, tags map[string]string) interfaces.Timer {
//				panic("mock out the Timer method")
//			},
//		}
//
//		// use mockedMeterRegistry in code that requires interfaces.MeterRegistry
//		// and then make assertions.
//
//	}
type MeterRegistryMock struct {
	// CounterFunc mocks the Counter method.
	CounterFunc func(name string, tags map[string]string) interfaces.Counter

	// SummaryFunc mocks the Summary method.
	SummaryFunc func(name string, tags map[string]string) interfaces.Summary

	// TimerFunc mocks the Timer method.
	TimerFunc func(name string, tags map[string]string) interfaces.Timer

	// calls tracks calls to the methods.
	calls struct {
		// Counter holds details about calls to the Counter method.
		Counter []struct {
			// Name is the name argument value.
			Name string
			// Tags is the tags argument value.
			Tags map[string]string
		}
		// Summary holds details about calls to the Summary method.
		Summary []struct {
			// Name is the name argument value.
			Name string
			// Tags is the tags argument value.
			Tags map[string]string
		}
		// Timer holds details about calls to the Timer method.
		Timer []struct {
			// Name is the name argument value.
			Name string
			// Tags is the tags argument value.
			Tags map[string]string
		}
	}
	lockCounter sync.RWMutex
	lockSummary sync.RWMutex
	lockTimer   sync.RWMutex
}

// Counter calls CounterFunc.
func (mock *MeterRegistryMock) Counter(name string, tags map[string]string) interfaces.Counter {
	callInfo := struct {
		Name string
		Tags map[string]string
	}{
		Name: name,
		Tags: tags,
	}
	mock.lockCounter.Lock()
	mock.calls.Counter = append(mock.calls.Counter, callInfo)
	mock.lockCounter.Unlock()
	if mock.CounterFunc == nil {
		var (
			counterOut interfaces.Counter
		)
		return counterOut
	}
	return mock.CounterFunc(name, tags)
}

// CounterCalls gets all the calls that were made to Counter.
// Check the length with:
//
//	len(mockedMeterRegistry.CounterCalls())
func (mock *MeterRegistryMock) CounterCalls() []struct {
	Name string
	Tags map[string]string
} {
	var calls []struct {
		Name string
		Tags map[string]string
	}
	mock.lockCounter.RLock()
	calls = mock.calls.Counter
	mock.lockCounter.RUnlock()
	return calls
}

// Summary calls SummaryFunc.
func (mock *MeterRegistryMock) Summary(name string, tags map[string]string) interfaces.Summary {
	callInfo := struct {
		Name string
		Tags map[string]string
	}{
		Name: name,
		Tags: tags,
	}
	mock.lockSummary.Lock()
	mock.calls.Summary = append(mock.calls.Summary, callInfo)
	mock.lockSummary.Unlock()
	if mock.SummaryFunc == nil {
		var (
			summaryOut interfaces.Summary
		)
		return summaryOut
	}
	return mock.SummaryFunc(name, tags)
}

// SummaryCalls gets all the calls that were made to Summary.
// Check the length with:
//
//	len(mockedMeterRegistry.SummaryCalls())
func (mock *MeterRegistryMock) SummaryCalls() []struct {
	Name string
	Tags map[string]string
} {
	var calls []struct {
		Name string
		Tags map[string]string
	}
	mock.lockSummary.RLock()
	calls = mock.calls.Summary
	mock.lockSummary.RUnlock()
	return calls
}

// Timer calls TimerFunc.
func (mock *MeterRegistryMock) Timer(name string, tags map[string]string) interfaces.Timer {
	callInfo := struct {
		Name string
		Tags map[string]string
	}{
		Name: name,
		Tags: tags,
	}
	mock.lockTimer.Lock()
	mock.calls.Timer = append(mock.calls.Timer, callInfo)
	mock.lockTimer.Unlock()
	if mock.TimerFunc == nil {
		var (
			timerOut interfaces.Timer
		)
		return timerOut
	}
	return mock.TimerFunc(name, tags)
}

// TimerCalls gets all the calls that were made to Timer.
// Check the length with:
//
//	len(mockedMeterRegistry.TimerCalls())
func (mock *MeterRegistryMock) TimerCalls() []struct {
	Name string
	Tags map[string]string
} {
	var calls []struct {
		Name string
		Tags map[string]string
	}
	mock.lockTimer.RLock()
	calls = mock.calls.Timer
	mock.lockTimer.RUnlock()
	return calls
}
