package mock

import (
	"context"
	"id5multiplexing/interfaces"
	"sync"
)

// Ensure, that HTTPTransportMock does implement interfaces.HTTPTransport.
// If this is not the case, regenerate this file with moq.
var _ interfaces.HTTPTransport = &HTTPTransportMock{}

// HTTPTransportMock is a mock implementation of interfaces.HTTPTransport.
//
//	func TestSomethingThatUsesHTTPTransport(t *testing.T) {
//
//		// make and configure a mocked interfaces.HTTPTransport
//		mockedHTTPTransport := &HTTPTransportMock{
//			GetFunc: func(ctx context.Context, url string) ([]byte, error) {
//				panic("mock out the Get method")
//			},
//			PostFunc: func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
//				panic("mock out the Post method")
//			},
//		}
//
//		// use mockedHTTPTransport in code that requires interfaces.HTTPTransport
//		// and then make assertions.
//
//	}
type HTTPTransportMock struct {
	// GetFunc mocks the Get method.
	GetFunc func(ctx context.Context, url string) ([]byte, error)

	// PostFunc mocks the Post method.
	PostFunc func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error)

	// calls tracks calls to the methods.
	calls struct {
		// Get holds details about calls to the Get method.
		Get []struct {
			// Ctx is the ctx argument value.
			Ctx context.Context
			// URL is the url argument value.
			URL string
		}
		// Post holds details about calls to the Post method.
		Post []struct {
			// Ctx is the ctx argument value.
			Ctx context.Context
			// URL is the url argument value.
			URL string
			// Body is the body argument value.
			Body []byte
			// Headers is the headers argument value.
			Headers map[string]string
		}
	}
	lockGet  sync.RWMutex
	lockPost sync.RWMutex
}

// Get calls GetFunc.
func (mock *HTTPTransportMock) Get(ctx context.Context, url string) ([]byte, error) {
	callInfo := struct {
		Ctx context.Context
		URL string
	}{
		Ctx: ctx,
		URL: url,
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	if mock.GetFunc == nil {
		var (
			bytesOut []byte
			errOut   error
		)
		return bytesOut, errOut
	}
	return mock.GetFunc(ctx, url)
}

// GetCalls gets all the calls that were made to Get.
// Check the length with:
//
//	len(mockedHTTPTransport.GetCalls())
func (mock *HTTPTransportMock) GetCalls() []struct {
	Ctx context.Context
	URL string
} {
	var calls []struct {
		Ctx context.Context
		URL string
	}
	mock.lockGet.RLock()
	calls = mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

// Post calls PostFunc.
func (mock *HTTPTransportMock) Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
	callInfo := struct {
		Ctx     context.Context
		URL     string
		Body    []byte
		Headers map[string]string
	}{
		Ctx:     ctx,
		URL:     url,
		Body:    body,
		Headers: headers,
	}
	mock.lockPost.Lock()
	mock.calls.Post = append(mock.calls.Post, callInfo)
	mock.lockPost.Unlock()
	if mock.PostFunc == nil {
		var (
			bytesOut []byte
			errOut   error
		)
		return bytesOut, errOut
	}
	return mock.PostFunc(ctx, url, body, headers)
}

// PostCalls gets all the calls that were made to Post.
// Check the length with:
//
//	len(mockedHTTPTransport.PostCalls())
func (mock *HTTPTransportMock) PostCalls() []struct {
	Ctx     context.Context
	URL     string
	Body    []byte
	Headers map[string]string
} {
	var calls []struct {
		Ctx     context.Context
		URL     string
		Body    []byte
		Headers map[string]string
	}
	mock.lockPost.RLock()
	calls = mock.calls.Post
	mock.lockPost.RUnlock()
	return calls
}
