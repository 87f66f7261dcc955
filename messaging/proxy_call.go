package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProxyMethodCallType is the envelope type carrying a ProxyMethodCall.
const ProxyMethodCallType = "RemoteMethodCallMessage"

// ProxyMethodCallTarget names the object a remote method call is addressed to.
type ProxyMethodCallTarget string

const (
	TargetLeader   ProxyMethodCallTarget = "leader"
	TargetFollower ProxyMethodCallTarget = "follower"
	TargetStorage  ProxyMethodCallTarget = "storage"
)

// ErrUnknownTarget is returned for a call to a target outside the closed set above.
var ErrUnknownTarget = errors.New("unknown proxy method call target")

// ProxyMethodCall is the payload of a RemoteMethodCallMessage.
type ProxyMethodCall struct {
	Target          ProxyMethodCallTarget `json:"target"`
	MethodName      string                `json:"methodName"`
	MethodArguments []json.RawMessage     `json:"methodArguments"`
}

// ProxyMethodCallReceiver executes remote calls for one target. Errors are logged by the messenger
// and never reach the caller: remote calls are fire-and-forget.
type ProxyMethodCallReceiver interface {
	HandleProxyMethodCall(method string, args []json.RawMessage) error
}

// ProxyMethodCallReceiverFunc adapts a function to ProxyMethodCallReceiver.
type ProxyMethodCallReceiverFunc func(method string, args []json.RawMessage) error

func (f ProxyMethodCallReceiverFunc) HandleProxyMethodCall(method string, args []json.RawMessage) error {
	return f(method, args)
}

// NewProxyMethodCall encodes args one by one.
func NewProxyMethodCall(target ProxyMethodCallTarget, method string, args ...any) (ProxyMethodCall, error) {
	if err := target.validate(); err != nil {
		return ProxyMethodCall{}, err
	}
	call := ProxyMethodCall{Target: target, MethodName: method, MethodArguments: make([]json.RawMessage, 0, len(args))}
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return ProxyMethodCall{}, fmt.Errorf("encode argument %d of %s.%s: %w", i, target, method, err)
		}
		call.MethodArguments = append(call.MethodArguments, b)
	}
	return call, nil
}

func (t ProxyMethodCallTarget) validate() error {
	switch t {
	case TargetLeader, TargetFollower, TargetStorage:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, string(t))
	}
}

// DecodeArgs unmarshals args positionally into outs. Missing trailing arguments leave outs untouched.
func DecodeArgs(args []json.RawMessage, outs ...any) error {
	for i, out := range outs {
		if i >= len(args) {
			return nil
		}
		if err := json.Unmarshal(args[i], out); err != nil {
			return fmt.Errorf("decode argument %d: %w", i, err)
		}
	}
	return nil
}
