// Package transaction implements method-dispatched transaction calls.
package transaction

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/cryptogopniks/GopStake/common/cbor"
	"github.com/cryptogopniks/GopStake/common/prettyprint"
)

// MethodSeparator is the separator used to separate backend name from method name.
const MethodSeparator = "."

var (
	registeredMethods sync.Map

	_ prettyprint.PrettyPrinter = (*Call)(nil)
)

// MethodName is a method name.
type MethodName string

// SanityCheck performs a basic sanity check on the method name.
func (m MethodName) SanityCheck() error {
	if len(m) == 0 {
		return fmt.Errorf("transaction: empty method")
	}
	if _, ok := registeredMethods.Load(string(m)); !ok {
		return fmt.Errorf("transaction: unknown method: %s", m)
	}
	return nil
}

// BodyType returns the registered body type associated with this method.
func (m MethodName) BodyType() interface{} {
	bodyType, _ := registeredMethods.Load(string(m))
	return bodyType
}

// NewMethodName creates a new method name.
//
// Module and method pair must be unique. If they are not, this method
// will panic.
func NewMethodName(module, method string, bodyType interface{}) MethodName {
	name := module + MethodSeparator + method
	if _, isRegistered := registeredMethods.LoadOrStore(name, bodyType); isRegistered {
		panic(fmt.Errorf("transaction: method already registered: %s", name))
	}
	return MethodName(name)
}

// Call is a method call with a CBOR-encoded body.
type Call struct {
	// Method is the method that should be called.
	Method MethodName `json:"method"`
	// Body is the method call body.
	Body cbor.RawMessage `json:"body,omitempty"`
}

// NewCall creates a new method call.
func NewCall(method MethodName, body interface{}) Call {
	var rawBody []byte
	if body != nil {
		rawBody = cbor.Marshal(body)
	}
	return Call{
		Method: method,
		Body:   cbor.RawMessage(rawBody),
	}
}

// DecodeBody unmarshals the call body into dst.
func (c *Call) DecodeBody(dst interface{}) error {
	if len(c.Body) == 0 {
		return fmt.Errorf("transaction: missing body for method %s", c.Method)
	}
	return cbor.Unmarshal(c.Body, dst)
}

// PrettyPrint writes a pretty-printed representation of the call to the
// given writer.
func (c Call) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sMethod: %s\n", prefix, c.Method)

	bodyType := c.Method.BodyType()
	if bodyType == nil || len(c.Body) == 0 {
		fmt.Fprintf(w, "%sBody:   (none)\n", prefix)
		return
	}
	body := reflect.New(reflect.TypeOf(bodyType)).Interface()
	if err := cbor.Unmarshal(c.Body, body); err != nil {
		fmt.Fprintf(w, "%sBody:   <malformed: %s>\n", prefix, err)
		return
	}
	fmt.Fprintf(w, "%sBody:   %+v\n", prefix, reflect.ValueOf(body).Elem().Interface())
}
