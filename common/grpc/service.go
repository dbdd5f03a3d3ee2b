package grpc

import (
	"fmt"
	"strings"
	"sync"
)

// ServicePrefix is a prefix given to all gRPC services defined by GopStake.
const ServicePrefix = "gopstake."

var registeredMethods sync.Map

// ServiceName is a gRPC service name.
type ServiceName string

// NewServiceName creates a new gRPC service name.
func NewServiceName(name string) ServiceName {
	if strings.Contains(name, "/") {
		panic(fmt.Errorf("'/' not allowed in service name: %s", name))
	}
	return ServiceName(ServicePrefix + name)
}

// NewMethod creates a new method name for the given service.
func (sn ServiceName) NewMethod(name string, requestType interface{}) *MethodDesc {
	if strings.Contains(name, "/") {
		panic(fmt.Errorf("'/' not allowed in method name: %s", name))
	}

	md := &MethodDesc{
		short:       name,
		full:        fmt.Sprintf("/%s/%s", sn, name),
		requestType: requestType,
	}
	if _, isRegistered := registeredMethods.LoadOrStore(md.FullName(), md); isRegistered {
		panic(fmt.Errorf("service: method already registered: %s", name))
	}
	return md
}

// GetRegisteredMethod returns a registered method description.
func GetRegisteredMethod(name string) (*MethodDesc, error) {
	md, ok := registeredMethods.Load(name)
	if !ok {
		return nil, fmt.Errorf("method not registered")
	}
	return md.(*MethodDesc), nil
}

// MethodDesc is a gRPC method descriptor.
type MethodDesc struct {
	short       string
	full        string
	requestType interface{}
}

// ShortName returns the short method name.
func (m *MethodDesc) ShortName() string {
	return m.short
}

// FullName returns the full method name.
func (m *MethodDesc) FullName() string {
	return m.full
}
