package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const testModule = "test/errors"

var (
	errTestA = New(testModule, 1, "test: a")
	errTestB = New(testModule, 2, "test: b")
)

func TestCodedErrors(t *testing.T) {
	require := require.New(t)

	module, code := Code(errTestA)
	require.Equal(testModule, module)
	require.EqualValues(1, code)

	module, code = Code(fmt.Errorf("wrapped: %w", errTestB))
	require.Equal(testModule, module, "wrapped errors keep their code")
	require.EqualValues(2, code)

	module, code = Code(fmt.Errorf("plain"))
	require.Equal(UnknownModule, module)
	require.EqualValues(1, code)

	module, code = Code(nil)
	require.Equal("", module)
	require.EqualValues(CodeNoError, code)

	require.Panics(func() { _ = New(testModule, 1, "duplicate") }, "duplicate registration")
	require.Panics(func() { _ = New(testModule, CodeNoError, "reserved") }, "reserved code")
}

func TestFromCode(t *testing.T) {
	require := require.New(t)

	err := FromCode(testModule, 1, errTestA.Error())
	require.Equal(errTestA, err, "exact message resolves to the registered error")

	ctxErr := WithContext(errTestB, "item 42")
	err = FromCode(testModule, 2, ctxErr.Error())
	require.True(Is(err, errTestB), "context is preserved and the error still matches")
	require.Equal("item 42", Context(err))

	err = FromCode("other", 7, "remote failure")
	require.Equal("remote failure", err.Error())
	module, code := Code(err)
	require.Equal("other", module)
	require.EqualValues(7, code)
}

func TestDescribe(t *testing.T) {
	require := require.New(t)

	require.Equal("ok", Describe(nil))
	require.Equal(testModule+"/2", Describe(WithContext(errTestB, "ctx")))
	require.Equal(UnknownModule+"/1", Describe(fmt.Errorf("boom")))
}
