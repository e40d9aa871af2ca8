package flowerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesDefaultPublicMessage(t *testing.T) {
	e := New(DomainResource, CodeResourceNotFound, "", "open(/tmp/x): no such file")
	assert.Equal(t, "resource not found", e.Message)
}

func TestWrapChainsCause(t *testing.T) {
	cause := errors.New("disk full")
	e := Wrap(DomainResource, CodeResourceWrite, "", "write failed", cause)
	assert.ErrorIs(t, e, cause)
}

func TestAsExtractsFlowError(t *testing.T) {
	e := New(DomainCore, CodeCoreFailed, "pipeline broke", "")
	var target *Error
	require.True(t, As(e, &target))
	assert.Equal(t, CodeCoreFailed, target.Code)
}

func TestSetPublicMessageOverridesGlobally(t *testing.T) {
	SetPublicMessage(DomainCore, CodeCoreFailed, "custom failure text")
	defer SetPublicMessage(DomainCore, CodeCoreFailed, "internal data flow error")

	e := New(DomainCore, CodeCoreFailed, "", "")
	assert.Equal(t, "custom failure text", e.Message)
}
