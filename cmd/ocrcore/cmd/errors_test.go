package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeForNilIsSuccess(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCodeFor(nil))
}

func TestExitCodeForTypedErrors(t *testing.T) {
	base := errors.New("boom")
	assert.Equal(t, ExitConfigError, ExitCodeFor(&ConfigError{Err: base}))
	assert.Equal(t, ExitDatasetError, ExitCodeFor(&DatasetError{Err: base}))
	assert.Equal(t, ExitEngineInitError, ExitCodeFor(&EngineInitError{Err: base}))
	assert.Equal(t, ExitRuntimeError, ExitCodeFor(&RuntimeError{Err: base}))
}

func TestExitCodeForUntypedErrorDefaultsToRuntime(t *testing.T) {
	assert.Equal(t, ExitRuntimeError, ExitCodeFor(errors.New("plain")))
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := &ConfigError{Err: base}
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "config error")
}
