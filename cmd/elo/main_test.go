package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_ReturnsExitCode(t *testing.T) {
	assert.Equal(t, 1, writeError(errors.New("event already ingested")))
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), "rebuild", deps{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "rebuild"`)
	assert.Empty(t, out.String())
}
