package appshell

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_DefaultsToHelp(t *testing.T) {
	var got []string
	code := Run(context.Background(), func(_ context.Context, argv []string, _, _ io.Writer) int {
		got = argv
		return 0
	}, nil, io.Discard, io.Discard)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"-h"}, got)
}

func TestRun_CancelledIsNonZero(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := Run(ctx, func(context.Context, []string, io.Writer, io.Writer) int { return 0 }, []string{"x"}, io.Discard, io.Discard)
	assert.Equal(t, ExitCancelled, code)

	code = Run(ctx, func(context.Context, []string, io.Writer, io.Writer) int { return 2 }, []string{"x"}, io.Discard, io.Discard)
	assert.Equal(t, 2, code, "a real failure code is kept")
}
