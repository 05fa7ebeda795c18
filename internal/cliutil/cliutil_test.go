package cliutil

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFlagsAndPositionals(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	var b bool
	var s string
	fs.BoolVar(&b, "bool", false, "")
	fs.StringVar(&s, "str", "", "")
	flagArgs, posArgs := SplitFlagsAndPositionals(fs, []string{"--bool", "pos1", "--str", "v", "-", "--", "pos2", "--bool"})
	assert.Equal(t, []string{"--bool", "--str", "v"}, flagArgs)
	assert.Equal(t, []string{"pos1", "-", "pos2", "--bool"}, posArgs)
}

func TestFillPositionals(t *testing.T) {
	a, b, c := "", "set", ""
	require.NoError(t, FillPositionals([]string{"x", "y"}, &a, &b, &c))
	assert.Equal(t, []string{"x", "set", "y"}, []string{a, b, c})

	a, b = "", ""
	require.NoError(t, FillPositionals([]string{"only"}, &a, &b))
	assert.Equal(t, "only", a)
	assert.Empty(t, b)

	a = ""
	err := FillPositionals([]string{"1", "2"}, &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2")
}
