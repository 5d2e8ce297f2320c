package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatList(t *testing.T) {
	t.Parallel()

	out := formatList([]string{"default", "Personal", "Work"}, "Work")
	assert.Equal(t, "  default\n  Personal\n* Work\n", out)
}

func TestFormatListDefaultActive(t *testing.T) {
	t.Parallel()

	out := formatList([]string{"default", "Work"}, "default")
	assert.Equal(t, "* default\n  Work\n", out)
}
