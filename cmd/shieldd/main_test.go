package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerStartCmd_ArgValidation(t *testing.T) {
	assert.NoError(t, timerStartCmd.Args(timerStartCmd, nil))
	assert.NoError(t, timerStartCmd.Args(timerStartCmd, []string{"focus"}))
	assert.NoError(t, timerStartCmd.Args(timerStartCmd, []string{"short-break"}))
	assert.NoError(t, timerStartCmd.Args(timerStartCmd, []string{"long-break"}))

	assert.Error(t, timerStartCmd.Args(timerStartCmd, []string{"bogus"}),
		"unknown session names must be rejected before reaching the store")
	assert.Error(t, timerStartCmd.Args(timerStartCmd, []string{"paused"}),
		"paused is a meta-state, not startable")
	assert.Error(t, timerStartCmd.Args(timerStartCmd, []string{"focus", "focus"}))
}
