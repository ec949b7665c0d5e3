package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandStatusIsTerminal(t *testing.T) {
	terminal := []CommandStatus{
		CommandStatusCompleted, CommandStatusFailed, CommandStatusTimedOut, CommandStatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}

	open := []CommandStatus{CommandStatusPending, CommandStatusSent, CommandStatusRunning}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestValidScriptType(t *testing.T) {
	for _, st := range []ScriptType{ScriptTypePowershell, ScriptTypeCmd, ScriptTypeBash, ScriptTypeSh} {
		assert.True(t, ValidScriptType(st))
	}

	assert.False(t, ValidScriptType("zsh"))
	assert.False(t, ValidScriptType(""))
}
