package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
)

func TestEngine_WarnRule(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{
			Name:    "missing-datasheet",
			Expr:    `part.datasheet_url == ""`,
			Action:  ActionWarn,
			Message: "part has no datasheet",
		},
	})
	require.NoError(t, err)

	warnings, err := engine.Evaluate(part.Part{Name: "R1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"part has no datasheet"}, warnings)

	warnings, err = engine.Evaluate(part.Part{Name: "R1", DatasheetURL: "https://example.com/ds.pdf"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestEngine_RejectRule(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{
			Name:    "no-manufacturer",
			Expr:    `part.manufacturer == ""`,
			Action:  ActionReject,
			Message: "manufacturer is required",
		},
	})
	require.NoError(t, err)

	_, err = engine.Evaluate(part.Part{Name: "R1"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "manufacturer is required", appErr.Message)
}

func TestEngine_DefaultsAndErrors(t *testing.T) {
	// Missing action defaults to warn, missing message is synthesized.
	engine, err := NewEngine([]Rule{{Name: "noname", Expr: `part.name == ""`}})
	require.NoError(t, err)

	warnings, err := engine.Evaluate(part.Part{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "noname")

	// Broken expression is a configuration error.
	_, err = NewEngine([]Rule{{Name: "broken", Expr: `part.name ==`}})
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))

	// Unknown action is a configuration error.
	_, err = NewEngine([]Rule{{Name: "bad", Expr: `true`, Action: "explode"}})
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestEngine_NilIsNoRules(t *testing.T) {
	var engine *Engine
	warnings, err := engine.Evaluate(part.Part{})
	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, engine.Len())
}
