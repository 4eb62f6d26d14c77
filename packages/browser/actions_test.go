package browser

import (
	"testing"

	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
)

func testExecutor() *Executor {
	return NewExecutor(config.DefaultConfig(), nil, nil, nil)
}

func TestKeyForName(t *testing.T) {
	assert.Equal(t, kb.Enter, keyForName("Enter"))
	assert.Equal(t, kb.Enter, keyForName("enter"))
	assert.Equal(t, kb.Tab, keyForName(" Tab "))
	assert.Equal(t, kb.ArrowDown, keyForName("ArrowDown"))
	assert.Equal(t, " ", keyForName("Space"))
	assert.Equal(t, "a", keyForName("a"), "unknown names pass through as literals")
}

func TestElementActionRejectsUnsupported(t *testing.T) {
	e := testExecutor()
	_, err := e.elementAction(&parser.Step{Action: "teleport"}, nil)
	assert.ErrorContains(t, err, "unsupported action")
}

func TestElementActionValidation(t *testing.T) {
	e := testExecutor()

	_, err := e.elementAction(&parser.Step{Action: parser.ActionGetAttribute}, nil)
	assert.ErrorContains(t, err, "attributeName")

	_, err = e.elementAction(&parser.Step{Action: parser.ActionDragAndDrop}, nil)
	assert.ErrorContains(t, err, "targetSelector")

	_, err = e.elementAction(&parser.Step{Action: parser.ActionVerifyCount, Value: "many"}, nil)
	assert.ErrorContains(t, err, "numeric")

	_, err = e.elementAction(&parser.Step{Action: parser.ActionVerifyAttribute}, nil)
	assert.ErrorContains(t, err, "attributeName or a JSON object")
}

func TestElementActionAcceptsAttributeForms(t *testing.T) {
	e := testExecutor()

	// single attributeName/value pair
	act, err := e.elementAction(&parser.Step{
		Action:        parser.ActionVerifyAttribute,
		AttributeName: "href",
		Value:         "/home",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, act)

	// JSON object form
	act, err = e.elementAction(&parser.Step{
		Action: parser.ActionVerifyAttribute,
		Value:  `{"href": "/home", "target": "_blank"}`,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, act)
}

func TestHealRefForStep(t *testing.T) {
	assert.Equal(t, "$login", healRefForStep(&parser.Step{SelectorRef: "$login"}))
	assert.Equal(t, "$login", healRefForStep(&parser.Step{Selectors: []string{"$login", "#login"}}))
	assert.Equal(t, "", healRefForStep(&parser.Step{Selectors: []string{"#login"}}))
	assert.Equal(t, "", healRefForStep(&parser.Step{}))
}

func TestFrameResolutionErrorMessage(t *testing.T) {
	err := &FrameResolutionError{Selector: "#payframe", Err: assert.AnError}
	assert.Contains(t, err.Error(), "#payframe")
	assert.ErrorIs(t, err, assert.AnError)
}
