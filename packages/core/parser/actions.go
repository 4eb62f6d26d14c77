package parser

import "sort"

// Built-in action kinds understood by the browser dispatcher. Any other
// action name falls through to the keyword registry.
const (
	ActionGoto                  = "goto"
	ActionClick                 = "click"
	ActionDoubleClick           = "doubleClick"
	ActionHover                 = "hover"
	ActionFill                  = "fill"
	ActionPress                 = "press"
	ActionSelectDate            = "selectDate"
	ActionSelectDropdown        = "selectDropdownByValue"
	ActionCheck                 = "check"
	ActionUncheck               = "uncheck"
	ActionScroll                = "scroll"
	ActionSwitchToWindow        = "switchToWindow"
	ActionGetText               = "getText"
	ActionGetAttribute          = "getAttribute"
	ActionDragAndDrop           = "dragAndDrop"
	ActionVerifyText            = "verifyElementText"
	ActionVerifyContainsText    = "verifyElementContainsText"
	ActionVerifyNotContainsText = "verifyElementNotContainsText"
	ActionVerifyValue           = "verifyElementValue"
	ActionVerifyVisible         = "verifyElementVisible"
	ActionVerifyHidden          = "verifyElementHidden"
	ActionVerifyEnabled         = "verifyElementEnabled"
	ActionVerifyDisabled        = "verifyElementDisabled"
	ActionVerifyChecked         = "verifyElementChecked"
	ActionVerifyAttribute       = "verifyElementAttribute"
	ActionVerifyCount           = "verifyElementCount"
	ActionVerifyPageTitle       = "verifyPageTitle"
)

var builtinActions = map[string]bool{
	ActionGoto:                  true,
	ActionClick:                 true,
	ActionDoubleClick:           true,
	ActionHover:                 true,
	ActionFill:                  true,
	ActionPress:                 true,
	ActionSelectDate:            true,
	ActionSelectDropdown:        true,
	ActionCheck:                 true,
	ActionUncheck:               true,
	ActionScroll:                true,
	ActionSwitchToWindow:        true,
	ActionGetText:               true,
	ActionGetAttribute:          true,
	ActionDragAndDrop:           true,
	ActionVerifyText:            true,
	ActionVerifyContainsText:    true,
	ActionVerifyNotContainsText: true,
	ActionVerifyValue:           true,
	ActionVerifyVisible:         true,
	ActionVerifyHidden:          true,
	ActionVerifyEnabled:         true,
	ActionVerifyDisabled:        true,
	ActionVerifyChecked:         true,
	ActionVerifyAttribute:       true,
	ActionVerifyCount:           true,
	ActionVerifyPageTitle:       true,
}

// IsBuiltinAction reports whether name is a built-in step action.
func IsBuiltinAction(name string) bool {
	return builtinActions[name]
}

// BuiltinActions returns the sorted names of every built-in action.
func BuiltinActions() []string {
	out := make([]string, 0, len(builtinActions))
	for name := range builtinActions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
