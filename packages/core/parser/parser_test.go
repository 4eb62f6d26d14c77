package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StepList(t *testing.T) {
	data := []byte(`[
		{"action": "goto", "url": "https://example.com"},
		{"action": "click", "selectors": ["#submit", "button[type=submit]"]}
	]`)

	jobs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Len(t, jobs[0].Steps, 2)
	assert.Equal(t, "goto", jobs[0].Steps[0].Action)
	assert.Equal(t, []string{"#submit", "button[type=submit]"}, jobs[0].Steps[1].Selectors)
}

func TestParse_JobList(t *testing.T) {
	data := []byte(`[
		{"name": "login", "steps": [{"action": "goto", "url": "https://example.com/login"}]},
		{"name": "signup", "steps": [{"action": "goto", "url": "https://example.com/signup"}]}
	]`)

	jobs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "login", jobs[0].Name)
	assert.Equal(t, "signup", jobs[1].Name)
	require.Len(t, jobs[1].Steps, 1)
}

func TestParse_LegacyBatch(t *testing.T) {
	data := []byte(`[
		[{"action": "goto", "url": "https://a.test"}],
		[{"action": "goto", "url": "https://b.test"}, {"action": "scroll"}]
	]`)

	jobs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Empty(t, jobs[0].Name)
	assert.Len(t, jobs[1].Steps, 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"not an array", `{"action": "goto"}`},
		{"empty array", `[]`},
		{"scalar items", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestStep_Clone(t *testing.T) {
	orig := &Step{
		Action:    "click",
		Selectors: []string{"#a", "#b"},
		FrameInfo: []FrameInfo{{Index: 0, FrameSelector: "#frame"}},
	}

	clone := orig.Clone()
	clone.Selectors[0] = "#mutated"
	clone.FrameInfo[0].FrameSelector = "#other"

	assert.Equal(t, "#a", orig.Selectors[0])
	assert.Equal(t, "#frame", orig.FrameInfo[0].FrameSelector)
}

func TestJob_Clone(t *testing.T) {
	orig := &Job{Name: "j", Steps: []*Step{{Action: "click", Selectors: []string{"#a"}}}}
	clone := orig.Clone()
	clone.Steps[0].Selectors[0] = "#mutated"
	assert.Equal(t, "#a", orig.Steps[0].Selectors[0])
}

func TestValidate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		errs, err := Validate([]byte(`[{"action": "goto", "url": "https://example.com"}]`))
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("missing action", func(t *testing.T) {
		errs, err := Validate([]byte(`[{"selectors": ["#a"]}]`))
		require.NoError(t, err)
		assert.NotEmpty(t, errs)
	})

	t.Run("valid job payload", func(t *testing.T) {
		errs, err := Validate([]byte(`[{"name": "j", "steps": [{"action": "scroll"}]}]`))
		require.NoError(t, err)
		assert.Empty(t, errs)
	})
}

func TestIsBuiltinAction(t *testing.T) {
	assert.True(t, IsBuiltinAction(ActionClick))
	assert.True(t, IsBuiltinAction(ActionVerifyPageTitle))
	assert.False(t, IsBuiltinAction("myCustomKeyword"))
}
