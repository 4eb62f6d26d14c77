package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Parse normalizes a JSON payload into a list of jobs. Accepted shapes:
// a list of steps, a list of step lists, or a list of job objects.
func Parse(data []byte) ([]*Job, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON payload")
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("payload must be a JSON array")
	}

	arr := root.Array()
	if len(arr) == 0 {
		return nil, fmt.Errorf("payload contains no steps or jobs")
	}

	first := arr[0]
	switch {
	case first.IsArray():
		// legacy batch: list of step lists
		var batch [][]*Step
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parsing step batch: %w", err)
		}
		jobs := make([]*Job, len(batch))
		for i, steps := range batch {
			jobs[i] = &Job{Steps: steps}
		}
		return jobs, nil

	case first.IsObject() && first.Get("steps").Exists():
		var jobs []*Job
		if err := json.Unmarshal(data, &jobs); err != nil {
			return nil, fmt.Errorf("parsing jobs: %w", err)
		}
		return jobs, nil

	case first.IsObject():
		var steps []*Step
		if err := json.Unmarshal(data, &steps); err != nil {
			return nil, fmt.Errorf("parsing steps: %w", err)
		}
		return []*Job{{Steps: steps}}, nil

	default:
		return nil, fmt.Errorf("unrecognized payload shape: array of %s", first.Type)
	}
}

// ParseFile reads and normalizes a steps/jobs file.
func ParseFile(path string) ([]*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}
