package parser

// FrameInfo describes one hop of an iframe chain. Descriptors are walked in
// ascending Index order from the job's top-level page.
type FrameInfo struct {
	Index         int    `json:"index"`
	FrameSelector string `json:"frameSelector"`
}

// Step is one declarative browser action. Selectors is ordered with the
// primary candidate first; fallback candidates follow.
type Step struct {
	Action         string      `json:"action"`
	Selectors      []string    `json:"selectors,omitempty"`
	Value          string      `json:"value,omitempty"`
	URL            string      `json:"url,omitempty"`
	SelectorRef    string      `json:"selectorRef,omitempty"`
	ObjectFolderID string      `json:"object-folder-id,omitempty"`
	InIframe       bool        `json:"inIframe,omitempty"`
	FrameInfo      []FrameInfo `json:"frameInfo,omitempty"`
	StoreAs        string      `json:"store_as,omitempty"`
	TargetSelector string      `json:"targetSelector,omitempty"`
	AttributeName  string      `json:"attributeName,omitempty"`
	Hash           string      `json:"hash,omitempty"`
}

// Job is one independent ordered sequence of steps, executed against its own
// browser session.
type Job struct {
	Name  string  `json:"name,omitempty"`
	Steps []*Step `json:"steps"`
}

// Clone returns a deep copy of the step. Concurrent jobs must never share
// mutable step state, so every execution works on clones.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	out := *s
	if s.Selectors != nil {
		out.Selectors = make([]string, len(s.Selectors))
		copy(out.Selectors, s.Selectors)
	}
	if s.FrameInfo != nil {
		out.FrameInfo = make([]FrameInfo, len(s.FrameInfo))
		copy(out.FrameInfo, s.FrameInfo)
	}
	return &out
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := &Job{Name: j.Name, Steps: make([]*Step, len(j.Steps))}
	for i, s := range j.Steps {
		out.Steps[i] = s.Clone()
	}
	return out
}
