package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName   xml.Name         `xml:"testsuites"`
	Name      string           `xml:"name,attr,omitempty"`
	Tests     int              `xml:"tests,attr"`
	Failures  int              `xml:"failures,attr"`
	Errors    int              `xml:"errors,attr"`
	Time      float64          `xml:"time,attr"`
	Timestamp string           `xml:"timestamp,attr,omitempty"`
	Suites    []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents one job
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents one step
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure represents a step failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// BuildJUnit converts a suite result to JUnit document form.
func BuildJUnit(result *runner.SuiteResult) *JUnitTestSuites {
	doc := &JUnitTestSuites{
		Name:      "flowright",
		Time:      result.Duration().Seconds(),
		Timestamp: result.StartedAt.Format(time.RFC3339),
	}

	for _, jr := range result.Jobs {
		suite := JUnitTestSuite{
			Name: jr.Name,
			Time: jr.Duration.Seconds(),
		}

		for _, sr := range jr.Steps {
			tc := JUnitTestCase{
				Name:      fmt.Sprintf("step %d: %s", sr.Index+1, sr.Action),
				ClassName: jr.Name,
				Time:      sr.Duration.Seconds(),
			}
			if !sr.OK {
				tc.Failure = &JUnitFailure{
					Message: sr.Error,
					Type:    "StepFailure",
					Content: sr.Error,
				}
				suite.Failures++
			}
			suite.Tests++
			suite.TestCases = append(suite.TestCases, tc)
		}

		// jobs that failed before any step ran still show up
		if len(jr.Steps) == 0 && !jr.OK {
			suite.Tests++
			suite.Failures++
			suite.TestCases = append(suite.TestCases, JUnitTestCase{
				Name:      "startup",
				ClassName: jr.Name,
				Failure: &JUnitFailure{
					Message: jr.Error,
					Type:    "JobError",
					Content: jr.Error,
				},
			})
		}

		doc.Tests += suite.Tests
		doc.Failures += suite.Failures
		doc.Suites = append(doc.Suites, suite)
	}
	return doc
}

// WriteJUnit encodes the suite result as JUnit XML.
func WriteJUnit(w io.Writer, result *runner.SuiteResult) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(BuildJUnit(result)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteJUnitFile writes the JUnit report to the given path.
func WriteJUnitFile(path string, result *runner.SuiteResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJUnit(f, result)
}
