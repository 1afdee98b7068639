package verify

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deepguide-ai/dg/internal/replay"
)

// JUnitTestSuites is the root element of JUnit XML output.
type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite holds the demos of one project.
type JUnitTestSuite struct {
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       string          `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	Cases      []JUnitTestCase `xml:"testcase"`
}

// JUnitProperty is a name/value pair attached to a suite.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitTestCase is one demo.
type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a failed demo.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a skipped demo.
type JUnitSkipped struct {
	Message string `xml:"message,attr"`
}

// FormatJUnit writes the report as JUnit XML, one test case per demo. If
// report.StartedAt is zero the current time is used for the suite timestamp.
func FormatJUnit(w io.Writer, report *Report) error {
	timestamp := report.StartedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var total time.Duration
	cases := make([]JUnitTestCase, len(report.Entries))
	for i, e := range report.Entries {
		d := time.Duration(e.DurationMS) * time.Millisecond
		total += d

		tc := JUnitTestCase{
			Name:      e.Name,
			Classname: "dg." + report.Project,
			Time:      seconds(d),
		}
		switch e.Status {
		case replay.StatusFailed:
			tc.Failure = &JUnitFailure{
				Message: e.Reason,
				Type:    "ValidationFailure",
				Content: failureDetail(e),
			}
		case replay.StatusSkipped:
			tc.Skipped = &JUnitSkipped{Message: e.Reason}
		case replay.StatusPassed:
			tc.SystemOut = e.Output
		}
		cases[i] = tc
	}

	suites := JUnitTestSuites{
		Name:     "dg",
		Tests:    report.Total,
		Failures: report.Failed,
		Errors:   0,
		Time:     seconds(total),
		Suites: []JUnitTestSuite{
			{
				Name:       report.Project,
				Tests:      report.Total,
				Failures:   report.Failed,
				Errors:     0,
				Skipped:    report.Skipped,
				Time:       seconds(total),
				Timestamp:  timestamp.Format(time.RFC3339),
				Properties: []JUnitProperty{{Name: "run_id", Value: report.RunID}},
				Cases:      cases,
			},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suites); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func failureDetail(e Entry) string {
	var sb strings.Builder
	if e.Command != "" {
		fmt.Fprintf(&sb, "command: %s\n", e.Command)
	}
	if e.ExitCode != nil {
		fmt.Fprintf(&sb, "exit code: %d\n", *e.ExitCode)
	}
	sb.WriteString(e.Reason)
	return sb.String()
}
