package junitxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoTestCases is returned when a document parses cleanly but contains
// zero testcase elements.
var ErrNoTestCases = errors.New("no test cases found")

// ParseError reports a document that could not be parsed as XML at all.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed XML: %v", e.Err)
	}
	return fmt.Sprintf("malformed XML in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Wire types mirror the JUnit schema closely enough for both JUnit and
// pytest producers. Suites may nest.
type xmlSuites struct {
	Suites []xmlSuite `xml:"testsuite"`
}

type xmlSuite struct {
	Name      string     `xml:"name,attr"`
	Timestamp string     `xml:"timestamp,attr"`
	Suites    []xmlSuite `xml:"testsuite"`
	Cases     []xmlCase  `xml:"testcase"`
}

type xmlCase struct {
	Name      string     `xml:"name,attr"`
	Classname string     `xml:"classname,attr"`
	Time      string     `xml:"time,attr"`
	Failure   *xmlMarker `xml:"failure"`
	Error     *xmlMarker `xml:"error"`
	Skipped   *xmlMarker `xml:"skipped"`
}

type xmlMarker struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// Parse reads one XML document and returns its test outcomes in a stable
// order: suites as written, each suite's direct testcases before those of
// its nested suites. The root element may be either <testsuites> or a bare
// <testsuite>. Returns a *ParseError for non-XML input and ErrNoTestCases
// when the document holds no testcase elements.
func Parse(r io.Reader) ([]TestOutcome, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	return parseDoc(data, "")
}

// ParseFile parses a single results file.
func ParseFile(path string) (FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("reading results: %w", err)
	}
	outcomes, err := parseDoc(data, path)
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{Path: path, Outcomes: outcomes}, nil
}

// ParseGlobs resolves each pattern (doublestar syntax, ** supported) and
// parses every matched file, in pattern order then lexical order within a
// pattern. A pattern matching no files is an error, as is any file that
// fails to parse. Duplicate matches across patterns are read once.
func ParseGlobs(patterns []string) ([]FileResult, error) {
	seen := make(map[string]bool)
	var files []FileResult
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad results pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		sort.Strings(matches)
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			fr, err := ParseFile(path)
			if err != nil {
				return nil, err
			}
			files = append(files, fr)
		}
	}
	return files, nil
}

// Outcomes flattens file results into one ordered slice.
func Outcomes(files []FileResult) []TestOutcome {
	var all []TestOutcome
	for _, fr := range files {
		all = append(all, fr.Outcomes...)
	}
	return all
}

func parseDoc(data []byte, path string) ([]TestOutcome, error) {
	root, err := rootName(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var suites []xmlSuite
	switch root {
	case "testsuites":
		var doc xmlSuites
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		suites = doc.Suites
	case "testsuite":
		var doc xmlSuite
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		suites = []xmlSuite{doc}
	default:
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unexpected root element <%s>", root)}
	}

	var outcomes []TestOutcome
	for _, s := range suites {
		collectSuite(s, time.Time{}, &outcomes)
	}
	if len(outcomes) == 0 {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, ErrNoTestCases)
		}
		return nil, ErrNoTestCases
	}
	return outcomes, nil
}

// rootName peeks at the first start element without decoding the body.
func rootName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func collectSuite(s xmlSuite, parentStamp time.Time, out *[]TestOutcome) {
	stamp := parentStamp
	if s.Timestamp != "" {
		// Producers disagree on timestamp format; take whatever parses.
		if t, err := dateparse.ParseAny(s.Timestamp); err == nil {
			stamp = t
		}
	}
	for _, c := range s.Cases {
		*out = append(*out, caseOutcome(c, s.Name, stamp))
	}
	for _, child := range s.Suites {
		collectSuite(child, stamp, out)
	}
}

func caseOutcome(c xmlCase, suite string, stamp time.Time) TestOutcome {
	o := TestOutcome{
		Name:       c.Name,
		ClassName:  c.Classname,
		Suite:      suite,
		Duration:   parseSeconds(c.Time),
		Status:     StatusPassed,
		ExecutedAt: stamp,
	}
	switch {
	case c.Failure != nil:
		o.Status = StatusFailed
		o.FailureMessage = markerText(c.Failure)
	case c.Error != nil:
		o.Status = StatusError
		o.FailureMessage = markerText(c.Error)
	case c.Skipped != nil:
		o.Status = StatusSkipped
		o.FailureMessage = markerText(c.Skipped)
	}
	return o
}

func markerText(m *xmlMarker) string {
	if m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(m.Body)
}

func parseSeconds(attr string) time.Duration {
	if attr == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(attr), 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
