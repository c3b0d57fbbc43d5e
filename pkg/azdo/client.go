// Package azdo is a typed client for the Azure DevOps test management REST
// API: test plan suites, test points, point outcome updates, and the
// work-item metadata behind test cases.
package azdo

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultAPIVersion = "7.1"

// Client talks to one Azure DevOps organization/project. Authentication is
// a personal access token sent as the password of an empty-username basic
// auth header.
type Client struct {
	orgURL     string
	project    string
	pat        string
	apiVersion string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default retrying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// NewClient creates a client for the given organization URL, project and
// personal access token.
func NewClient(orgURL, project, pat string, opts ...ClientOption) *Client {
	client := &Client{
		orgURL:     strings.TrimRight(orgURL, "/"),
		project:    project,
		pat:        pat,
		apiVersion: defaultAPIVersion,
		httpClient: defaultHTTPClient(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// defaultHTTPClient retries transient failures (429, 5xx, connection resets)
// with backoff so a flaky service does not fail a whole run.
func defaultHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	return rc.StandardClient()
}

// ListSuites fetches every suite of a plan.
func (c *Client) ListSuites(ctx context.Context, planID int) ([]TestSuite, error) {
	endpoint := fmt.Sprintf("%s/testplan/Plans/%d/suites?api-version=%s", c.baseURL(), planID, c.apiVersion)
	op := fmt.Sprintf("list suites for plan %d", planID)

	var envelope struct {
		Value []wireSuite `json:"value"`
	}
	if err := c.getJSON(ctx, op, endpoint, &envelope); err != nil {
		return nil, err
	}

	suites := make([]TestSuite, 0, len(envelope.Value))
	for _, w := range envelope.Value {
		suites = append(suites, TestSuite{
			ID:       w.ID,
			Name:     w.Name,
			Type:     w.SuiteType,
			ParentID: int(w.ParentSuite.ID),
			PlanID:   int(w.Plan.ID),
		})
	}
	return suites, nil
}

// ListPoints fetches the test points of one suite.
func (c *Client) ListPoints(ctx context.Context, planID, suiteID int) ([]TestPoint, error) {
	endpoint := fmt.Sprintf("%s/test/Plans/%d/Suites/%d/points?api-version=%s", c.baseURL(), planID, suiteID, c.apiVersion)
	op := fmt.Sprintf("list points for suite %d", suiteID)

	var envelope struct {
		Value []wirePoint `json:"value"`
	}
	if err := c.getJSON(ctx, op, endpoint, &envelope); err != nil {
		return nil, err
	}

	points := make([]TestPoint, 0, len(envelope.Value))
	for _, w := range envelope.Value {
		p := TestPoint{
			ID:            w.ID,
			PlanID:        int(w.TestPlan.ID),
			SuiteID:       int(w.SuiteID),
			TestCaseID:    int(w.TestCase.ID),
			TestCaseName:  w.TestCase.Name,
			Configuration: w.Configuration.Name,
			AssignedTo:    w.AssignedTo.DisplayName,
			State:         w.State,
			Outcome:       Outcome(w.Outcome),
			Automated:     w.IsAutomated,
			LastTestRunID: int(w.LastTestRun.ID),
			LastResultID:  int(w.LastResult.ID),
		}
		if p.SuiteID == 0 {
			p.SuiteID = suiteID
		}
		if p.PlanID == 0 {
			p.PlanID = planID
		}
		points = append(points, p)
	}
	return points, nil
}

// ListPlanPoints fetches points for every suite of a plan, in the service's
// suite order. Suites with no points are skipped.
func (c *Client) ListPlanPoints(ctx context.Context, planID int) ([]SuitePoints, error) {
	suites, err := c.ListSuites(ctx, planID)
	if err != nil {
		return nil, err
	}

	var all []SuitePoints
	for _, suite := range suites {
		points, err := c.ListPoints(ctx, planID, suite.ID)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			continue
		}
		all = append(all, SuitePoints{Suite: suite, Points: points})
	}
	return all, nil
}

// UpdatePoint sets the outcome of a single test point. The comment is sent
// only when non-empty.
func (c *Client) UpdatePoint(ctx context.Context, planID, suiteID, pointID int, outcome Outcome, comment string) error {
	endpoint := fmt.Sprintf("%s/test/Plans/%d/Suites/%d/points/%d?api-version=%s",
		c.baseURL(), planID, suiteID, pointID, c.apiVersion)
	op := fmt.Sprintf("update point %d", pointID)

	payload := struct {
		Outcome string `json:"outcome"`
		Comment string `json:"comment,omitempty"`
	}{Outcome: string(outcome), Comment: comment}

	return c.do(ctx, op, http.MethodPatch, endpoint, payload, nil)
}

// GetTestCaseDetails fetches the work item behind a test case.
func (c *Client) GetTestCaseDetails(ctx context.Context, testCaseID int) (*TestCaseDetails, error) {
	endpoint := fmt.Sprintf("%s/wit/workitems/%d?$expand=all&api-version=%s", c.baseURL(), testCaseID, c.apiVersion)
	op := fmt.Sprintf("get test case %d", testCaseID)

	var w wireWorkItem
	if err := c.getJSON(ctx, op, endpoint, &w); err != nil {
		return nil, err
	}

	details := &TestCaseDetails{
		ID:               w.ID,
		Title:            w.Fields.Title,
		State:            w.Fields.State,
		Priority:         w.Fields.Priority,
		AutomationStatus: w.Fields.AutomationStatus,
		AssignedTo:       w.Fields.AssignedTo.DisplayName,
		CreatedBy:        w.Fields.CreatedBy.DisplayName,
		StepCount:        countSteps(w.Fields.Steps),
		URL:              w.Links.HTML.Href,
	}
	if w.Fields.CreatedDate != "" {
		if t, err := dateparse.ParseAny(w.Fields.CreatedDate); err == nil {
			details.CreatedAt = t
		}
	}
	return details, nil
}

func (c *Client) baseURL() string {
	return c.orgURL + "/" + url.PathEscape(c.project) + "/_apis"
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	return c.do(ctx, op, http.MethodGet, endpoint, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.SetBasicAuth("", c.pat)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", op, err)
	}
	if resp.StatusCode >= 400 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncateBody(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decoding response: %w", op, err)
		}
	}
	return nil
}

func truncateBody(data []byte) string {
	const max = 512
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// refID tolerates the API's habit of sending numeric ids as JSON strings in
// shallow references.
type refID int

func (id *refID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("numeric id %q: %w", s, err)
	}
	*id = refID(n)
	return nil
}

type wireRef struct {
	ID   refID  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type wireIdentity struct {
	DisplayName string `json:"displayName"`
}

type wireSuite struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	SuiteType   string  `json:"suiteType"`
	ParentSuite wireRef `json:"parentSuite"`
	Plan        wireRef `json:"plan"`
}

type wirePoint struct {
	ID            int          `json:"id"`
	SuiteID       refID        `json:"suiteId"`
	State         string       `json:"state"`
	Outcome       string       `json:"outcome"`
	IsAutomated   bool         `json:"isAutomated"`
	TestCase      wireRef      `json:"testCase"`
	Configuration wireRef      `json:"configuration"`
	AssignedTo    wireIdentity `json:"assignedTo"`
	LastTestRun   wireRef      `json:"lastTestRun"`
	LastResult    wireRef      `json:"lastResult"`
	TestPlan      wireRef      `json:"testPlan"`
}

type wireWorkItem struct {
	ID     int                `json:"id"`
	Fields wireWorkItemFields `json:"fields"`
	Links  struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}

type wireWorkItemFields struct {
	Title            string       `json:"System.Title"`
	State            string       `json:"System.State"`
	AssignedTo       wireIdentity `json:"System.AssignedTo"`
	CreatedBy        wireIdentity `json:"System.CreatedBy"`
	CreatedDate      string       `json:"System.CreatedDate"`
	Priority         int          `json:"Microsoft.VSTS.Common.Priority"`
	AutomationStatus string       `json:"Microsoft.VSTS.TCM.AutomationStatus"`
	Steps            string       `json:"Microsoft.VSTS.TCM.Steps"`
}

// countSteps counts step elements in the work item's steps field, which
// holds loosely-formed XML.
func countSteps(stepsXML string) int {
	if stepsXML == "" {
		return 0
	}
	dec := xml.NewDecoder(strings.NewReader(stepsXML))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	count := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok && strings.EqualFold(se.Name.Local, "step") {
			count++
		}
	}
	return count
}
