package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	client := NewClient("https://dev.azure.com/acme/", "Quality", "secret-pat")
	require.NotNil(t, client)

	assert.Equal(t, "https://dev.azure.com/acme", client.orgURL)
	assert.Equal(t, defaultAPIVersion, client.apiVersion)
	assert.NotNil(t, client.httpClient)
}

func TestNewClient_Options(t *testing.T) {
	t.Parallel()

	custom := &http.Client{Timeout: 5 * time.Second}
	client := NewClient("https://dev.azure.com/acme", "Quality", "pat",
		WithHTTPClient(custom),
		WithAPIVersion("7.0"),
	)

	assert.Equal(t, custom, client.httpClient)
	assert.Equal(t, "7.0", client.apiVersion)
}

func TestListPoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Quality/_apis/test/Plans/10/Suites/20/points", r.URL.Path)
		assert.Equal(t, "7.1", r.URL.Query().Get("api-version"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Empty(t, user)
		assert.Equal(t, "secret-pat", pass)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 2,
			"value": [
				{
					"id": 101,
					"suiteId": "20",
					"state": "Ready",
					"outcome": "Active",
					"isAutomated": true,
					"testCase": {"id": "501", "name": "Login Success"},
					"configuration": {"id": "3", "name": "Windows 11"},
					"assignedTo": {"displayName": "Dana"},
					"lastTestRun": {"id": "900"},
					"lastResult": {"id": "9000"},
					"testPlan": {"id": "10"}
				},
				{
					"id": 102,
					"state": "Ready",
					"outcome": "Failed",
					"isAutomated": false,
					"testCase": {"id": "502", "name": "Logout"}
				}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "secret-pat")

	points, err := client.ListPoints(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, points, 2)

	first := points[0]
	assert.Equal(t, 101, first.ID)
	assert.Equal(t, 10, first.PlanID)
	assert.Equal(t, 20, first.SuiteID)
	assert.Equal(t, 501, first.TestCaseID)
	assert.Equal(t, "Login Success", first.TestCaseName)
	assert.Equal(t, "Windows 11", first.Configuration)
	assert.Equal(t, "Dana", first.AssignedTo)
	assert.Equal(t, "Ready", first.State)
	assert.Equal(t, Outcome("Active"), first.Outcome)
	assert.True(t, first.Automated)
	assert.Equal(t, 900, first.LastTestRunID)
	assert.Equal(t, 9000, first.LastResultID)

	// Missing suiteId/testPlan fall back to the request's scope.
	second := points[1]
	assert.Equal(t, 20, second.SuiteID)
	assert.Equal(t, 10, second.PlanID)
	assert.True(t, second.Outcome.Is(OutcomeFailed))
}

func TestListSuites(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Quality/_apis/testplan/Plans/10/suites", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"value": [
				{"id": 20, "name": "Regression", "suiteType": "staticTestSuite",
				 "parentSuite": {"id": "19"}, "plan": {"id": "10"}},
				{"id": 21, "name": "Smoke", "suiteType": "dynamicTestSuite"}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "pat")

	suites, err := client.ListSuites(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, suites, 2)

	assert.Equal(t, TestSuite{ID: 20, Name: "Regression", Type: "staticTestSuite", ParentID: 19, PlanID: 10}, suites[0])
	assert.Equal(t, "Smoke", suites[1].Name)
}

func TestListPlanPoints_SkipsEmptySuites(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/Quality/_apis/testplan/Plans/10/suites":
			fmt.Fprint(w, `{"value": [{"id": 20, "name": "Full"}, {"id": 21, "name": "Empty"}]}`)
		case "/Quality/_apis/test/Plans/10/Suites/20/points":
			fmt.Fprint(w, `{"value": [{"id": 1, "testCase": {"id": "5", "name": "A"}}]}`)
		case "/Quality/_apis/test/Plans/10/Suites/21/points":
			fmt.Fprint(w, `{"value": []}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "pat")

	all, err := client.ListPlanPoints(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, all, 1)

	assert.Equal(t, "Full", all[0].Suite.Name)
	require.Len(t, all[0].Points, 1)
	assert.Equal(t, "A", all[0].Points[0].TestCaseName)
}

func TestUpdatePoint(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/Quality/_apis/test/Plans/10/Suites/20/points/101", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id": 101, "outcome": "Passed"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "pat")

	err := client.UpdatePoint(context.Background(), 10, 20, 101, OutcomePassed, "synced from CI")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"outcome": "Passed", "comment": "synced from CI"}, gotBody)
}

func TestUpdatePoint_OmitsEmptyComment(t *testing.T) {
	t.Parallel()

	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "pat")

	require.NoError(t, client.UpdatePoint(context.Background(), 10, 20, 101, OutcomeBlocked, ""))

	assert.Equal(t, "Blocked", raw["outcome"])
	_, hasComment := raw["comment"]
	assert.False(t, hasComment, "empty comment must not be sent")
}

func TestUpdatePoint_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message": "point is locked"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "pat")

	err := client.UpdatePoint(context.Background(), 10, 20, 101, OutcomePassed, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Op, "update point 101")
	assert.Contains(t, apiErr.Body, "point is locked")
	assert.False(t, IsSystemic(err))
}

func TestGetTestCaseDetails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Quality/_apis/wit/workitems/501", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("$expand"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": 501,
			"fields": {
				"System.Title": "Login Success",
				"System.State": "Design",
				"System.AssignedTo": {"displayName": "Dana"},
				"System.CreatedBy": {"displayName": "Robin"},
				"System.CreatedDate": "2024-02-10T08:30:00Z",
				"Microsoft.VSTS.Common.Priority": 2,
				"Microsoft.VSTS.TCM.AutomationStatus": "Automated",
				"Microsoft.VSTS.TCM.Steps": "<steps id=\"0\"><step id=\"1\" type=\"ActionStep\"/><step id=\"2\" type=\"ValidateStep\"/></steps>"
			},
			"_links": {"html": {"href": "https://dev.azure.com/acme/w/501"}}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Quality", "pat")

	details, err := client.GetTestCaseDetails(context.Background(), 501)
	require.NoError(t, err)

	assert.Equal(t, 501, details.ID)
	assert.Equal(t, "Login Success", details.Title)
	assert.Equal(t, "Design", details.State)
	assert.Equal(t, 2, details.Priority)
	assert.Equal(t, "Automated", details.AutomationStatus)
	assert.Equal(t, "Dana", details.AssignedTo)
	assert.Equal(t, "Robin", details.CreatedBy)
	assert.Equal(t, 2, details.StepCount)
	assert.Equal(t, "https://dev.azure.com/acme/w/501", details.URL)
	assert.Equal(t, time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC), details.CreatedAt.UTC())
}

func TestIsSystemic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: true},
		{name: "forbidden", status: http.StatusForbidden, want: true},
		{name: "not found", status: http.StatusNotFound, want: false},
		{name: "conflict", status: http.StatusConflict, want: false},
		{name: "server error", status: http.StatusInternalServerError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := &APIError{Op: "update point 1", StatusCode: tt.status}
			assert.Equal(t, tt.want, IsSystemic(err))
		})
	}

	assert.False(t, IsSystemic(nil))
}

func TestIsSystemic_TransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	// Plain client: the retrying default would spend seconds backing off.
	client := NewClient(server.URL, "Quality", "pat", WithHTTPClient(&http.Client{}))

	_, err := client.ListPoints(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, IsSystemic(err))
}

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Outcome
		wantErr bool
	}{
		{in: "Passed", want: OutcomePassed},
		{in: "passed", want: OutcomePassed},
		{in: "BLOCKED", want: OutcomeBlocked},
		{in: "notapplicable", want: OutcomeNotApplicable},
		{in: "None", want: OutcomeNone},
		{in: "bogus", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOutcome(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountSteps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, countSteps(""))
	assert.Equal(t, 2, countSteps(`<steps><step id="1"/><step id="2"/></steps>`))
	// The field is HTML-ish in practice; unclosed elements still count.
	assert.Equal(t, 1, countSteps(`<steps><step id="1"><br></steps>`))
	assert.Equal(t, 0, countSteps("not xml at all"))
}
