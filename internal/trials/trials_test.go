// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trials

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-graph/pkg/types"
)

const studiesJSON = `{
  "studies": [
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT00000001", "briefTitle": "Adult lung cancer trial"},
        "statusModule": {"overallStatus": "RECRUITING"},
        "descriptionModule": {"briefSummary": "A summary."},
        "conditionsModule": {"conditions": ["Lung Cancer"]},
        "designModule": {"phases": ["PHASE2"]},
        "eligibilityModule": {
          "eligibilityCriteria": "Adults only",
          "healthyVolunteers": false,
          "sex": "ALL",
          "minimumAge": "18 Years",
          "maximumAge": "75 Years",
          "stdAges": ["ADULT", "OLDER_ADULT"]
        },
        "contactsLocationsModule": {"locations": [
          {"facility": "General Hospital", "city": "Boston", "state": "Massachusetts", "zip": "02114", "country": "United States"},
          {"facility": "Other", "city": "Chicago"}
        ]}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT00000002", "briefTitle": "Pediatric trial"},
        "eligibilityModule": {"minimumAge": "6 Months", "maximumAge": "17 Years"}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT00000003", "briefTitle": "Open age trial"},
        "eligibilityModule": {"minimumAge": "N/A"}
      }
    }
  ]
}`

func TestQuery(t *testing.T) {
	q := Query(Filter{
		Condition:       "Lung cancer",
		Sex:             "FEMALE",
		Location:        "Boston Massachusetts",
		SortByRelevance: true,
		PageSize:        5000,
	})
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "1000", q.Get("pageSize"))
	assert.Equal(t, "RECRUITING", q.Get("filter.overallStatus"))
	assert.Equal(t, "Lung cancer", q.Get("query.cond"))
	assert.Equal(t, "Boston Massachusetts", q.Get("query.locn"))
	assert.Equal(t, "sex:f", q.Get("aggFilters"))
	assert.Equal(t, "@relevance", q.Get("sort"))

	q = Query(Filter{Sex: "ALL"})
	assert.Empty(t, q.Get("aggFilters"))
	assert.Empty(t, q.Get("sort"))
	assert.Equal(t, "100", q.Get("pageSize"))
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"18 Years", 18, true},
		{"6 Months", 0.5, true},
		{"26 Weeks", 0.5, true},
		{"N/A", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAge(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFilterByAge(t *testing.T) {
	trials := []types.Trial{
		{NCTID: "adult", MinimumAge: "18 Years", MaximumAge: "75 Years"},
		{NCTID: "child", MinimumAge: "6 Months", MaximumAge: "17 Years"},
		{NCTID: "open", MinimumAge: "N/A"},
	}
	age := 45
	got := FilterByAge(trials, &age, &age)
	ids := []string{}
	for _, tr := range got {
		ids = append(ids, tr.NCTID)
	}
	assert.Equal(t, []string{"adult", "open"}, ids)

	assert.Len(t, FilterByAge(trials, nil, nil), 3)
}

func TestSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/studies", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(studiesJSON))
	}))
	defer srv.Close()

	c := NewClient(types.TrialsConfig{BaseURL: srv.URL + "/"}, nil)
	patient := types.Patient{Condition: "Lung cancer", Age: 45, Sex: "FEMALE", Location: "Boston"}
	trials, err := c.Search(context.Background(), FilterFor(patient))
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "aggFilters=sex%3Af")

	require.Len(t, trials, 2)
	first := trials[0]
	assert.Equal(t, "NCT00000001", first.NCTID)
	assert.Equal(t, "Adult lung cancer trial", first.Title)
	assert.Equal(t, []string{"PHASE2"}, first.Phases)
	assert.Equal(t, "General Hospital", first.Facility)
	assert.Equal(t, "02114", first.Zip)
	assert.Equal(t, []string{"ADULT", "OLDER_ADULT"}, first.StdAges)
	assert.Equal(t, "NCT00000003", trials[1].NCTID)
}

func TestSearchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad filter", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(types.TrialsConfig{BaseURL: srv.URL}, nil)
	_, err := c.Search(context.Background(), Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestWriteDetails(t *testing.T) {
	patient := types.Patient{Condition: "Lung cancer", Age: 45, Sex: "FEMALE", Location: "Boston"}
	trials := []types.Trial{{NCTID: "NCT1", Title: "T", City: "Boston", MinimumAge: "18 Years"}}

	var buf bytes.Buffer
	require.NoError(t, WriteDetails(&buf, trials, patient))

	var got []TrialDetails
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "Not provided", d.BriefSummary)
	assert.Equal(t, "Not provided", d.EligibilityCriteria)
	assert.Equal(t, "Boston", d.Location.City)
	assert.Equal(t, "Boston", d.PatientLocation)
	assert.Equal(t, 45, d.PatientAge)
	assert.Equal(t, "18 Years", d.AgeRange.MinimumAge)
	assert.Equal(t, []string{}, d.Conditions)
}
