// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trials searches the ClinicalTrials.gov v2 studies endpoint for
// trials that match a patient profile.
package trials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// DefaultBaseURL is the public v2 API.
const DefaultBaseURL = "https://clinicaltrials.gov/api/v2"

const (
	defaultStatus   = "RECRUITING"
	defaultPageSize = 100
	maxPageSize     = 1000
	notProvided     = "Not provided"
	userAgent       = "pubmed-graph (clinical trials lookup)"
)

// Filter selects studies. Zero values leave a criterion unset.
type Filter struct {
	Condition string
	Location  string

	// Sex is FEMALE, MALE, or ALL. ALL and empty apply no sex filter.
	Sex string

	// Status is the overall status filter; empty means RECRUITING.
	Status string

	SortByRelevance bool
	PageSize        int

	// MinAge and MaxAge drop trials whose age bounds exclude them.
	MinAge *int
	MaxAge *int
}

// FilterFor returns the lookup used for a patient: condition, sex, and
// location from the profile, and both age bounds set to the patient's age.
func FilterFor(p types.Patient) Filter {
	age := p.Age
	return Filter{
		Condition: p.Condition,
		Sex:       p.Sex,
		Location:  p.Location,
		MinAge:    &age,
		MaxAge:    &age,
	}
}

// Client calls the studies endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     *logger.Logger
}

// NewClient returns a client for cfg. An empty base URL uses DefaultBaseURL.
func NewClient(cfg types.TrialsConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: cfg.Timeout},
		log:     log.With("component", "trials"),
	}
}

// Search returns the studies matching f. A non-2xx response is an error.
func (c *Client) Search(ctx context.Context, f Filter) ([]types.Trial, error) {
	u := c.BaseURL + "/studies?" + Query(f).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building studies request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.log.Debug("searching studies", "url", u)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting studies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("studies request returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page studiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding studies response: %w", err)
	}

	trials := make([]types.Trial, 0, len(page.Studies))
	for _, s := range page.Studies {
		trials = append(trials, s.toTrial())
	}
	return FilterByAge(trials, f.MinAge, f.MaxAge), nil
}

// Query returns the request parameters for f.
func Query(f Filter) url.Values {
	size := f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	status := f.Status
	if status == "" {
		status = defaultStatus
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("pageSize", strconv.Itoa(size))
	q.Set("filter.overallStatus", status)
	if f.Condition != "" {
		q.Set("query.cond", f.Condition)
	}
	if f.Location != "" {
		q.Set("query.locn", f.Location)
	}
	if sex := strings.ToUpper(strings.TrimSpace(f.Sex)); sex != "" && sex != "ALL" {
		q.Set("aggFilters", "sex:"+strings.ToLower(sex[:1]))
	}
	if f.SortByRelevance {
		q.Set("sort", "@relevance")
	}
	return q
}

// ParseAge converts an eligibility bound such as "18 Years", "6 Months", or
// "8 Weeks" to years. ok is false when s carries no digits.
func ParseAge(s string) (years float64, ok bool) {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	v := float64(n)
	switch {
	case strings.Contains(s, "Month"):
		v /= 12
	case strings.Contains(s, "Week"):
		v /= 52
	}
	return v, true
}

// FilterByAge keeps trials whose bounds admit the given ages: a trial's
// maximum must be at least minAge and its minimum at most maxAge. A bound
// that cannot be parsed admits everyone. Nil ages skip that check.
func FilterByAge(trials []types.Trial, minAge, maxAge *int) []types.Trial {
	if minAge == nil && maxAge == nil {
		return trials
	}
	out := make([]types.Trial, 0, len(trials))
	for _, t := range trials {
		if minAge != nil {
			if hi, ok := ParseAge(t.MaximumAge); ok && hi < float64(*minAge) {
				continue
			}
		}
		if maxAge != nil {
			if lo, ok := ParseAge(t.MinimumAge); ok && lo > float64(*maxAge) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Location is the site part of Details.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// AgeRange is the eligibility bounds part of Details.
type AgeRange struct {
	MinimumAge string `json:"minimum_age"`
	MaximumAge string `json:"maximum_age"`
}

// AdditionalInfo is the trailing part of Details.
type AdditionalInfo struct {
	Phases                   []string `json:"phases"`
	Status                   string   `json:"status"`
	Facility                 string   `json:"facility"`
	AcceptsHealthyVolunteers bool     `json:"accepts_healthy_volunteers"`
}

// TrialDetails pairs a trial with the patient fields it was matched on.
type TrialDetails struct {
	NCTID               string         `json:"nct_id"`
	Title               string         `json:"title"`
	BriefSummary        string         `json:"brief_summary"`
	DetailedDescription string         `json:"detailed_description"`
	Location            Location       `json:"location"`
	PatientLocation     string         `json:"patient_location"`
	Sex                 string         `json:"sex"`
	PatientSex          string         `json:"patient_sex"`
	AgeRange            AgeRange       `json:"age_range"`
	PatientAge          int            `json:"patient_age"`
	Conditions          []string       `json:"conditions"`
	PatientCondition    string         `json:"patient_condition"`
	EligibilityCriteria string         `json:"eligibility_criteria"`
	AdditionalInfo      AdditionalInfo `json:"additional_info"`
}

// Details builds the report record for t and p. Missing free-text fields
// read "Not provided".
func Details(t types.Trial, p types.Patient) TrialDetails {
	return TrialDetails{
		NCTID:               t.NCTID,
		Title:               t.Title,
		BriefSummary:        orNotProvided(t.BriefSummary),
		DetailedDescription: orNotProvided(t.DetailedDescription),
		Location:            Location{City: t.City, State: t.State, Country: t.Country},
		PatientLocation:     p.Location,
		Sex:                 t.Sex,
		PatientSex:          p.Sex,
		AgeRange:            AgeRange{MinimumAge: t.MinimumAge, MaximumAge: t.MaximumAge},
		PatientAge:          p.Age,
		Conditions:          nonNil(t.Conditions),
		PatientCondition:    p.Condition,
		EligibilityCriteria: orNotProvided(t.EligibilityCriteria),
		AdditionalInfo: AdditionalInfo{
			Phases:                   nonNil(t.Phases),
			Status:                   t.Status,
			Facility:                 t.Facility,
			AcceptsHealthyVolunteers: t.HealthyVolunteers,
		},
	}
}

// WriteDetails writes the details of every trial as an indented JSON array.
func WriteDetails(w io.Writer, trials []types.Trial, p types.Patient) error {
	records := make([]TrialDetails, 0, len(trials))
	for _, t := range trials {
		records = append(records, Details(t, p))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
