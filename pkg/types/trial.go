// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Patient describes the profile used to look up matching clinical trials.
type Patient struct {
	Condition string `json:"condition" yaml:"condition"`
	Age       int    `json:"age" yaml:"age"`
	Sex       string `json:"sex" yaml:"sex"`
	Location  string `json:"location" yaml:"location"`
}

// Trial is one study returned by the ClinicalTrials.gov v2 studies endpoint,
// flattened to the fields the tool reports.
type Trial struct {
	NCTID               string   `json:"nct_id" yaml:"nct_id"`
	Title               string   `json:"title" yaml:"title"`
	DetailedDescription string   `json:"detailed_description" yaml:"detailed_description"`
	BriefSummary        string   `json:"brief_summary" yaml:"brief_summary"`
	Conditions          []string `json:"conditions" yaml:"conditions"`
	EligibilityCriteria string   `json:"eligibility_criteria" yaml:"eligibility_criteria"`
	HealthyVolunteers   bool     `json:"healthy_volunteers" yaml:"healthy_volunteers"`
	Sex                 string   `json:"sex" yaml:"sex"`
	MinimumAge          string   `json:"minimum_age" yaml:"minimum_age"`
	MaximumAge          string   `json:"maximum_age" yaml:"maximum_age"`
	StdAges             []string `json:"std_age_list" yaml:"std_age_list"`
	Phases              []string `json:"phases" yaml:"phases"`
	Status              string   `json:"status" yaml:"status"`

	// Location fields describe the first listed study site.
	Facility string `json:"facility" yaml:"facility"`
	City     string `json:"city" yaml:"city"`
	State    string `json:"state" yaml:"state"`
	Zip      string `json:"zip" yaml:"zip"`
	Country  string `json:"country" yaml:"country"`
}
