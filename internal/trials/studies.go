// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trials

import "github.com/pdiddy/pubmed-graph/pkg/types"

// studiesResponse is the subset of the v2 studies payload the client reads.
type studiesResponse struct {
	Studies []study `json:"studies"`
}

type study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		DescriptionModule struct {
			BriefSummary        string `json:"briefSummary"`
			DetailedDescription string `json:"detailedDescription"`
		} `json:"descriptionModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		DesignModule struct {
			Phases []string `json:"phases"`
		} `json:"designModule"`
		EligibilityModule struct {
			EligibilityCriteria string   `json:"eligibilityCriteria"`
			HealthyVolunteers   bool     `json:"healthyVolunteers"`
			Sex                 string   `json:"sex"`
			MinimumAge          string   `json:"minimumAge"`
			MaximumAge          string   `json:"maximumAge"`
			StdAges             []string `json:"stdAges"`
		} `json:"eligibilityModule"`
		ContactsLocationsModule struct {
			Locations []struct {
				Facility string `json:"facility"`
				City     string `json:"city"`
				State    string `json:"state"`
				Zip      string `json:"zip"`
				Country  string `json:"country"`
			} `json:"locations"`
		} `json:"contactsLocationsModule"`
	} `json:"protocolSection"`
}

func (s study) toTrial() types.Trial {
	p := s.ProtocolSection
	t := types.Trial{
		NCTID:               p.IdentificationModule.NCTID,
		Title:               p.IdentificationModule.BriefTitle,
		DetailedDescription: p.DescriptionModule.DetailedDescription,
		BriefSummary:        p.DescriptionModule.BriefSummary,
		Conditions:          p.ConditionsModule.Conditions,
		EligibilityCriteria: p.EligibilityModule.EligibilityCriteria,
		HealthyVolunteers:   p.EligibilityModule.HealthyVolunteers,
		Sex:                 p.EligibilityModule.Sex,
		MinimumAge:          p.EligibilityModule.MinimumAge,
		MaximumAge:          p.EligibilityModule.MaximumAge,
		StdAges:             p.EligibilityModule.StdAges,
		Phases:              p.DesignModule.Phases,
		Status:              p.StatusModule.OverallStatus,
	}
	if locs := p.ContactsLocationsModule.Locations; len(locs) > 0 {
		t.Facility = locs[0].Facility
		t.City = locs[0].City
		t.State = locs[0].State
		t.Zip = locs[0].Zip
		t.Country = locs[0].Country
	}
	return t
}
