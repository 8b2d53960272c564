package api

import "time"

// DonorProfile is the server-assigned lifecycle state of a submitted donor
// profile. Remarks carries optional reviewer free text (rejections mostly).
type DonorProfile struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// DonorDetail mirrors the /details response. All fields are sourced verbatim
// from the server; eligibility is a server-computed fact and must not be
// re-derived client-side from DaysUntilEligible.
type DonorDetail struct {
	BloodGroup        string     `json:"bloodGroup,omitempty"`
	LastDonation      *time.Time `json:"lastDonation,omitempty"`
	NextEligible      *time.Time `json:"nextEligible,omitempty"`
	DaysUntilEligible *int       `json:"daysUntilEligible,omitempty"`
	IsEligible        bool       `json:"isEligible"`
}

// DonationRecord is a single entry of the recent-donation list, newest first,
// server-truncated to the requested limit.
type DonationRecord struct {
	Date       time.Time `json:"date"`
	Location   string    `json:"location"`
	Units      int       `json:"units"`
	BloodGroup string    `json:"bloodGroup,omitempty"`
}

// DonorStats aggregates lifetime donation figures.
type DonorStats struct {
	TotalDonations int `json:"totalDonations"`
}
