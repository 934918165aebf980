// Package model defines the normalized domain types produced from the
// construction project feed.
package model

// Project is one normalized project record from a feed document. Scalar
// fields are nil when the source omitted them; an empty string means the
// source carried an empty value.
type Project struct {
	ID             *string      `json:"id,omitempty"`
	Title          *string      `json:"title,omitempty"`
	Stage          *string      `json:"stage,omitempty"`
	URL            *string      `json:"url,omitempty"`
	LastUpdated    *string      `json:"lastUpdated,omitempty"`
	LastUpdateText *string      `json:"lastUpdateText,omitempty"`
	Bidders        []Bidder     `json:"prospectiveBidders,omitempty"`
	Team           []TeamMember `json:"projectTeam,omitempty"`
}

// Company is the shape shared by bidders and team members.
type Company struct {
	ID       *string   `json:"id,omitempty"`
	Name     *string   `json:"name,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Website  *string   `json:"website,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Contacts []Contact `json:"contacts,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Phones   []Phone   `json:"phones,omitempty"`
}

// Bidder is a company participating in the bid process.
type Bidder struct {
	Company
	BidRole *string `json:"bidRole,omitempty"`
	Rank    *int    `json:"rank,omitempty"`
}

// TeamMember is a company holding one of the recognized project roles.
type TeamMember struct {
	Company
	Role string `json:"role"`
}

// Contact is a named person attached to a company. Name is required;
// contacts without one are dropped during extraction.
type Contact struct {
	ID       *string `json:"id,omitempty"`
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
}

// Address is a company mailing or physical address.
type Address struct {
	Type       *string `json:"type,omitempty"`
	Line1      *string `json:"line1,omitempty"`
	Line2      *string `json:"line2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	County     *string `json:"county,omitempty"`
}

// Phone is a typed phone number. Number is the element text as given.
type Phone struct {
	Type   *string `json:"type,omitempty"`
	Number string  `json:"number"`
}
