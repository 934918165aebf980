// Package extract normalizes parsed feed documents into model.Project
// records. The feed is lax about cardinality and optional structure at every
// level, so the walk never fails: anything missing becomes an absent field
// and anything unclassifiable is dropped.
package extract

import (
	"strconv"
	"strings"

	"github.com/sells-group/bidsync/internal/model"
	"github.com/sells-group/bidsync/internal/xmldoc"
)

// teamRoles is the recognized set of project team roles. A company whose
// resolved role is outside this set is neither a bidder nor a team member
// and is excluded from the normalized output.
var teamRoles = map[string]struct{}{
	"Architect":  {},
	"Engineer":   {},
	"Consultant": {},
	"Owner":      {},
	"Tenant":     {},
}

// Extract walks one parsed feed document and returns its normalized
// projects. A document without a Projects container yields an empty slice;
// non-project XML handed to this function is not an error.
func Extract(doc *xmldoc.Node) []model.Project {
	var projects []model.Project
	for _, container := range doc.All("Projects") {
		for _, pn := range container.All("Project") {
			projects = append(projects, extractProject(pn))
		}
	}
	return projects
}

func extractProject(pn *xmldoc.Node) model.Project {
	p := model.Project{
		ID:             pn.Attr("ID"),
		Title:          pn.Attr("Title"),
		Stage:          pn.Attr("Stage"),
		URL:            pn.Attr("URL"),
		LastUpdated:    pn.Attr("LastUpdated"),
		LastUpdateText: pn.Attr("LastUpdateText"),
	}

	for _, cc := range pn.All("Companies") {
		for _, cn := range cc.All("Company") {
			company := extractCompany(cn)

			// Classification is exclusive: a bidding role always wins,
			// then a recognized team role, otherwise the company is dropped.
			if bidRole := cn.Attr("BiddingRole"); bidRole != nil {
				p.Bidders = append(p.Bidders, model.Bidder{
					Company: company,
					BidRole: bidRole,
					Rank:    companyRank(cn),
				})
				continue
			}

			role := cn.Attr("Role")
			if role == nil {
				role = firstCompanyType(cn).Attr("Type")
			}
			if role == nil {
				continue
			}
			if _, ok := teamRoles[*role]; !ok {
				continue
			}
			p.Team = append(p.Team, model.TeamMember{Company: company, Role: *role})
		}
	}

	return p
}

func extractCompany(cn *xmldoc.Node) model.Company {
	c := model.Company{
		ID:      cn.Attr("ID"),
		Name:    cn.Attr("Name"),
		URL:     cn.Attr("URL"),
		Website: cn.Attr("Website"),
		Email:   cn.Attr("Email"),
	}

	for _, cc := range cn.All("Contacts") {
		for _, ct := range cc.All("Contact") {
			name := ct.Attr("Name")
			if name == nil {
				// Nameless contacts are noise in the feed.
				continue
			}
			c.Contacts = append(c.Contacts, model.Contact{
				ID:       ct.Attr("ID"),
				Name:     *name,
				Email:    ct.ChildText("Email"),
				Phone:    ct.ChildText("Phone"),
				LinkedIn: ct.ChildText("LinkedIn"),
			})
		}
	}

	// At most one address is modeled; the feed occasionally repeats them.
	if an := firstAddress(cn); an != nil {
		c.Address = &model.Address{
			Type:       an.Attr("Type"),
			Line1:      an.ChildText("Address1"),
			Line2:      an.ChildText("Address2"),
			City:       an.ChildText("City"),
			State:      an.ChildText("State"),
			PostalCode: an.ChildText("PostalCode"),
			County:     an.ChildText("County"),
		}
	}

	for _, pc := range cn.All("Phones") {
		for _, ph := range pc.All("Phone") {
			c.Phones = append(c.Phones, model.Phone{
				Type:   ph.Attr("Type"),
				Number: ph.Text(),
			})
		}
	}

	return c
}

// firstCompanyType returns the first classification entry on a company.
// The feed emits CompanyType either directly under Company or wrapped in a
// CompanyTypes container.
func firstCompanyType(cn *xmldoc.Node) *xmldoc.Node {
	if ct := cn.First("CompanyType"); ct != nil {
		return ct
	}
	return cn.First("CompanyTypes").First("CompanyType")
}

func firstAddress(cn *xmldoc.Node) *xmldoc.Node {
	if an := cn.First("Addresses").First("Address"); an != nil {
		return an
	}
	return cn.First("Address")
}

// companyRank parses the Rank attribute of the company's first
// classification entry. A missing or non-numeric rank is absent.
func companyRank(cn *xmldoc.Node) *int {
	raw := firstCompanyType(cn).Attr("Rank")
	if raw == nil {
		return nil
	}
	rank, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &rank
}
