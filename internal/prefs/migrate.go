package prefs

import (
	"slices"

	"MarketCourier/internal/model"
)

// StoredSchedule is the on-disk schedule. Nil fields were absent in the
// stored document and get backfilled on read.
type StoredSchedule struct {
	Active  *bool     `json:"active,omitempty"`
	Times   *[]string `json:"times,omitempty"`
	Reports *[]string `json:"reports,omitempty"`
}

// StoredProfile is the on-disk subscriber document.
type StoredProfile struct {
	Currency *[]string       `json:"currency,omitempty"`
	Gold     *[]string       `json:"gold,omitempty"`
	Crypto   *[]string       `json:"crypto,omitempty"`
	Schedule *StoredSchedule `json:"schedule,omitempty"`
}

// backfill is the value merged into absent fields. Categories added after a
// subscriber was created start empty; schedule fields take the starter value.
func backfill() model.Profile {
	return model.Profile{
		Currency: []string{},
		Gold:     []string{},
		Crypto:   []string{},
		Schedule: model.DefaultSchedule(),
	}
}

// Migrate fills every absent field of in from the backfill defaults and
// reports whether anything was added. Present values are never touched, and
// migrating an already healed profile is a no-op.
func Migrate(in StoredProfile) (StoredProfile, bool) {
	def := backfill()
	out := in.clone()
	changed := false

	fill := func(dst **[]string, v []string) {
		switch {
		case *dst == nil:
			c := slices.Clone(v)
			*dst = &c
			changed = true
		case **dst == nil:
			empty := []string{}
			*dst = &empty
			changed = true
		}
	}

	fill(&out.Currency, def.Currency)
	fill(&out.Gold, def.Gold)
	fill(&out.Crypto, def.Crypto)

	if out.Schedule == nil {
		out.Schedule = &StoredSchedule{}
		changed = true
	}
	if out.Schedule.Active == nil {
		active := def.Schedule.Active
		out.Schedule.Active = &active
		changed = true
	}
	fill(&out.Schedule.Times, def.Schedule.Times)
	fill(&out.Schedule.Reports, def.Schedule.Reports)

	return out, changed
}

// Profile converts a healed stored profile. Absent fields read as empty.
func (sp StoredProfile) Profile() model.Profile {
	p := model.Profile{
		Currency: deref(sp.Currency),
		Gold:     deref(sp.Gold),
		Crypto:   deref(sp.Crypto),
	}
	if sp.Schedule != nil {
		if sp.Schedule.Active != nil {
			p.Schedule.Active = *sp.Schedule.Active
		}
		p.Schedule.Times = deref(sp.Schedule.Times)
		p.Schedule.Reports = deref(sp.Schedule.Reports)
	} else {
		p.Schedule.Times = []string{}
		p.Schedule.Reports = []string{}
	}
	return p
}

// fromProfile builds a fully populated stored profile.
func fromProfile(p model.Profile) StoredProfile {
	p = p.Clone()
	active := p.Schedule.Active
	return StoredProfile{
		Currency: &p.Currency,
		Gold:     &p.Gold,
		Crypto:   &p.Crypto,
		Schedule: &StoredSchedule{
			Active:  &active,
			Times:   &p.Schedule.Times,
			Reports: &p.Schedule.Reports,
		},
	}
}

func (sp StoredProfile) clone() StoredProfile {
	out := StoredProfile{
		Currency: cloneList(sp.Currency),
		Gold:     cloneList(sp.Gold),
		Crypto:   cloneList(sp.Crypto),
	}
	if sp.Schedule != nil {
		s := StoredSchedule{
			Times:   cloneList(sp.Schedule.Times),
			Reports: cloneList(sp.Schedule.Reports),
		}
		if sp.Schedule.Active != nil {
			a := *sp.Schedule.Active
			s.Active = &a
		}
		out.Schedule = &s
	}
	return out
}

func cloneList(p *[]string) *[]string {
	if p == nil {
		return nil
	}
	if *p == nil {
		var empty []string
		return &empty
	}
	c := slices.Clone(*p)
	return &c
}

func deref(p *[]string) []string {
	if p == nil || *p == nil {
		return []string{}
	}
	return slices.Clone(*p)
}
