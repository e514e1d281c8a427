package vcon

import (
	"strings"

	"vcon-insights/internal/types"
)

const (
	RoleAgent    = "agent"
	RoleCustomer = "customer"
)

var agentNameMarkers = []string{"support", "agent", "rep", "service"}

// Resolver classifies conversation parties as agent or customer from name
// and email substrings. This is a heuristic, not identity resolution; false
// classification is expected and tolerated downstream.
type Resolver struct {
	brandToken string
	orgKeyword string
}

// NewResolver builds a resolver. brandToken is the organization's own email
// marker (e.g. "feelgoodspas"); orgKeyword is a looser fallback marker.
func NewResolver(brandToken, orgKeyword string) *Resolver {
	return &Resolver{
		brandToken: strings.ToLower(strings.TrimSpace(brandToken)),
		orgKeyword: strings.ToLower(strings.TrimSpace(orgKeyword)),
	}
}

// Role returns RoleAgent or RoleCustomer for one party.
func (r *Resolver) Role(p types.Party) string {
	name := strings.ToLower(p.Name)
	for _, marker := range agentNameMarkers {
		if strings.Contains(name, marker) {
			return RoleAgent
		}
	}
	email := strings.ToLower(p.Email)
	if r.brandToken != "" && strings.Contains(email, r.brandToken) {
		return RoleAgent
	}
	if r.orgKeyword != "" && strings.Contains(email, r.orgKeyword) {
		return RoleAgent
	}
	return RoleCustomer
}

// AgentInfo returns the party treated as the conversation's agent: the first
// party resolved as agent, else party 0. ok is false when the conversation
// has no parties at all.
func AgentInfo(parties []types.Party) (types.Party, bool) {
	for _, p := range parties {
		if p.Role == RoleAgent {
			return p, true
		}
	}
	if len(parties) > 0 {
		return parties[0], true
	}
	return types.Party{}, false
}

// CustomerInfo returns the first customer-role party, else party 1. ok is
// false when fewer than two parties exist and none resolved as customer.
func CustomerInfo(parties []types.Party) (types.Party, bool) {
	for _, p := range parties {
		if p.Role == RoleCustomer {
			return p, true
		}
	}
	if len(parties) > 1 {
		return parties[1], true
	}
	return types.Party{}, false
}
