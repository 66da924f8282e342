package conceptgraph

import (
	"strings"

	"github.com/abhisek/studyloop/internal/ids"
)

// DomainPath is the parsed form of a hierarchical domain id. It is either a
// KnownDomain or an UnknownDomain; callers switch on the concrete type.
type DomainPath interface {
	String() string
	domainPath()
}

// KnownDomain is a well-formed "discipline.area.subarea" id.
type KnownDomain struct {
	Discipline string
	Area       string
	Subarea    string
}

func (d KnownDomain) String() string {
	return d.Discipline + "." + d.Area + "." + d.Subarea
}

// ID returns the canonical domain id.
func (d KnownDomain) ID() ids.DomainID {
	return ids.DomainID(d.String())
}

func (KnownDomain) domainPath() {}

// UnknownDomain keeps a domain id that could not be parsed.
type UnknownDomain struct {
	Raw string
}

func (d UnknownDomain) String() string { return d.Raw }

func (UnknownDomain) domainPath() {}

// ParseDomain splits a domain id into discipline, area and subarea. It never
// fails: anything other than three non-empty slug segments comes back as an
// UnknownDomain holding the raw input.
func ParseDomain(id ids.DomainID) DomainPath {
	raw := string(id)
	parts := strings.Split(strings.TrimSpace(strings.ToLower(raw)), ".")
	if len(parts) != 3 {
		return UnknownDomain{Raw: raw}
	}
	for _, p := range parts {
		if !isSlug(p) {
			return UnknownDomain{Raw: raw}
		}
	}
	return KnownDomain{Discipline: parts[0], Area: parts[1], Subarea: parts[2]}
}

// InDomain reports whether a concept's domain id falls under prefix, which
// may name a discipline, an area or a full subarea.
func InDomain(node ConceptNode, prefix ids.DomainID) bool {
	p := strings.ToLower(string(prefix))
	d := strings.ToLower(string(node.DomainID))
	return d == p || strings.HasPrefix(d, p+".")
}

func isSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
