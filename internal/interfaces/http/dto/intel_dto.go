package dto

import "strings"

// ProfileQuery holds the optional query parameters for a profile read.
// Sections is a comma separated list of section names; empty means all twelve.
type ProfileQuery struct {
	Sections string `form:"sections"`
}

// SectionNames splits the sections parameter into trimmed, non-empty names.
func (q ProfileQuery) SectionNames() []string {
	if q.Sections == "" {
		return nil
	}
	parts := strings.Split(q.Sections, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// RebuildDossierRequest is the optional body for a dossier rebuild. When no
// body is sent the rebuild is recorded as manual.
type RebuildDossierRequest struct {
	Reason string `json:"reason" binding:"omitempty,oneof=profile_build manual scheduled_refresh"`
}

// SectionURIRequest binds the path parameters of a single-section read.
type SectionURIRequest struct {
	CompanyID   string `uri:"companyId" binding:"required,uuid"`
	SectionName string `uri:"sectionName" binding:"required"`
}
