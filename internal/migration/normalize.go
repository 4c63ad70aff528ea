package migration

import (
	"strings"

	"github.com/jonathan/resume-editor/internal/richtext"
	"github.com/jonathan/resume-editor/internal/types"
)

// normalize builds a current-shape document from a sectioned (intermediate or
// current) object. Already-normalized data passes through unchanged.
func normalize(m map[string]any) *types.Document {
	doc := types.NewDocument()

	meta := obj(m["meta"])
	doc.Meta = types.Meta{
		JobCategory: orDefault(field(meta, "jobCategory"), types.DefaultJobCategory),
		Seniority:   orDefault(field(meta, "seniority"), types.DefaultSeniority),
		Template:    field(meta, "template"),
	}

	basics := obj(m["basics"])
	doc.Basics = types.Basics{
		Name:     field(basics, "name"),
		Label:    field(basics, "label"),
		Image:    field(basics, "image", "picture"),
		Email:    field(basics, "email"),
		Phone:    field(basics, "phone"),
		URL:      field(basics, "url", "website"),
		Summary:  field(basics, "summary"),
		Location: normalizeLocation(basics["location"]),
		Profiles: normalizeProfiles(basics),
	}

	for _, item := range objList(m["work"]) {
		doc.Work = append(doc.Work, types.Work{
			Name:        field(item, "name", "company"),
			Position:    field(item, "position"),
			Location:    field(item, "location"),
			URL:         field(item, "url"),
			StartDate:   field(item, "startDate"),
			EndDate:     field(item, "endDate"),
			Description: mergeDescription(item),
		})
	}

	for _, item := range objList(m["volunteer"]) {
		doc.Volunteer = append(doc.Volunteer, types.Volunteer{
			Organization: field(item, "organization"),
			Position:     field(item, "position"),
			URL:          field(item, "url"),
			StartDate:    field(item, "startDate"),
			EndDate:      field(item, "endDate"),
			Description:  mergeDescription(item),
		})
	}

	for _, item := range objList(m["projects"]) {
		doc.Projects = append(doc.Projects, types.Project{
			Name:        field(item, "name"),
			URL:         field(item, "url"),
			StartDate:   field(item, "startDate"),
			EndDate:     field(item, "endDate"),
			Description: mergeDescription(item),
			Keywords:    strList(item["keywords"]),
		})
	}

	for _, item := range objList(m["education"]) {
		doc.Education = append(doc.Education, types.Education{
			Institution: field(item, "institution"),
			URL:         field(item, "url"),
			Area:        field(item, "area"),
			StudyType:   field(item, "studyType"),
			StartDate:   field(item, "startDate"),
			EndDate:     field(item, "endDate"),
			Score:       field(item, "score"),
			Courses:     strList(item["courses"]),
		})
	}

	for _, item := range objList(m["awards"]) {
		doc.Awards = append(doc.Awards, types.Award{
			Title:   field(item, "title"),
			Date:    field(item, "date"),
			Awarder: field(item, "awarder"),
			Summary: field(item, "summary"),
		})
	}

	for _, item := range objList(m["certificates"]) {
		doc.Certificates = append(doc.Certificates, types.Certificate{
			Name:   field(item, "name"),
			Date:   field(item, "date"),
			Issuer: field(item, "issuer"),
			URL:    field(item, "url"),
		})
	}

	for _, item := range objList(m["publications"]) {
		doc.Publications = append(doc.Publications, types.Publication{
			Name:        field(item, "name"),
			Publisher:   field(item, "publisher"),
			ReleaseDate: field(item, "releaseDate"),
			URL:         field(item, "url"),
			Summary:     field(item, "summary"),
		})
	}

	for _, item := range objList(m["references"]) {
		doc.References = append(doc.References, types.Reference{
			Name:      field(item, "name"),
			Reference: field(item, "reference"),
		})
	}

	for _, item := range list(m["languages"]) {
		if entry := obj(item); entry != nil {
			doc.Languages = append(doc.Languages, types.Language{
				Language: field(entry, "language", "name"),
				Fluency:  field(entry, "fluency"),
			})
			continue
		}
		if s := str(item); s != "" {
			doc.Languages = append(doc.Languages, types.Language{Language: s})
		}
	}

	for _, item := range list(m["interests"]) {
		if entry := obj(item); entry != nil {
			doc.Interests = append(doc.Interests, types.Interest{
				Name:     field(entry, "name"),
				Keywords: strList(entry["keywords"]),
			})
			continue
		}
		if s := str(item); s != "" {
			doc.Interests = append(doc.Interests, types.Interest{Name: s, Keywords: []string{}})
		}
	}

	doc.Skills = flattenSkills(m["skills"])

	return doc
}

func normalizeLocation(v any) types.Location {
	loc := types.Location{CountryCode: types.DefaultCountryCode}
	switch l := v.(type) {
	case string:
		loc.City = strings.TrimSpace(l)
	case map[string]any:
		loc.Address = field(l, "address")
		loc.PostalCode = field(l, "postalCode")
		loc.City = field(l, "city")
		loc.Region = field(l, "region")
		loc.CountryCode = orDefault(field(l, "countryCode", "country"), types.DefaultCountryCode)
	}
	return loc
}

// flattenSkills turns grouped skill objects into their keywords, or their name
// when a group has no keywords. Plain string skills are kept.
func flattenSkills(v any) []string {
	out := []string{}
	for _, item := range list(v) {
		group := obj(item)
		if group == nil {
			if s := str(item); s != "" {
				out = append(out, s)
			}
			continue
		}
		if keywords := strList(group["keywords"]); len(keywords) > 0 {
			out = append(out, keywords...)
			continue
		}
		if name := field(group, "name"); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// mergeDescription folds an entry's summary and highlight list into its
// rich-text description. A plain-text description is wrapped as a paragraph;
// rich text is kept and the merged block appended after it.
func mergeDescription(item map[string]any) string {
	description := field(item, "description")
	if description != "" && !richtext.IsRichText(description) {
		description = richtext.FromSummaryAndHighlights(description, nil)
	}
	return description + richtext.FromSummaryAndHighlights(field(item, "summary"), strList(item["highlights"]))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
