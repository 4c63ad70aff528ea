package migration

// liftLegacy maps the flat legacy shape onto the intermediate sectioned shape.
// Every legacy field has exactly one destination; values are carried raw and
// normalized by the next step. The input map is never written to.
func liftLegacy(m map[string]any) map[string]any {
	basics := map[string]any{
		"name":     m["name"],
		"label":    firstPresent(m, "title", "label"),
		"email":    m["email"],
		"phone":    m["phone"],
		"url":      firstPresent(m, "website", "url"),
		"image":    firstPresent(m, "photo", "image"),
		"summary":  m["summary"],
		"location": legacyLocation(m),
		"profiles": m["profiles"],
	}
	for _, key := range flatProfileKeys {
		if v, ok := m[key]; ok {
			basics[key] = v
		}
	}

	return map[string]any{
		schemaVersionKey: float64(VersionIntermediate),
		"meta": map[string]any{
			"jobCategory": m["jobCategory"],
			"seniority":   m["seniority"],
			"template":    m["template"],
		},
		"basics":       basics,
		"work":         mapItems(m["experience"], legacyWork),
		"volunteer":    mapItems(m["volunteer"], legacyVolunteer),
		"projects":     mapItems(m["projects"], legacyProject),
		"education":    mapItems(m["education"], legacyEducation),
		"awards":       m["awards"],
		"certificates": m["certificates"],
		"publications": m["publications"],
		"references":   m["references"],
		"languages":    m["languages"],
		"interests":    m["interests"],
		"skills":       m["skills"],
	}
}

func legacyLocation(m map[string]any) map[string]any {
	loc := map[string]any{}
	switch v := m["location"].(type) {
	case string:
		loc["city"] = v
	case map[string]any:
		for k, val := range v {
			loc[k] = val
		}
	}
	for _, key := range []string{"address", "city", "region", "postalCode"} {
		if s := str(m[key]); s != "" {
			loc[key] = s
		}
	}
	if s := str(m["country"]); s != "" {
		loc["countryCode"] = s
	}
	return loc
}

func legacyWork(item map[string]any) map[string]any {
	return map[string]any{
		"name":        firstPresent(item, "company", "name"),
		"position":    firstPresent(item, "position", "title"),
		"location":    item["location"],
		"url":         item["url"],
		"startDate":   firstPresent(item, "startDate", "start"),
		"endDate":     firstPresent(item, "endDate", "end"),
		"description": item["description"],
		"summary":     item["summary"],
		"highlights":  item["highlights"],
	}
}

func legacyVolunteer(item map[string]any) map[string]any {
	return map[string]any{
		"organization": firstPresent(item, "organization", "name"),
		"position":     item["position"],
		"url":          item["url"],
		"startDate":    firstPresent(item, "startDate", "start"),
		"endDate":      firstPresent(item, "endDate", "end"),
		"description":  item["description"],
		"summary":      item["summary"],
		"highlights":   item["highlights"],
	}
}

func legacyProject(item map[string]any) map[string]any {
	return map[string]any{
		"name":        item["name"],
		"url":         item["url"],
		"startDate":   firstPresent(item, "startDate", "start"),
		"endDate":     firstPresent(item, "endDate", "end"),
		"description": item["description"],
		"summary":     item["summary"],
		"highlights":  item["highlights"],
		"keywords":    item["keywords"],
	}
}

func legacyEducation(item map[string]any) map[string]any {
	return map[string]any{
		"institution": firstPresent(item, "institution", "school"),
		"url":         item["url"],
		"area":        firstPresent(item, "area", "field"),
		"studyType":   firstPresent(item, "studyType", "degree"),
		"startDate":   firstPresent(item, "startDate", "start"),
		"endDate":     firstPresent(item, "endDate", "end"),
		"score":       firstPresent(item, "score", "gpa"),
		"courses":     item["courses"],
	}
}

// mapItems applies fn to every object item of v.
func mapItems(v any, fn func(map[string]any) map[string]any) []any {
	items := objList(v)
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// firstPresent returns the first value among keys that stringifies to something non-empty.
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if str(m[k]) != "" {
			return m[k]
		}
	}
	return nil
}
