package main

import (
	"context"
	"fmt"
	"strings"
)

type website struct {
	remoteID
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Active      bool     `json:"active"`
}

func fetchWebsites(ctx context.Context, client *apiClient) ([]website, error) {
	var websites []website
	if err := client.get(ctx, "/websites", &websites); err != nil {
		return nil, err
	}
	return websites, nil
}

func createWebsite(ctx context.Context, client *apiClient, form *entityForm) error {
	return client.post(ctx, "/websites", form.Payload(), nil)
}

func updateWebsite(ctx context.Context, client *apiClient, id string, form *entityForm) error {
	return client.put(ctx, "/websites/"+id, form.Payload(), nil)
}

func deleteWebsite(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/websites/"+id)
}

func websiteColumns() []columnSpec[website] {
	return []columnSpec[website]{
		{Key: "name", Label: "Name", Width: 16, Searchable: true,
			Value: func(w website) string { return w.Name }},
		{Key: "url", Label: "URL", Width: 24, Searchable: true,
			Value: func(w website) string { return w.URL }},
		{Key: "categories", Label: "Categories", Width: 16, Nested: true,
			Value: func(w website) string { return joinPipe(w.Categories) }},
		{Key: "active", Label: "Active", Width: 7,
			Value: func(w website) string { return formatYesNo(w.Active) }},
	}
}

func websiteSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "name", Label: "Name", Kind: fieldLine, Required: true},
		{Key: "url", Label: "URL", Kind: fieldLine, Required: true, Check: checkURL},
		{Key: "description", Label: "Description", Kind: fieldMultiline},
		{Key: "categories", Label: "Categories", Kind: fieldList, Hint: "comma separated"},
		{Key: "active", Label: "Active", Kind: fieldToggle},
	}}
}

func websiteFormValues(w website) map[string]string {
	return map[string]string{
		"name":        w.Name,
		"url":         w.URL,
		"description": w.Description,
		"categories":  strings.Join(w.Categories, ", "),
		"active":      formatYesNo(w.Active),
	}
}

func websiteStats(websites []website) []statCard {
	active := 0
	for _, w := range websites {
		if w.Active {
			active++
		}
	}
	return []statCard{
		{Label: "Websites", Value: fmt.Sprintf("%d", len(websites))},
		{Label: "Active", Value: fmt.Sprintf("%d", active)},
		{Label: "Inactive", Value: fmt.Sprintf("%d", len(websites)-active)},
	}
}

func websiteDetail(w website) string {
	var d strings.Builder
	title := w.Name
	if title == "" {
		title = w.URL
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	d.WriteString("URL:        " + w.URL + "\n")
	d.WriteString("Active:     " + formatYesNo(w.Active) + "\n")
	if len(w.Categories) > 0 {
		d.WriteString("Categories: " + joinPipe(w.Categories) + "\n")
	}
	if strings.TrimSpace(w.Description) != "" {
		d.WriteString("\n" + w.Description + "\n")
	}
	return d.String()
}

func newWebsitesSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[website]{
		Key:      sectionWebsites,
		Title:    "Websites",
		Singular: "website",
		Columns:  websiteColumns(),
		Schema:   websiteSchema(),
		PageSize: pageSize,
		RowID:    func(w website) string { return w.id() },
		RowLabel: func(w website) string { return w.Name },
		Fetch: func(ctx context.Context) ([]website, error) {
			return fetchWebsites(ctx, client)
		},
		Create: func(ctx context.Context, form *entityForm) error {
			return createWebsite(ctx, client, form)
		},
		Update: func(ctx context.Context, id string, form *entityForm) error {
			return updateWebsite(ctx, client, id, form)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteWebsite(ctx, client, id)
		},
		SeedValues: websiteFormValues,
		Stats:      websiteStats,
		Detail:     websiteDetail,
	})
}
