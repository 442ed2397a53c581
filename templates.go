package main

import (
	"context"
	"fmt"
	"strings"
)

var templateTypes = []string{"newsletter", "promotion", "notification"}

type emailTemplate struct {
	remoteID
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

func fetchTemplates(ctx context.Context, client *apiClient) ([]emailTemplate, error) {
	var templates []emailTemplate
	if err := client.get(ctx, "/email-templates", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func createTemplate(ctx context.Context, client *apiClient, form *entityForm) error {
	return client.post(ctx, "/email-templates", form.Payload(), nil)
}

func updateTemplate(ctx context.Context, client *apiClient, id string, form *entityForm) error {
	return client.put(ctx, "/email-templates/"+id, form.Payload(), nil)
}

func deleteTemplate(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/email-templates/"+id)
}

func templateColumns() []columnSpec[emailTemplate] {
	return []columnSpec[emailTemplate]{
		{Key: "name", Label: "Name", Width: 18, Searchable: true,
			Value: func(t emailTemplate) string { return t.Name }},
		{Key: "subject", Label: "Subject", Width: 26, Searchable: true,
			Value: func(t emailTemplate) string { return t.Subject }},
		{Key: "type", Label: "Type", Width: 12,
			Value: func(t emailTemplate) string { return formatEnum(t.Type) }},
		{Key: "createdBy", Label: "Author", Width: 14,
			Value: func(t emailTemplate) string { return t.CreatedBy }},
		{Key: "createdAt", Label: "Created", Width: 11,
			Value: func(t emailTemplate) string { return formatDate(t.CreatedAt) },
			Sort:  func(a, b emailTemplate) bool { return a.CreatedAt < b.CreatedAt }},
	}
}

func templateSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "name", Label: "Name", Kind: fieldLine, Required: true},
		{Key: "subject", Label: "Subject", Kind: fieldLine, Required: true},
		{Key: "content", Label: "Content", Kind: fieldMultiline, Required: true},
		{Key: "type", Label: "Type", Kind: fieldChoice, Required: true, Choices: templateTypes},
	}}
}

func templateFormValues(t emailTemplate) map[string]string {
	return map[string]string{
		"name":    t.Name,
		"subject": t.Subject,
		"content": t.Content,
		"type":    t.Type,
	}
}

func templateStats(templates []emailTemplate) []statCard {
	counts := make(map[string]int)
	for _, t := range templates {
		counts[strings.ToLower(t.Type)]++
	}
	cards := []statCard{{Label: "Templates", Value: fmt.Sprintf("%d", len(templates))}}
	for _, kind := range templateTypes {
		cards = append(cards, statCard{Label: formatEnum(kind), Value: fmt.Sprintf("%d", counts[kind])})
	}
	return cards
}

func templateDetail(t emailTemplate) string {
	var d strings.Builder
	title := t.Name
	if title == "" {
		title = "Template"
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	d.WriteString("Subject: " + t.Subject + "\n")
	d.WriteString("Type:    " + formatEnum(t.Type) + "\n")
	if t.CreatedBy != "" {
		d.WriteString("Author:  " + t.CreatedBy + "\n")
	}
	if t.CreatedAt != "" {
		d.WriteString("Created: " + formatDate(t.CreatedAt) + "\n")
	}
	if strings.TrimSpace(t.Content) != "" {
		d.WriteString("\n" + truncate(t.Content, 600) + "\n")
	}
	return d.String()
}

func newTemplatesSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[emailTemplate]{
		Key:      sectionTemplates,
		Title:    "Templates",
		Singular: "email template",
		Columns:  templateColumns(),
		Schema:   templateSchema(),
		PageSize: pageSize,
		RowID:    func(t emailTemplate) string { return t.id() },
		RowLabel: func(t emailTemplate) string { return t.Name },
		Fetch: func(ctx context.Context) ([]emailTemplate, error) {
			return fetchTemplates(ctx, client)
		},
		Create: func(ctx context.Context, form *entityForm) error {
			return createTemplate(ctx, client, form)
		},
		Update: func(ctx context.Context, id string, form *entityForm) error {
			return updateTemplate(ctx, client, id, form)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteTemplate(ctx, client, id)
		},
		SeedValues: templateFormValues,
		Stats:      templateStats,
		Detail:     templateDetail,
		Markdown: func(t emailTemplate) (string, string, bool) {
			if strings.TrimSpace(t.Content) == "" {
				return "", "", false
			}
			return t.Name, t.Content, true
		},
	})
}

func cachedTemplates(sec section) []emailTemplate {
	entity, ok := sec.(*entitySection[emailTemplate])
	if !ok {
		return nil
	}
	return entity.table.Rows()
}
