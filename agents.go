package main

import (
	"context"
	"fmt"
	"strings"
)

type agent struct {
	remoteID
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	JobTitle      string `json:"title"`
	Photo         string `json:"photo"`
	LicenseNumber string `json:"licenseNumber"`
	Active        bool   `json:"active"`
}

func fetchAgents(ctx context.Context, client *apiClient) ([]agent, error) {
	var agents []agent
	if err := client.get(ctx, "/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func createAgent(ctx context.Context, client *apiClient, form *entityForm) error {
	if form.HasFiles() {
		fields, files := form.MultipartPayload()
		return client.postMultipart(ctx, "/agents", fields, files, nil)
	}
	return client.post(ctx, "/agents", form.Payload(), nil)
}

func updateAgent(ctx context.Context, client *apiClient, id string, form *entityForm) error {
	if form.HasFiles() {
		fields, files := form.MultipartPayload()
		return client.putMultipart(ctx, "/agents/"+id, fields, files, nil)
	}
	return client.put(ctx, "/agents/"+id, form.Payload(), nil)
}

func deleteAgent(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/agents/"+id)
}

func agentColumns() []columnSpec[agent] {
	return []columnSpec[agent]{
		{Key: "name", Label: "Name", Width: 16, Searchable: true,
			Value: func(a agent) string { return a.Name }},
		{Key: "email", Label: "Email", Width: 22, Searchable: true,
			Value: func(a agent) string { return a.Email }},
		{Key: "phone", Label: "Phone", Width: 13,
			Value: func(a agent) string { return a.Phone }},
		{Key: "title", Label: "Title", Width: 14, Hidden: true,
			Value: func(a agent) string { return a.JobTitle }},
		{Key: "licenseNumber", Label: "License", Width: 11, Hidden: true,
			Value: func(a agent) string { return a.LicenseNumber }},
		{Key: "active", Label: "Active", Width: 7,
			Value: func(a agent) string { return formatYesNo(a.Active) }},
	}
}

func agentSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "name", Label: "Name", Kind: fieldLine, Required: true},
		{Key: "email", Label: "Email", Kind: fieldLine, Required: true, Check: checkEmail},
		{Key: "phone", Label: "Phone", Kind: fieldLine, Required: true},
		{Key: "title", Label: "Job title", Kind: fieldLine},
		{Key: "licenseNumber", Label: "License number", Kind: fieldLine},
		{Key: "photo", Label: "Photo", Kind: fieldFile, Hint: "path to image"},
		{Key: "active", Label: "Active", Kind: fieldToggle},
	}}
}

func agentFormValues(a agent) map[string]string {
	return map[string]string{
		"name":          a.Name,
		"email":         a.Email,
		"phone":         a.Phone,
		"title":         a.JobTitle,
		"licenseNumber": a.LicenseNumber,
		"active":        formatYesNo(a.Active),
	}
}

func agentStats(agents []agent) []statCard {
	active := 0
	for _, a := range agents {
		if a.Active {
			active++
		}
	}
	return []statCard{
		{Label: "Agents", Value: fmt.Sprintf("%d", len(agents))},
		{Label: "Active", Value: fmt.Sprintf("%d", active)},
	}
}

func agentDetail(a agent) string {
	var d strings.Builder
	title := a.Name
	if title == "" {
		title = a.Email
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	if a.JobTitle != "" {
		d.WriteString("Title:   " + a.JobTitle + "\n")
	}
	d.WriteString("Email:   " + a.Email + "\n")
	d.WriteString("Phone:   " + a.Phone + "\n")
	if a.LicenseNumber != "" {
		d.WriteString("License: " + a.LicenseNumber + "\n")
	}
	d.WriteString("Active:  " + formatYesNo(a.Active) + "\n")
	if a.Photo != "" {
		d.WriteString("Photo:   " + a.Photo + "\n")
	}
	return d.String()
}

func newAgentsSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[agent]{
		Key:      sectionAgents,
		Title:    "Agents",
		Singular: "agent",
		Columns:  agentColumns(),
		Schema:   agentSchema(),
		PageSize: pageSize,
		RowID:    func(a agent) string { return a.id() },
		RowLabel: func(a agent) string { return a.Name },
		Fetch: func(ctx context.Context) ([]agent, error) {
			return fetchAgents(ctx, client)
		},
		Create: func(ctx context.Context, form *entityForm) error {
			return createAgent(ctx, client, form)
		},
		Update: func(ctx context.Context, id string, form *entityForm) error {
			return updateAgent(ctx, client, id, form)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteAgent(ctx, client, id)
		},
		SeedValues: agentFormValues,
		Stats:      agentStats,
		Detail:     agentDetail,
	})
}
