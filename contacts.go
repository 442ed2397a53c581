package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var contactStatuses = []string{"new", "contacted", "resolved"}

type contact struct {
	remoteID
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Category  string `json:"category"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	Website   string `json:"website"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func fetchContacts(ctx context.Context, client *apiClient) ([]contact, error) {
	var contacts []contact
	if err := client.get(ctx, "/contacts", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func deleteContact(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/contacts/"+id)
}

func updateContactStatus(ctx context.Context, client *apiClient, id, status string) error {
	return client.put(ctx, "/contacts/"+id+"/status", map[string]any{"status": status}, nil)
}

func replyToContact(ctx context.Context, client *apiClient, id, subject, message string) error {
	body := map[string]any{"subject": subject, "message": message}
	return client.post(ctx, "/contacts/"+id+"/reply", body, nil)
}

// nextContactStatus steps new → contacted → resolved → new.
func nextContactStatus(status string) string {
	for i, candidate := range contactStatuses {
		if strings.EqualFold(candidate, status) {
			return contactStatuses[(i+1)%len(contactStatuses)]
		}
	}
	return contactStatuses[0]
}

type contactStatusMsg struct {
	id     string
	status string
	err    error
}

type contactReplyMsg struct {
	id    string
	email string
	err   error
}

func cycleContactStatusCmd(ctx context.Context, client *apiClient, c contact) tea.Cmd {
	id := c.id()
	next := nextContactStatus(c.Status)
	return func() tea.Msg {
		err := updateContactStatus(ctx, client, id, next)
		return contactStatusMsg{id: id, status: next, err: err}
	}
}

func replyToContactCmd(ctx context.Context, client *apiClient, c contact, subject, message string) tea.Cmd {
	id := c.id()
	email := c.Email
	return func() tea.Msg {
		err := replyToContact(ctx, client, id, subject, message)
		return contactReplyMsg{id: id, email: email, err: err}
	}
}

// replySchema drives the reply overlay; the recipient is fixed to the
// contact, so only subject and message are collected.
func replySchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "subject", Label: "Subject", Kind: fieldLine, Required: true},
		{Key: "message", Label: "Message", Kind: fieldMultiline, Required: true},
	}}
}

func contactColumns() []columnSpec[contact] {
	return []columnSpec[contact]{
		{Key: "name", Label: "Name", Width: 16, Searchable: true,
			Value: func(c contact) string { return c.Name }},
		{Key: "email", Label: "Email", Width: 20, Searchable: true,
			Value: func(c contact) string { return c.Email }},
		{Key: "phone", Label: "Phone", Width: 13, Hidden: true,
			Value: func(c contact) string { return c.Phone }},
		{Key: "category", Label: "Category", Width: 11,
			Value: func(c contact) string { return formatEnum(contactTopic(c)) }},
		{Key: "website", Label: "Website", Width: 13, Hidden: true,
			Value: func(c contact) string { return c.Website }},
		{Key: "status", Label: "Status", Width: 10,
			Value: func(c contact) string { return formatEnum(c.Status) }},
		{Key: "createdAt", Label: "Received", Width: 11,
			Value: func(c contact) string { return formatDate(c.CreatedAt) },
			Sort:  func(a, b contact) bool { return a.CreatedAt < b.CreatedAt }},
		{Key: "message", Label: "Message", Width: 24, Nested: true, Hidden: true,
			Value: func(c contact) string { return c.Message }},
	}
}

// contactTopic prefers the category field, falling back to the service
// name older form versions submitted.
func contactTopic(c contact) string {
	if strings.TrimSpace(c.Category) != "" {
		return c.Category
	}
	return c.Service
}

func contactStats(contacts []contact) []statCard {
	counts := make(map[string]int)
	for _, c := range contacts {
		counts[strings.ToLower(c.Status)]++
	}
	return []statCard{
		{Label: "Messages", Value: fmt.Sprintf("%d", len(contacts))},
		{Label: "New", Value: fmt.Sprintf("%d", counts["new"])},
		{Label: "Contacted", Value: fmt.Sprintf("%d", counts["contacted"])},
		{Label: "Resolved", Value: fmt.Sprintf("%d", counts["resolved"])},
	}
}

func contactDetail(c contact) string {
	var d strings.Builder
	title := c.Name
	if title == "" {
		title = c.Email
	}
	if title == "" {
		title = "Contact"
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	d.WriteString("Email:    " + c.Email + "\n")
	if c.Phone != "" {
		d.WriteString("Phone:    " + c.Phone + "\n")
	}
	if topic := contactTopic(c); topic != "" {
		d.WriteString("Topic:    " + formatEnum(topic) + "\n")
	}
	if c.Website != "" {
		d.WriteString("Website:  " + c.Website + "\n")
	}
	d.WriteString("Status:   " + formatEnum(c.Status) + "\n")
	d.WriteString("Received: " + formatDate(c.CreatedAt) + "\n")
	if strings.TrimSpace(c.Message) != "" {
		d.WriteString("\n" + c.Message + "\n")
	}
	return d.String()
}

// Contacts are created by the public site form, so the section has no
// create or edit flow; status changes and replies are the mutations.
func newContactsSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[contact]{
		Key:      sectionContacts,
		Title:    "Contacts",
		Singular: "contact",
		Columns:  contactColumns(),
		Schema:   schema{},
		PageSize: pageSize,
		RowID:    func(c contact) string { return c.id() },
		RowLabel: func(c contact) string { return contactLabel(c) },
		Fetch: func(ctx context.Context) ([]contact, error) {
			return fetchContacts(ctx, client)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteContact(ctx, client, id)
		},
		Stats:  contactStats,
		Detail: contactDetail,
	})
}

func contactLabel(c contact) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}

// applyContactStatusLocal patches the status on the cached row after
// the backend accepted the change.
func applyContactStatusLocal(sec section, id, status string) {
	entity, ok := sec.(*entitySection[contact])
	if !ok {
		return
	}
	entity.table.MapRows(func(c contact) contact {
		if c.id() == id {
			c.Status = status
		}
		return c
	})
}

// currentContact exposes the typed row under the cursor for the
// contact-only actions (status cycle, reply).
func currentContact(sec section) (contact, bool) {
	entity, ok := sec.(*entitySection[contact])
	if !ok {
		return contact{}, false
	}
	return entity.table.CurrentRow()
}
