package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type subscriber struct {
	remoteID
	Email      string   `json:"email"`
	Name       string   `json:"name,omitempty"`
	Website    string   `json:"website"`
	Categories []string `json:"categories"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"createdAt"`
}

func fetchSubscribers(ctx context.Context, client *apiClient) ([]subscriber, error) {
	var subscribers []subscriber
	if err := client.get(ctx, "/newsletter", &subscribers); err != nil {
		return nil, err
	}
	return subscribers, nil
}

func deleteSubscriber(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/newsletter/"+id)
}

func subscriberColumns() []columnSpec[subscriber] {
	return []columnSpec[subscriber]{
		{Key: "email", Label: "Email", Width: 24, Searchable: true,
			Value: func(s subscriber) string { return s.Email }},
		{Key: "name", Label: "Name", Width: 14, Searchable: true,
			Value: func(s subscriber) string { return s.Name }},
		{Key: "website", Label: "Website", Width: 13,
			Value: func(s subscriber) string { return s.Website }},
		{Key: "categories", Label: "Categories", Width: 16, Nested: true,
			Value: func(s subscriber) string { return joinPipe(s.Categories) }},
		{Key: "status", Label: "Status", Width: 9,
			Value: func(s subscriber) string { return formatEnum(s.Status) }},
		{Key: "createdAt", Label: "Since", Width: 11,
			Value: func(s subscriber) string { return formatDate(s.CreatedAt) },
			Sort:  func(a, b subscriber) bool { return a.CreatedAt < b.CreatedAt }},
	}
}

func subscriberStats(subscribers []subscriber) []statCard {
	active := 0
	categories := make(map[string]bool)
	for _, s := range subscribers {
		if strings.EqualFold(s.Status, "active") {
			active++
		}
		for _, category := range s.Categories {
			categories[strings.ToLower(category)] = true
		}
	}
	return []statCard{
		{Label: "Subscribers", Value: fmt.Sprintf("%d", len(subscribers))},
		{Label: "Active", Value: fmt.Sprintf("%d", active)},
		{Label: "Inactive", Value: fmt.Sprintf("%d", len(subscribers)-active)},
		{Label: "Categories", Value: fmt.Sprintf("%d", len(categories))},
	}
}

func subscriberDetail(s subscriber) string {
	var d strings.Builder
	title := s.Email
	if title == "" {
		title = "Subscriber"
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	if s.Name != "" {
		d.WriteString("Name:       " + s.Name + "\n")
	}
	if s.Website != "" {
		d.WriteString("Website:    " + s.Website + "\n")
	}
	d.WriteString("Status:     " + formatEnum(s.Status) + "\n")
	d.WriteString("Subscribed: " + formatDate(s.CreatedAt) + "\n")
	if len(s.Categories) > 0 {
		d.WriteString("Categories: " + joinPipe(s.Categories) + "\n")
	}
	return d.String()
}

// subscriberCategories collects the distinct categories across the
// cached collection, for the bulk-send audience choices.
func subscriberCategories(subscribers []subscriber) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, s := range subscribers {
		for _, category := range s.Categories {
			category = strings.TrimSpace(category)
			if category == "" || seen[strings.ToLower(category)] {
				continue
			}
			seen[strings.ToLower(category)] = true
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	return categories
}

// Subscribers sign up through the public site; the dashboard only
// deletes them and targets bulk sends.
func newSubscribersSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[subscriber]{
		Key:      sectionSubscribers,
		Title:    "Subscribers",
		Singular: "subscriber",
		Columns:  subscriberColumns(),
		Schema:   schema{},
		PageSize: pageSize,
		RowID:    func(s subscriber) string { return s.id() },
		RowLabel: func(s subscriber) string { return s.Email },
		Fetch: func(ctx context.Context) ([]subscriber, error) {
			return fetchSubscribers(ctx, client)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteSubscriber(ctx, client, id)
		},
		Stats:  subscriberStats,
		Detail: subscriberDetail,
	})
}

func cachedSubscribers(sec section) []subscriber {
	entity, ok := sec.(*entitySection[subscriber])
	if !ok {
		return nil
	}
	return entity.table.Rows()
}
