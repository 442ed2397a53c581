package main

import (
	"context"
	"fmt"
	"strings"
)

// userRoles is the canonical role set. Role gates what the backend
// lets an account touch; the dashboard only displays it.
var userRoles = []string{"superAdmin", "admin", "agent", "client"}

type user struct {
	remoteID
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func fetchUsers(ctx context.Context, client *apiClient) ([]user, error) {
	var users []user
	if err := client.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// createUser goes through the signup endpoint; the backend hashes the
// password and assigns the account.
func createUser(ctx context.Context, client *apiClient, form *entityForm) error {
	return client.post(ctx, "/signup", form.Payload(), nil)
}

func updateUser(ctx context.Context, client *apiClient, id string, form *entityForm) error {
	return client.put(ctx, "/users/update/"+id, form.Payload(), nil)
}

func deleteUser(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/users/"+id)
}

func userColumns() []columnSpec[user] {
	return []columnSpec[user]{
		{Key: "fullname", Label: "Name", Width: 18, Searchable: true,
			Value: func(u user) string { return u.Fullname }},
		{Key: "email", Label: "Email", Width: 22, Searchable: true,
			Value: func(u user) string { return u.Email }},
		{Key: "telephone", Label: "Phone", Width: 13, Hidden: true,
			Value: func(u user) string { return u.Telephone }},
		{Key: "role", Label: "Role", Width: 11,
			Value: func(u user) string { return formatEnum(u.Role) }},
		{Key: "createdAt", Label: "Created", Width: 11,
			Value: func(u user) string { return formatDate(u.CreatedAt) },
			Sort:  func(a, b user) bool { return a.CreatedAt < b.CreatedAt }},
	}
}

func userSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "fullname", Label: "Full name", Kind: fieldLine, Required: true},
		{Key: "email", Label: "Email", Kind: fieldLine, Required: true, Check: checkEmail},
		{Key: "telephone", Label: "Telephone", Kind: fieldLine},
		{Key: "role", Label: "Role", Kind: fieldChoice, Required: true, Choices: userRoles},
		{Key: "password", Label: "Password", Kind: fieldSecret, Required: true, Check: checkMinLength(8)},
	}}
}

func userFormValues(u user) map[string]string {
	return map[string]string{
		"fullname":  u.Fullname,
		"email":     u.Email,
		"telephone": u.Telephone,
		"role":      u.Role,
	}
}

func userStats(users []user) []statCard {
	counts := make(map[string]int)
	for _, u := range users {
		counts[u.Role]++
	}
	cards := []statCard{{Label: "Accounts", Value: fmt.Sprintf("%d", len(users))}}
	for _, role := range userRoles {
		if counts[role] > 0 {
			cards = append(cards, statCard{Label: formatEnum(role), Value: fmt.Sprintf("%d", counts[role])})
		}
	}
	return cards
}

func userDetail(u user) string {
	var d strings.Builder
	title := u.Fullname
	if title == "" {
		title = u.Email
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	d.WriteString("Email:   " + u.Email + "\n")
	if u.Telephone != "" {
		d.WriteString("Phone:   " + u.Telephone + "\n")
	}
	d.WriteString("Role:    " + formatEnum(u.Role) + "\n")
	if u.CreatedAt != "" {
		d.WriteString("Created: " + formatDate(u.CreatedAt) + "\n")
	}
	return d.String()
}

func newUsersSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[user]{
		Key:      sectionUsers,
		Title:    "Users",
		Singular: "user",
		Columns:  userColumns(),
		Schema:   userSchema(),
		PageSize: pageSize,
		RowID:    func(u user) string { return u.id() },
		RowLabel: func(u user) string { return u.Fullname },
		Fetch: func(ctx context.Context) ([]user, error) {
			return fetchUsers(ctx, client)
		},
		Create: func(ctx context.Context, form *entityForm) error {
			return createUser(ctx, client, form)
		},
		Update: func(ctx context.Context, id string, form *entityForm) error {
			return updateUser(ctx, client, id, form)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteUser(ctx, client, id)
		},
		SeedValues: userFormValues,
		Stats:      userStats,
		Detail:     userDetail,
	})
}
