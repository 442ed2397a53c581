package main

import (
	"context"
	"fmt"
	"strings"
)

type propertyImage struct {
	URL    string `json:"url"`
	IsMain bool   `json:"isMain"`
}

type propertyAgent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type property struct {
	remoteID
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Price        float64         `json:"price"`
	Currency     string          `json:"currency"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	SaleMethod   string          `json:"saleMethod"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	CarSpaces    int             `json:"carSpaces"`
	LandSize     float64         `json:"landSize"`
	BuildingSize float64         `json:"buildingSize"`
	Features     []string        `json:"features"`
	Images       []propertyImage `json:"images"`
	Agent        propertyAgent   `json:"agent"`
}

func fetchProperties(ctx context.Context, client *apiClient) ([]property, error) {
	var properties []property
	if err := client.get(ctx, "/properties", &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func createProperty(ctx context.Context, client *apiClient, form *entityForm) error {
	if form.HasFiles() {
		fields, files := form.MultipartPayload()
		return client.postMultipart(ctx, "/properties", fields, files, nil)
	}
	return client.post(ctx, "/properties", form.Payload(), nil)
}

func updateProperty(ctx context.Context, client *apiClient, id string, form *entityForm) error {
	if form.HasFiles() {
		fields, files := form.MultipartPayload()
		return client.putMultipart(ctx, "/properties/"+id, fields, files, nil)
	}
	return client.put(ctx, "/properties/"+id, form.Payload(), nil)
}

func deleteProperty(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/properties/"+id)
}

// flattenPropertyAgent renders the embedded agent snapshot as
// "name (email)" for table cells and CSV.
func flattenPropertyAgent(agent propertyAgent) string {
	name := strings.TrimSpace(agent.Name)
	email := strings.TrimSpace(agent.Email)
	switch {
	case name == "" && email == "":
		return ""
	case email == "":
		return name
	case name == "":
		return email
	default:
		return fmt.Sprintf("%s (%s)", name, email)
	}
}

func flattenPropertyImages(images []propertyImage) string {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		url := strings.TrimSpace(image.URL)
		if url == "" {
			continue
		}
		if image.IsMain {
			url += " (main)"
		}
		urls = append(urls, url)
	}
	return joinPipe(urls)
}

func propertyColumns() []columnSpec[property] {
	return []columnSpec[property]{
		{Key: "title", Label: "Title", Width: 24, Searchable: true,
			Value: func(p property) string { return p.Title }},
		{Key: "city", Label: "City", Width: 12, Searchable: true,
			Value: func(p property) string { return p.City }},
		{Key: "price", Label: "Price", Width: 12,
			Value: func(p property) string { return formatCurrency(p.Price, p.Currency) },
			Sort:  func(a, b property) bool { return a.Price < b.Price }},
		{Key: "type", Label: "Type", Width: 10,
			Value: func(p property) string { return formatEnum(p.Type) }},
		{Key: "status", Label: "Status", Width: 10,
			Value: func(p property) string { return formatEnum(p.Status) }},
		{Key: "saleMethod", Label: "Sale", Width: 9, Hidden: true,
			Value: func(p property) string { return formatEnum(p.SaleMethod) }},
		{Key: "bedrooms", Label: "Beds", Width: 5,
			Value: func(p property) string { return fmt.Sprintf("%d", p.Bedrooms) },
			Sort:  func(a, b property) bool { return a.Bedrooms < b.Bedrooms }},
		{Key: "bathrooms", Label: "Baths", Width: 5, Hidden: true,
			Value: func(p property) string { return fmt.Sprintf("%d", p.Bathrooms) },
			Sort:  func(a, b property) bool { return a.Bathrooms < b.Bathrooms }},
		{Key: "agent", Label: "Agent", Width: 18, Nested: true,
			Value: func(p property) string { return flattenPropertyAgent(p.Agent) }},
		{Key: "images", Label: "Images", Width: 18, Nested: true, Hidden: true,
			Value: func(p property) string { return flattenPropertyImages(p.Images) }},
	}
}

func propertySchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "title", Label: "Title", Kind: fieldLine, Required: true},
		{Key: "description", Label: "Description", Kind: fieldMultiline, Required: true},
		{Key: "location", Label: "Location", Kind: fieldLine},
		{Key: "city", Label: "City", Kind: fieldLine, Required: true},
		{Key: "country", Label: "Country", Kind: fieldLine, Required: true},
		{Key: "price", Label: "Price", Kind: fieldNumber, Required: true, Check: checkPositiveNumber},
		{Key: "currency", Label: "Currency", Kind: fieldChoice, Required: true,
			Choices: []string{"USD", "EUR", "GBP", "AUD"}},
		{Key: "type", Label: "Type", Kind: fieldChoice, Required: true,
			Choices: []string{"house", "apartment", "townhouse", "land", "commercial"}},
		{Key: "status", Label: "Status", Kind: fieldChoice, Required: true,
			Choices: []string{"available", "sold", "rented", "offMarket"}},
		{Key: "saleMethod", Label: "Sale method", Kind: fieldChoice,
			Choices: []string{"sale", "auction", "rent"}},
		{Key: "bedrooms", Label: "Bedrooms", Kind: fieldNumber, Check: checkPositiveNumber},
		{Key: "bathrooms", Label: "Bathrooms", Kind: fieldNumber, Check: checkPositiveNumber},
		{Key: "carSpaces", Label: "Car spaces", Kind: fieldNumber, Check: checkPositiveNumber},
		{Key: "landSize", Label: "Land size (m²)", Kind: fieldNumber, Check: checkPositiveNumber},
		{Key: "buildingSize", Label: "Building size (m²)", Kind: fieldNumber, Check: checkPositiveNumber},
		{Key: "features", Label: "Features", Kind: fieldList, Hint: "comma separated"},
		{Key: "images", Label: "Images", Kind: fieldFile, Hint: "comma separated paths"},
	}}
}

func propertyFormValues(p property) map[string]string {
	return map[string]string{
		"title":        p.Title,
		"description":  p.Description,
		"location":     p.Location,
		"city":         p.City,
		"country":      p.Country,
		"price":        fmt.Sprintf("%g", p.Price),
		"currency":     p.Currency,
		"type":         p.Type,
		"status":       p.Status,
		"saleMethod":   p.SaleMethod,
		"bedrooms":     fmt.Sprintf("%d", p.Bedrooms),
		"bathrooms":    fmt.Sprintf("%d", p.Bathrooms),
		"carSpaces":    fmt.Sprintf("%d", p.CarSpaces),
		"landSize":     fmt.Sprintf("%g", p.LandSize),
		"buildingSize": fmt.Sprintf("%g", p.BuildingSize),
		"features":     strings.Join(p.Features, ", "),
	}
}

// propertyStats aggregates by status plus the listed sale volume, the
// figures the detail pane headlines.
func propertyStats(properties []property) []statCard {
	counts := make(map[string]int)
	var volume float64
	currency := ""
	for _, p := range properties {
		counts[p.Status]++
		if strings.EqualFold(p.Status, "available") {
			volume += p.Price
			if currency == "" {
				currency = p.Currency
			}
		}
	}
	cards := []statCard{
		{Label: "Listings", Value: fmt.Sprintf("%d", len(properties))},
		{Label: "Available", Value: fmt.Sprintf("%d", counts["available"])},
		{Label: "Sold", Value: fmt.Sprintf("%d", counts["sold"])},
		{Label: "Rented", Value: fmt.Sprintf("%d", counts["rented"])},
	}
	if volume > 0 {
		cards = append(cards, statCard{Label: "For sale volume", Value: formatCurrency(volume, currency)})
	}
	return cards
}

func propertyDetail(p property) string {
	var d strings.Builder
	title := p.Title
	if title == "" {
		title = "Untitled listing"
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	place := strings.TrimSpace(strings.Join(dropEmpty([]string{p.Location, p.City, p.Country}), ", "))
	if place != "" {
		d.WriteString("Where:     " + place + "\n")
	}
	d.WriteString("Price:     " + formatCurrency(p.Price, p.Currency) + "\n")
	d.WriteString("Type:      " + formatEnum(p.Type) + "\n")
	d.WriteString("Status:    " + formatEnum(p.Status) + "\n")
	if p.SaleMethod != "" {
		d.WriteString("Method:    " + formatEnum(p.SaleMethod) + "\n")
	}
	d.WriteString(fmt.Sprintf("Layout:    %d bed / %d bath / %d car\n", p.Bedrooms, p.Bathrooms, p.CarSpaces))
	if p.LandSize > 0 || p.BuildingSize > 0 {
		d.WriteString(fmt.Sprintf("Size:      %gm² land / %gm² building\n", p.LandSize, p.BuildingSize))
	}
	if agent := flattenPropertyAgent(p.Agent); agent != "" {
		d.WriteString("Agent:     " + agent + "\n")
		if p.Agent.Phone != "" {
			d.WriteString("           " + p.Agent.Phone + "\n")
		}
	}
	if len(p.Features) > 0 {
		d.WriteString("Features:  " + joinPipe(p.Features) + "\n")
	}
	if images := flattenPropertyImages(p.Images); images != "" {
		d.WriteString("Images:    " + images + "\n")
	}
	if strings.TrimSpace(p.Description) != "" {
		d.WriteString("\n" + p.Description + "\n")
	}
	return d.String()
}

func dropEmpty(items []string) []string {
	kept := items[:0:0]
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

func newPropertiesSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[property]{
		Key:      sectionProperties,
		Title:    "Properties",
		Singular: "property",
		Columns:  propertyColumns(),
		Schema:   propertySchema(),
		PageSize: pageSize,
		RowID:    func(p property) string { return p.id() },
		RowLabel: func(p property) string { return p.Title },
		Fetch: func(ctx context.Context) ([]property, error) {
			return fetchProperties(ctx, client)
		},
		Create: func(ctx context.Context, form *entityForm) error {
			return createProperty(ctx, client, form)
		},
		Update: func(ctx context.Context, id string, form *entityForm) error {
			return updateProperty(ctx, client, id, form)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteProperty(ctx, client, id)
		},
		SeedValues: propertyFormValues,
		Stats:      propertyStats,
		Detail:     propertyDetail,
		Markdown: func(p property) (string, string, bool) {
			if strings.TrimSpace(p.Description) == "" {
				return "", "", false
			}
			return p.Title, p.Description, true
		},
	})
}
