package main

import (
	"context"
	"fmt"
	"strings"
)

type blogPost struct {
	remoteID
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	PublishDate string   `json:"publishDate"`
	ReadTime    string   `json:"readTime"`
	Featured    bool     `json:"featured"`
	MainImage   string   `json:"mainImage"`
	Gallery     []string `json:"galleryImages"`
}

func fetchBlogs(ctx context.Context, client *apiClient) ([]blogPost, error) {
	var blogs []blogPost
	if err := client.get(ctx, "/blogs", &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func createBlog(ctx context.Context, client *apiClient, form *entityForm) error {
	if form.HasFiles() {
		fields, files := form.MultipartPayload()
		return client.postMultipart(ctx, "/blogs", fields, files, nil)
	}
	return client.post(ctx, "/blogs", form.Payload(), nil)
}

func updateBlog(ctx context.Context, client *apiClient, id string, form *entityForm) error {
	if form.HasFiles() {
		fields, files := form.MultipartPayload()
		return client.putMultipart(ctx, "/blogs/"+id, fields, files, nil)
	}
	return client.put(ctx, "/blogs/"+id, form.Payload(), nil)
}

func deleteBlog(ctx context.Context, client *apiClient, id string) error {
	return client.delete(ctx, "/blogs/"+id)
}

func blogColumns() []columnSpec[blogPost] {
	return []columnSpec[blogPost]{
		{Key: "title", Label: "Title", Width: 26, Searchable: true,
			Value: func(b blogPost) string { return b.Title }},
		{Key: "author", Label: "Author", Width: 14, Searchable: true,
			Value: func(b blogPost) string { return b.Author }},
		{Key: "category", Label: "Category", Width: 12,
			Value: func(b blogPost) string { return formatEnum(b.Category) }},
		{Key: "type", Label: "Type", Width: 10,
			Value: func(b blogPost) string { return formatEnum(b.Type) }},
		{Key: "tags", Label: "Tags", Width: 16, Nested: true,
			Value: func(b blogPost) string { return joinPipe(b.Tags) }},
		{Key: "publishDate", Label: "Published", Width: 11,
			Value: func(b blogPost) string { return formatDate(b.PublishDate) },
			Sort:  func(a, b blogPost) bool { return a.PublishDate < b.PublishDate }},
		{Key: "readTime", Label: "Read", Width: 7, Hidden: true,
			Value: func(b blogPost) string { return b.ReadTime }},
		{Key: "featured", Label: "Featured", Width: 8,
			Value: func(b blogPost) string { return formatYesNo(b.Featured) }},
		{Key: "images", Label: "Images", Width: 18, Nested: true, Hidden: true,
			Value: func(b blogPost) string { return flattenBlogImages(b) }},
	}
}

func flattenBlogImages(b blogPost) string {
	images := make([]string, 0, len(b.Gallery)+1)
	if strings.TrimSpace(b.MainImage) != "" {
		images = append(images, b.MainImage)
	}
	images = append(images, b.Gallery...)
	return joinPipe(images)
}

func blogSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "title", Label: "Title", Kind: fieldLine, Required: true},
		{Key: "excerpt", Label: "Excerpt", Kind: fieldLine, Required: true},
		{Key: "content", Label: "Content", Kind: fieldMultiline, Required: true},
		{Key: "author", Label: "Author", Kind: fieldLine, Required: true},
		{Key: "category", Label: "Category", Kind: fieldChoice, Required: true,
			Choices: []string{"real-estate", "lifestyle", "investment", "market-news", "company"}},
		{Key: "type", Label: "Type", Kind: fieldChoice, Required: true,
			Choices: []string{"article", "guide", "news"}},
		{Key: "tags", Label: "Tags", Kind: fieldList, Hint: "comma separated"},
		{Key: "publishDate", Label: "Publish date", Kind: fieldLine, Check: checkDate, Hint: "2025-07-01"},
		{Key: "readTime", Label: "Read time", Kind: fieldLine, Hint: "5 min"},
		{Key: "featured", Label: "Featured", Kind: fieldToggle},
		{Key: "mainImage", Label: "Main image", Kind: fieldFile, Hint: "path to image"},
		{Key: "galleryImages", Label: "Gallery images", Kind: fieldFile, Hint: "comma separated paths"},
	}}
}

func blogFormValues(b blogPost) map[string]string {
	return map[string]string{
		"title":       b.Title,
		"excerpt":     b.Excerpt,
		"content":     b.Content,
		"author":      b.Author,
		"category":    b.Category,
		"type":        b.Type,
		"tags":        strings.Join(b.Tags, ", "),
		"publishDate": b.PublishDate,
		"readTime":    b.ReadTime,
		"featured":    formatYesNo(b.Featured),
	}
}

func blogStats(blogs []blogPost) []statCard {
	featured := 0
	categories := make(map[string]bool)
	for _, b := range blogs {
		if b.Featured {
			featured++
		}
		if b.Category != "" {
			categories[b.Category] = true
		}
	}
	return []statCard{
		{Label: "Posts", Value: fmt.Sprintf("%d", len(blogs))},
		{Label: "Featured", Value: fmt.Sprintf("%d", featured)},
		{Label: "Categories", Value: fmt.Sprintf("%d", len(categories))},
	}
}

func blogDetail(b blogPost) string {
	var d strings.Builder
	title := b.Title
	if title == "" {
		title = "Untitled post"
	}
	d.WriteString(title + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(title))) + "\n\n")
	d.WriteString("Author:    " + b.Author + "\n")
	d.WriteString("Category:  " + formatEnum(b.Category) + "\n")
	d.WriteString("Type:      " + formatEnum(b.Type) + "\n")
	d.WriteString("Published: " + formatDate(b.PublishDate) + "\n")
	d.WriteString("Read time: " + b.ReadTime + "\n")
	d.WriteString("Featured:  " + formatYesNo(b.Featured) + "\n")
	if len(b.Tags) > 0 {
		d.WriteString("Tags:      " + joinPipe(b.Tags) + "\n")
	}
	if images := flattenBlogImages(b); images != "" {
		d.WriteString("Images:    " + images + "\n")
	}
	if strings.TrimSpace(b.Excerpt) != "" {
		d.WriteString("\n" + b.Excerpt + "\n")
	}
	return d.String()
}

func newBlogsSection(client *apiClient, pageSize int) section {
	return newEntitySection(entitySectionConfig[blogPost]{
		Key:      sectionBlogs,
		Title:    "Blogs",
		Singular: "blog post",
		Columns:  blogColumns(),
		Schema:   blogSchema(),
		PageSize: pageSize,
		RowID:    func(b blogPost) string { return b.id() },
		RowLabel: func(b blogPost) string { return b.Title },
		Fetch: func(ctx context.Context) ([]blogPost, error) {
			return fetchBlogs(ctx, client)
		},
		Create: func(ctx context.Context, form *entityForm) error {
			return createBlog(ctx, client, form)
		},
		Update: func(ctx context.Context, id string, form *entityForm) error {
			return updateBlog(ctx, client, id, form)
		},
		Remove: func(ctx context.Context, id string) error {
			return deleteBlog(ctx, client, id)
		},
		SeedValues: blogFormValues,
		Stats:      blogStats,
		Detail:     blogDetail,
		Markdown: func(b blogPost) (string, string, bool) {
			if strings.TrimSpace(b.Content) == "" {
				return "", "", false
			}
			return b.Title, b.Content, true
		},
	})
}
