package schema

// Built-in content types. Projects extend this set by calling Register
// before the router starts serving.
func init() {
	Register(SchemaType{
		Name:  "post",
		Title: "Post",
		Fields: []Field{
			{Name: "title", Title: "Title", Type: TypeString, Required: true, MaxLength: intPtr(200)},
			{Name: "slug", Title: "Slug", Type: TypeSlug, Required: true},
			{Name: "excerpt", Title: "Excerpt", Type: TypeText, MaxLength: intPtr(500)},
			{Name: "body", Title: "Body", Type: TypeText, Required: true},
			{Name: "hero_image", Title: "Hero Image", Type: TypeImage},
			{Name: "author", Title: "Author", Type: TypeReference, To: []string{"author"}},
			{Name: "categories", Title: "Categories", Type: TypeArray, MaxItems: intPtr(10), Of: &Field{Type: TypeReference, To: []string{"category"}}},
			{Name: "published_at", Title: "Published At", Type: TypeDatetime},
			{Name: "featured", Title: "Featured", Type: TypeBoolean},
		},
	})

	Register(SchemaType{
		Name:  "page",
		Title: "Page",
		Fields: []Field{
			{Name: "title", Title: "Title", Type: TypeString, Required: true, MaxLength: intPtr(200)},
			{Name: "slug", Title: "Slug", Type: TypeSlug, Required: true},
			{Name: "body", Title: "Body", Type: TypeText, Required: true},
			{Name: "seo_title", Title: "SEO Title", Type: TypeString, MaxLength: intPtr(70)},
			{Name: "seo_description", Title: "SEO Description", Type: TypeString, MaxLength: intPtr(160)},
		},
	})

	Register(SchemaType{
		Name:  "author",
		Title: "Author",
		Fields: []Field{
			{Name: "name", Title: "Name", Type: TypeString, Required: true, MinLength: intPtr(2), MaxLength: intPtr(100)},
			{Name: "slug", Title: "Slug", Type: TypeSlug, Required: true},
			{Name: "bio", Title: "Bio", Type: TypeText, MaxLength: intPtr(2000)},
			{Name: "avatar", Title: "Avatar", Type: TypeImage},
		},
	})

	Register(SchemaType{
		Name:  "category",
		Title: "Category",
		Fields: []Field{
			{Name: "title", Title: "Title", Type: TypeString, Required: true, MaxLength: intPtr(100)},
			{Name: "slug", Title: "Slug", Type: TypeSlug, Required: true},
			{Name: "description", Title: "Description", Type: TypeText},
			{Name: "order", Title: "Order", Type: TypeNumber, Min: floatPtr(0), Max: floatPtr(1000)},
		},
	})
}
