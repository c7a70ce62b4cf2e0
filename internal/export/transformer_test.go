package export

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloia/internal/models"
)

func newTestTransformer() *Transformer {
	return NewTransformer("https://shop.example.com", "USD", "kg", "cm")
}

func TestTransformSimpleProduct(t *testing.T) {
	p := testProduct(42, "widget")
	p.Name = "Blue Widget"
	p.SKU = "BW-42"
	p.Categories = []models.Category{
		{ID: 7, Name: "Widgets", Slug: "widgets"},
		{ID: 9, Name: "Blue Things", Slug: "blue-things"},
	}
	p.Manufacturer = "Acme"
	p.Tags = []models.Tag{{ID: 1, Name: "sale"}}

	payload := newTestTransformer().Transform([]models.Product{p})
	require.Len(t, payload.Nodes, 1)

	node := payload.Nodes[0]
	assert.Equal(t, "product-42", node.ID)
	assert.Equal(t, "product", node.Type)
	assert.Equal(t, []string{"Blue Widget", "Widgets", "Blue Things", "Acme"}, node.Labels)

	props := node.Properties
	assert.Equal(t, "shop.example.com", props.ClientID)
	assert.Equal(t, "BW-42", props.Model)
	assert.Equal(t, []string{"Widgets", "Blue Things"}, props.Category)
	assert.Equal(t, []string{"sale"}, props.Tags)
	assert.Equal(t, int64(42), props.SourceID)
	assert.Equal(t, "widget", props.Slug)
	assert.Equal(t, models.TypeSimple, props.ProductType)

	// Two category edges plus one manufacturer edge.
	require.Len(t, payload.Edges, 3)
	assert.Equal(t, Edge{
		Source: "product-42",
		Target: "category-7",
		Type:   EdgeBelongsTo,
		Properties: map[string]string{
			"category_name": "Widgets",
			"category_slug": "widgets",
		},
	}, payload.Edges[0])
	assert.Equal(t, Edge{
		Source: "product-42",
		Target: "manufacturer-acme",
		Type:   EdgeManufacturedBy,
		Properties: map[string]string{
			"manufacturer_name": "Acme",
		},
	}, payload.Edges[2])
}

func TestTransformNoCategoriesNoManufacturer(t *testing.T) {
	p := testProduct(1, "plain")

	payload := newTestTransformer().Transform([]models.Product{p})
	require.Len(t, payload.Nodes, 1)
	assert.Empty(t, payload.Edges)
	assert.Equal(t, []string{"plain"}, payload.Nodes[0].Labels)
	assert.Empty(t, payload.Nodes[0].Properties.Manufacturer)
}

func TestTransformManufacturerFromBrandAttribute(t *testing.T) {
	p := testProduct(1, "widget")
	p.Manufacturer = "Fallback Corp"
	p.Attributes = []models.ProductAttribute{
		{Name: "Color", Values: []string{"blue"}},
		{Name: "Brand", Values: []string{"Attr Brand"}},
	}

	payload := newTestTransformer().Transform([]models.Product{p})
	props := payload.Nodes[0].Properties
	// The brand attribute wins over the product-level field.
	assert.Equal(t, "Attr Brand", props.Manufacturer)

	var edge *Edge
	for i := range payload.Edges {
		if payload.Edges[i].Type == EdgeManufacturedBy {
			edge = &payload.Edges[i]
		}
	}
	require.NotNil(t, edge)
	assert.Equal(t, "manufacturer-attr-brand", edge.Target)
}

func TestTransformImageCap(t *testing.T) {
	p := testProduct(1, "widget")
	p.ImageURL = "https://img/main.jpg"
	for i := 0; i < 15; i++ {
		p.Gallery = append(p.Gallery, fmt.Sprintf("https://img/g%d.jpg", i))
	}

	payload := newTestTransformer().Transform([]models.Product{p})
	images := payload.Nodes[0].Properties.Images
	require.Len(t, images, maxProductImages)
	assert.Equal(t, "https://img/main.jpg", images[0])
}

func TestTransformVariableProduct(t *testing.T) {
	sale := 8.0
	p := testProduct(10, "shirt")
	p.Type = models.TypeVariable
	p.ImageURL = "https://img/parent.jpg"
	p.Gallery = []string{"https://img/a.jpg", "https://img/b.jpg", "https://img/c.jpg", "https://img/d.jpg", "https://img/e.jpg"}
	p.Variants = []models.Variant{
		{
			ID:         101,
			ProductID:  10,
			SKU:        "SH-S",
			Title:      "Small",
			Price:      12,
			SalePrice:  &sale,
			InStock:    true,
			Attributes: map[string]string{"attribute_pa_size": "Small "},
			ImageURL:   "https://img/small.jpg",
		},
		{
			ID:                102,
			ProductID:         10,
			Title:             "Large",
			Price:             18,
			InStock:           false,
			BackordersAllowed: true,
			Attributes:        map[string]string{"attribute_pa_size": "large"},
		},
	}

	payload := newTestTransformer().Transform([]models.Product{p})
	props := payload.Nodes[0].Properties

	assert.True(t, props.HasVariations)
	assert.Equal(t, 2, props.VariationCount)
	require.NotNil(t, props.PriceRange)
	assert.Equal(t, 12.0, props.PriceRange.Min)
	assert.Equal(t, 18.0, props.PriceRange.Max)
	assert.Equal(t, "USD", props.PriceRange.Currency)

	require.Len(t, props.Variants, 2)
	small, large := props.Variants[0], props.Variants[1]

	assert.Equal(t, "101", small.ID)
	assert.Equal(t, "10", small.ProductID)
	assert.Equal(t, "SH-S", small.SKU)
	assert.Equal(t, "deny", small.InventoryPolicy)
	assert.Equal(t, map[string]string{"size": "Small"}, small.Attributes)
	assert.Equal(t, map[string]string{"attribute_pa_size": "Small "}, small.RawAttributes)
	// Own image first, then parent gallery up to the cap.
	require.Len(t, small.Images, maxVariantImages)
	assert.Equal(t, "https://img/small.jpg", small.Images[0])
	assert.Equal(t, "https://img/a.jpg", small.Images[1])

	// SKU fallback and backorder policy.
	assert.Equal(t, "VAR-102", large.SKU)
	assert.Equal(t, "backorder", large.InventoryPolicy)
	// No own image, parent main image stands in.
	assert.Equal(t, "https://img/parent.jpg", large.Images[0])
}

func TestCheckoutURL(t *testing.T) {
	p := testProduct(10, "shirt")
	v := models.Variant{
		ID:         101,
		ProductID:  10,
		Attributes: map[string]string{"attribute_pa_size": "small", "Color": "Navy Blue"},
	}

	raw := newTestTransformer().checkoutURL(&v, &p)
	assert.True(t, strings.HasPrefix(raw, "https://shop.example.com/cart/?"))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "10", q.Get("add-to-cart"))
	assert.Equal(t, "101", q.Get("variation_id"))
	assert.Equal(t, "1", q.Get("quantity"))
	assert.Equal(t, "small", q.Get("attribute_pa-size"))
	assert.Equal(t, "Navy Blue", q.Get("attribute_color"))
}

func TestSlugFromPermalink(t *testing.T) {
	p := testProduct(1, "widget")
	p.Permalink = "https://shop.example.com/product/blue-widget/"
	p.Slug = "stored-slug"
	assert.Equal(t, "blue-widget", slugFromPermalink(&p))

	p.Permalink = ""
	assert.Equal(t, "stored-slug", slugFromPermalink(&p))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-corp", slugify("Acme Corp"))
	assert.Equal(t, "acme-co", slugify("  Acme & Co!  "))
	assert.Equal(t, "r2-d2", slugify("R2-D2"))
}
