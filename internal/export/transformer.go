package export

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alloia/internal/models"
)

const (
	maxProductImages = 10
	maxVariantImages = 5
)

// Transformer converts catalog products into the graph payload. Pure
// in-memory work; the only inputs beyond the products themselves are
// site-level settings captured at construction.
type Transformer struct {
	siteURL       string
	siteHost      string
	currency      string
	weightUnit    string
	dimensionUnit string
}

func NewTransformer(siteURL, currency, weightUnit, dimensionUnit string) *Transformer {
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &Transformer{
		siteURL:       strings.TrimRight(siteURL, "/"),
		siteHost:      host,
		currency:      currency,
		weightUnit:    weightUnit,
		dimensionUnit: dimensionUnit,
	}
}

// Transform builds one node per product plus BELONGS_TO and
// MANUFACTURED_BY edges. Each product contributes exactly one node.
func (t *Transformer) Transform(products []models.Product) *Payload {
	payload := &Payload{
		Nodes: make([]Node, 0, len(products)),
		Edges: []Edge{},
	}

	for i := range products {
		p := &products[i]
		payload.Nodes = append(payload.Nodes, t.buildNode(p))
		payload.Edges = append(payload.Edges, t.categoryEdges(p)...)
		if edge, ok := t.manufacturerEdge(p); ok {
			payload.Edges = append(payload.Edges, edge)
		}
	}

	return payload
}

func (t *Transformer) buildNode(p *models.Product) Node {
	categories := categoryNames(p)
	manufacturer := extractManufacturer(p)

	labels := make([]string, 0, len(categories)+2)
	labels = append(labels, p.Name)
	labels = append(labels, categories...)
	if manufacturer != "" {
		labels = append(labels, manufacturer)
	}

	currency := p.Currency
	if currency == "" {
		currency = t.currency
	}

	node := Node{
		ID:     nodeID(p.ID),
		Type:   "product",
		Labels: labels,
		Properties: Properties{
			ClientID:         t.siteHost,
			Name:             p.Name,
			Description:      p.Description,
			ShortDescription: p.ShortDescription,
			SKU:              p.SKU,
			Category:         categories,
			Price:            p.Price,
			RegularPrice:     p.RegularPrice,
			SalePrice:        p.SalePrice,
			Currency:         currency,
			Availability:     p.InStock,
			StockQuantity:    p.StockQuantity,
			Manufacturer:     manufacturer,
			Model:            p.SKU,
			Images:           p.Images(maxProductImages),
			Tags:             tagNames(p),
			Attributes:       attributeMap(p),
			Dimensions: Dimensions{
				Length: p.Length,
				Width:  p.Width,
				Height: p.Height,
				Unit:   t.dimensionUnit,
			},
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
			SourceID:    p.ID,
			Permalink:   p.Permalink,
			Slug:        slugFromPermalink(p),
			ProductType: p.Type,
		},
	}

	if p.IsVariable() && len(p.Variants) > 0 {
		variants := make([]VariantRecord, 0, len(p.Variants))
		for vi := range p.Variants {
			variants = append(variants, t.buildVariant(&p.Variants[vi], p, currency))
		}
		node.Properties.Variants = variants
		node.Properties.HasVariations = true
		node.Properties.VariationCount = len(variants)

		min, max := variants[0].Price, variants[0].Price
		for _, v := range variants[1:] {
			if v.Price < min {
				min = v.Price
			}
			if v.Price > max {
				max = v.Price
			}
		}
		node.Properties.PriceRange = &PriceRange{Min: min, Max: max, Currency: currency}
	}

	return node
}

func (t *Transformer) buildVariant(v *models.Variant, parent *models.Product, currency string) VariantRecord {
	sku := v.SKU
	if sku == "" {
		sku = fmt.Sprintf("VAR-%d", v.ID)
	}

	policy := "deny"
	if v.BackordersAllowed {
		policy = "backorder"
	}

	return VariantRecord{
		ID:              strconv.FormatInt(v.ID, 10),
		ProductID:       strconv.FormatInt(parent.ID, 10),
		SKU:             sku,
		Title:           v.Title,
		Price:           v.Price,
		RegularPrice:    v.RegularPrice,
		SalePrice:       v.SalePrice,
		Currency:        currency,
		Attributes:      normalizeVariantAttributes(v.Attributes),
		RawAttributes:   v.Attributes,
		InStock:         v.InStock,
		InventoryQty:    v.StockQuantity,
		InventoryPolicy: policy,
		Images:          variantImages(v, parent),
		CheckoutURL:     t.checkoutURL(v, parent),
		Weight:          v.Weight,
		WeightUnit:      t.weightUnit,
		Dimensions: Dimensions{
			Length: v.Length,
			Width:  v.Width,
			Height: v.Height,
			Unit:   t.dimensionUnit,
		},
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.Format(time.RFC3339),
	}
}

// variantImages returns up to 5 URLs: the variant's own image, or the
// parent's main image when the variant has none, then parent gallery
// entries filling the remaining slots.
func variantImages(v *models.Variant, parent *models.Product) []string {
	images := make([]string, 0, maxVariantImages)
	if v.ImageURL != "" {
		images = append(images, v.ImageURL)
	} else if parent.ImageURL != "" {
		images = append(images, parent.ImageURL)
	}
	for _, url := range parent.Gallery {
		if len(images) >= maxVariantImages {
			break
		}
		if url != "" {
			images = append(images, url)
		}
	}
	return images
}

// checkoutURL builds a direct add-to-cart link for one variant:
// parent id, variant id, quantity 1 and one query arg per option.
func (t *Transformer) checkoutURL(v *models.Variant, parent *models.Product) string {
	q := url.Values{}
	q.Set("add-to-cart", strconv.FormatInt(parent.ID, 10))
	q.Set("variation_id", strconv.FormatInt(v.ID, 10))
	q.Set("quantity", "1")
	for name, value := range v.Attributes {
		key := strings.TrimPrefix(name, "attribute_")
		q.Set("attribute_"+slugify(key), value)
	}
	return t.siteURL + "/cart/?" + q.Encode()
}

// normalizeVariantAttributes lowercases option names and strips the
// store's "attribute_" and taxonomy "pa_" prefixes so AI queries see
// "color", not "attribute_pa_color".
func normalizeVariantAttributes(raw map[string]string) map[string]string {
	normalized := make(map[string]string, len(raw))
	for name, value := range raw {
		clean := strings.TrimPrefix(name, "attribute_")
		clean = strings.TrimPrefix(clean, "pa_")
		clean = strings.ToLower(strings.TrimSpace(clean))
		normalized[clean] = strings.TrimSpace(value)
	}
	return normalized
}

func (t *Transformer) categoryEdges(p *models.Product) []Edge {
	edges := make([]Edge, 0, len(p.Categories))
	for _, c := range p.Categories {
		edges = append(edges, Edge{
			Source: nodeID(p.ID),
			Target: fmt.Sprintf("category-%d", c.ID),
			Type:   EdgeBelongsTo,
			Properties: map[string]string{
				"category_name": c.Name,
				"category_slug": c.Slug,
			},
		})
	}
	return edges
}

func (t *Transformer) manufacturerEdge(p *models.Product) (Edge, bool) {
	manufacturer := extractManufacturer(p)
	if manufacturer == "" {
		return Edge{}, false
	}
	return Edge{
		Source: nodeID(p.ID),
		Target: "manufacturer-" + slugify(manufacturer),
		Type:   EdgeManufacturedBy,
		Properties: map[string]string{
			"manufacturer_name": manufacturer,
		},
	}, true
}

// extractManufacturer looks for an attribute whose name contains
// "manufacturer" or "brand" and takes its first value, then falls back
// to the product-level manufacturer field. Empty means no edge.
func extractManufacturer(p *models.Product) string {
	for _, attr := range p.Attributes {
		name := strings.ToLower(attr.Name)
		if strings.Contains(name, "manufacturer") || strings.Contains(name, "brand") {
			if len(attr.Values) > 0 && attr.Values[0] != "" {
				return attr.Values[0]
			}
		}
	}
	return p.Manufacturer
}

func categoryNames(p *models.Product) []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return names
}

func tagNames(p *models.Product) []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

func attributeMap(p *models.Product) map[string][]string {
	attrs := make(map[string][]string, len(p.Attributes))
	for _, a := range p.Attributes {
		attrs[a.Name] = a.Values
	}
	return attrs
}

func nodeID(productID int64) string {
	return fmt.Sprintf("product-%d", productID)
}

// slugFromPermalink takes the last path segment of the permalink,
// falling back to the stored slug.
func slugFromPermalink(p *models.Product) string {
	if p.Permalink != "" {
		if u, err := url.Parse(p.Permalink); err == nil {
			path := strings.TrimRight(u.Path, "/")
			if idx := strings.LastIndex(path, "/"); idx >= 0 {
				if slug := path[idx+1:]; slug != "" {
					return slug
				}
			}
		}
	}
	return p.Slug
}

// slugify lowercases and replaces runs of non-alphanumeric characters
// with single dashes.
func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
