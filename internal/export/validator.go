package export

import "fmt"

const (
	maxNameLength = 255
	maxSKULength  = 100
	maxAttributes = 20
)

// ValidationResult aggregates node-scoped structural errors. The
// validator never mutates the payload; it accepts or rejects the whole
// submission.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidatePayload checks the graph against the remote service's shape
// limits. Name is the only required field; SKU and price may be absent.
func ValidatePayload(payload *Payload) ValidationResult {
	var errors []string

	if len(payload.Nodes) == 0 {
		errors = append(errors, "No product nodes found")
	}

	for i := range payload.Nodes {
		props := &payload.Nodes[i].Properties

		if props.Name == "" {
			errors = append(errors, fmt.Sprintf("Node %d: Missing product name", i))
		} else if len(props.Name) > maxNameLength {
			errors = append(errors, fmt.Sprintf("Node %d: Product name too long (max %d characters)", i, maxNameLength))
		}

		if props.SKU != "" && len(props.SKU) > maxSKULength {
			errors = append(errors, fmt.Sprintf("Node %d: SKU too long (max %d characters)", i, maxSKULength))
		}

		if len(props.Images) > maxProductImages {
			errors = append(errors, fmt.Sprintf("Node %d: Too many images (max %d)", i, maxProductImages))
		}

		if len(props.Attributes) > maxAttributes {
			errors = append(errors, fmt.Sprintf("Node %d: Too many attributes (max %d)", i, maxAttributes))
		}
	}

	return ValidationResult{Valid: len(errors) == 0, Errors: errors}
}
