package export

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNode(name string) Node {
	return Node{
		ID:   "product-1",
		Type: "product",
		Properties: Properties{
			Name:     name,
			SourceID: 1,
		},
	}
}

func TestValidatePayloadAccepts(t *testing.T) {
	// SKU and price are optional.
	payload := &Payload{Nodes: []Node{validNode("Widget")}}
	result := ValidatePayload(payload)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidatePayloadEmpty(t *testing.T) {
	result := ValidatePayload(&Payload{})
	require.False(t, result.Valid)
	assert.Equal(t, []string{"No product nodes found"}, result.Errors)
}

func TestValidatePayloadMissingName(t *testing.T) {
	payload := &Payload{Nodes: []Node{validNode("Widget"), validNode("")}}
	result := ValidatePayload(payload)
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Node 1: Missing product name"}, result.Errors)
}

func TestValidatePayloadNameTooLong(t *testing.T) {
	payload := &Payload{Nodes: []Node{validNode(strings.Repeat("a", 256))}}
	result := ValidatePayload(payload)
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Node 0: Product name too long (max 255 characters)"}, result.Errors)

	payload = &Payload{Nodes: []Node{validNode(strings.Repeat("a", 255))}}
	assert.True(t, ValidatePayload(payload).Valid)
}

func TestValidatePayloadSKUTooLong(t *testing.T) {
	node := validNode("Widget")
	node.Properties.SKU = strings.Repeat("s", 101)
	result := ValidatePayload(&Payload{Nodes: []Node{node}})
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Node 0: SKU too long (max 100 characters)"}, result.Errors)
}

func TestValidatePayloadTooManyImages(t *testing.T) {
	node := validNode("Widget")
	for i := 0; i < maxProductImages+1; i++ {
		node.Properties.Images = append(node.Properties.Images, fmt.Sprintf("https://img/%d.jpg", i))
	}
	result := ValidatePayload(&Payload{Nodes: []Node{node}})
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Node 0: Too many images (max 10)"}, result.Errors)
}

func TestValidatePayloadTooManyAttributes(t *testing.T) {
	node := validNode("Widget")
	node.Properties.Attributes = make(map[string][]string)
	for i := 0; i < maxAttributes+1; i++ {
		node.Properties.Attributes[fmt.Sprintf("attr-%d", i)] = []string{"v"}
	}
	result := ValidatePayload(&Payload{Nodes: []Node{node}})
	require.False(t, result.Valid)
	assert.Equal(t, []string{"Node 0: Too many attributes (max 20)"}, result.Errors)
}

func TestValidatePayloadCollectsAllErrors(t *testing.T) {
	bad := validNode("")
	bad.Properties.SKU = strings.Repeat("s", 120)
	result := ValidatePayload(&Payload{Nodes: []Node{bad, validNode("ok")}})
	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
}
