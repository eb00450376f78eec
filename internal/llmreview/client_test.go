package llmreview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	name string
}

func (c *fakeClient) Name() string                  { return c.name }
func (c *fakeClient) GetConfig() *ClientConfig       { return NewClientConfig(c.name) }
func (c *fakeClient) GenerateSuggestions(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	return &GenerateOutput{}, nil
}

func TestRegistryCreate_UnknownNameReturnsError(t *testing.T) {
	_, err := Create("does-not-exist", nil)
	assert.Error(t, err)
}

func TestRegistryRegisterAndCreate(t *testing.T) {
	Register("fake-test-client", func(config *ClientConfig) (Client, error) {
		return &fakeClient{name: config.Name}, nil
	})

	client, err := Create("fake-test-client", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake-test-client", client.Name())
}

func TestList_IncludesRegisteredClients(t *testing.T) {
	Register("fake-list-client", func(config *ClientConfig) (Client, error) {
		return &fakeClient{name: config.Name}, nil
	})
	assert.Contains(t, List(), "fake-list-client")
}
