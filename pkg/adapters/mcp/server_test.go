package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/markov"
	markovmcp "github.com/aretw0/markov/pkg/adapters/mcp"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, definition string, opts ...markov.Option) *markovmcp.Server {
	t.Helper()
	eng, err := markov.New(definition, opts...)
	require.NoError(t, err)
	return markovmcp.NewServer(eng, nil)
}

func TestHandleApply(t *testing.T) {
	s := newServer(t, "a→b\nb→c\nc→⋅4")

	resp, err := s.HandleApply(context.Background(), mcp.CallToolRequest{}, markovmcp.ApplyArgs{Word: "aaabc", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "4cccc", resp.Word)
	assert.Equal(t, 8, resp.Steps)
	assert.Equal(t, domain.OutcomeTerminated, resp.Outcome)
}

func TestHandleApply_Errors(t *testing.T) {
	s := newServer(t, "a→aa", markov.WithStepLimitPolicy(domain.LimitAsError))
	ctx := context.Background()

	_, err := s.HandleApply(ctx, mcp.CallToolRequest{}, markovmcp.ApplyArgs{Word: "a", Limit: 0})
	assert.ErrorIs(t, err, domain.ErrZeroStepLimit)

	resp, err := s.HandleApply(ctx, mcp.CallToolRequest{}, markovmcp.ApplyArgs{Word: "a", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, "aaaa", resp.Word)
	assert.Equal(t, domain.OutcomeStepLimitReached, resp.Outcome)
	assert.NotEmpty(t, resp.Warning)
}

func TestHandleApply_MaxStepLimit(t *testing.T) {
	s := newServer(t, "a→aa")
	ctx := context.Background()

	_, err := s.HandleApply(ctx, mcp.CallToolRequest{}, markovmcp.ApplyArgs{Word: "a", Limit: 2_000_000_000})
	assert.ErrorIs(t, err, domain.ErrStepLimitTooHigh)

	s.MaxStepLimit = 5
	_, err = s.HandleApply(ctx, mcp.CallToolRequest{}, markovmcp.ApplyArgs{Word: "a", Limit: 6})
	assert.ErrorIs(t, err, domain.ErrStepLimitTooHigh)

	resp, err := s.HandleApply(ctx, mcp.CallToolRequest{}, markovmcp.ApplyArgs{Word: "a", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Steps)
}

func TestHandleStep(t *testing.T) {
	s := newServer(t, "b→x\na→⋅y")
	ctx := context.Background()

	resp, err := s.HandleStep(ctx, mcp.CallToolRequest{}, markovmcp.StepArgs{Word: "aab"})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, "aax", resp.Word)
	assert.Equal(t, "b→x", resp.Formula)
	assert.Equal(t, 2, resp.Position)
	assert.Equal(t, domain.OutcomeRunning, resp.Outcome)

	resp, err = s.HandleStep(ctx, mcp.CallToolRequest{}, markovmcp.StepArgs{Word: "aax"})
	require.NoError(t, err)
	assert.Equal(t, "yax", resp.Word)
	assert.Equal(t, domain.OutcomeTerminated, resp.Outcome)

	resp, err = s.HandleStep(ctx, mcp.CallToolRequest{}, markovmcp.StepArgs{Word: "zz"})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.Equal(t, domain.OutcomeHalted, resp.Outcome)

	_, err = s.HandleStep(ctx, mcp.CallToolRequest{}, markovmcp.StepArgs{Word: "#"})
	assert.ErrorIs(t, err, domain.ErrWordContainsInvalidCharacter)
}

func TestToolsAreListed(t *testing.T) {
	s := newServer(t, "a→b")

	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, "apply_scheme")
	assert.Contains(t, body, "step_word")
	assert.Contains(t, body, "describe_scheme")
}

func TestSchemeResource(t *testing.T) {
	s := newServer(t, "a→⋅b")

	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"markov://scheme"}}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `a→⋅b`)
}
