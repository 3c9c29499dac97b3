package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	value string
	err   error
	name  string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if in.Name != nil {
		f.name = *in.Name
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: &f.value},
	}, nil
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeSSM{value: "hello"}
	c, err := New(api)
	require.NoError(t, err)

	v, err := c.GetParameter(context.Background(), " /agent/openai-api-key ")
	require.NoError(t, err)
	require.Equal(t, "hello", v)
	require.Equal(t, "/agent/openai-api-key", api.name, "name must be trimmed before the call")
}

func TestGetParameter_EmptyName(t *testing.T) {
	c, err := New(&fakeSSM{})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "  ")
	require.Error(t, err)
}

func TestGetParameter_NotFound(t *testing.T) {
	c, err := New(&fakeSSM{err: &types.ParameterNotFound{}})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "/agent/github-api-key")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetParameter_APIError(t *testing.T) {
	c, err := New(&fakeSSM{err: errors.New("ssm unavailable")})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "/agent/openai-api-key")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "ssm unavailable")
}

// ---------------------------------------------------------------------------
// Secret
// ---------------------------------------------------------------------------

type fakeGetter struct {
	val string
	err error
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	return f.val, f.err
}

func TestSecret_JSONToken(t *testing.T) {
	g := &fakeGetter{val: `{"token":"sk-from-ssm"}`}
	v, err := Secret(context.Background(), g, "/agent/openai-api-key")
	require.NoError(t, err)
	require.Equal(t, "sk-from-ssm", v)
}

func TestSecret_MissingTokenField(t *testing.T) {
	g := &fakeGetter{val: `{"other":"value"}`}
	_, err := Secret(context.Background(), g, "/agent/openai-api-key")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestSecret_MalformedJSON(t *testing.T) {
	g := &fakeGetter{val: `{"broken`}
	_, err := Secret(context.Background(), g, "/agent/openai-api-key")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")
}

func TestSecret_NotFoundPassesThrough(t *testing.T) {
	g := &fakeGetter{err: ErrNotFound}
	_, err := Secret(context.Background(), g, "/agent/github-api-key")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSecret_NilGetter(t *testing.T) {
	_, err := Secret(context.Background(), nil, "/agent/openai-api-key")
	require.Error(t, err)
}

func TestSecret_EmptyName(t *testing.T) {
	g := &fakeGetter{val: `{"token":"x"}`}
	_, err := Secret(context.Background(), g, " ")
	require.Error(t, err)
}
