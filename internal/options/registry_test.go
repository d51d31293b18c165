package options

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boutique/internal/catalog"
)

type fakeReader struct {
	values map[catalog.OptionVocabulary][]string
	calls  int
	err    error
}

func (f *fakeReader) Options(_ context.Context, v catalog.OptionVocabulary) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.values[v], nil
}

func TestSnapshotLoadsOnce(t *testing.T) {
	reader := &fakeReader{values: map[catalog.OptionVocabulary][]string{
		catalog.OptionSizes:  {"S", "M", "L"},
		catalog.OptionStores: {"Acme"},
	}}
	reg := NewRegistry(reader)
	ctx := context.Background()

	first, err := reg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "M", "L"}, first["sizes"])

	loaded := reader.calls
	_, err = reg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, loaded, reader.calls, "second snapshot must come from cache")
}

func TestRefreshReloads(t *testing.T) {
	reader := &fakeReader{values: map[catalog.OptionVocabulary][]string{
		catalog.OptionSizes: {"S"},
	}}
	reg := NewRegistry(reader)
	ctx := context.Background()

	_, err := reg.Snapshot(ctx)
	require.NoError(t, err)

	reader.values[catalog.OptionSizes] = []string{"S", "XL"}
	require.NoError(t, reg.Refresh(ctx))

	snap, err := reg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "XL"}, snap["sizes"])
}

func TestRefreshKeepsCacheOnFailure(t *testing.T) {
	reader := &fakeReader{values: map[catalog.OptionVocabulary][]string{
		catalog.OptionGenders: {"men", "women"},
	}}
	reg := NewRegistry(reader)
	ctx := context.Background()

	_, err := reg.Snapshot(ctx)
	require.NoError(t, err)

	reader.err = errors.New("backend down")
	require.Error(t, reg.Refresh(ctx))

	reader.err = nil
	snap, err := reg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"men", "women"}, snap["genders"])
}
