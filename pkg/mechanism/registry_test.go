package mechanism

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveImplemented(t *testing.T) {
	r := NewRegistry()
	m, err := r.Resolve(SecondPrice)
	require.NoError(t, err)
	require.Equal(t, SecondPrice, m.Tag())
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve(Tag("does-not-exist"))
	require.ErrorIs(t, err, ErrUnknownTag)
}

func TestRegistry_ListTags(t *testing.T) {
	r := NewRegistry()
	tags := r.ListTags()
	require.Len(t, tags, 5)
	require.Contains(t, tags, SecondPrice)
	require.Contains(t, tags, UniformPrice)
	require.Contains(t, tags, DiscriminatoryPayAsBid)
	require.Contains(t, tags, DescendingPrice)
	require.Contains(t, tags, SealedFirstPrice)
}

func TestRegistry_Available(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Available(SecondPrice))
	require.True(t, r.Available(UniformPrice))
	require.False(t, r.Available(DiscriminatoryPayAsBid))
	require.False(t, r.Available(DescendingPrice))
	require.False(t, r.Available(SealedFirstPrice))
	require.False(t, r.Available(Tag("bogus")))
}

func TestRegistry_ReservedTagsFailToClear(t *testing.T) {
	r := NewRegistry()
	m, err := r.Resolve(DescendingPrice)
	require.NoError(t, err)
	_, err = m.Clear(nil, d("0"), d("0"))
	require.ErrorIs(t, err, ErrUnimplemented)
}
