package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logos/internal/compiler"
	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/registry"
)

func newStandard(t *testing.T, opts ...RegistryOption) (*Resolver, *registry.Memory) {
	t.Helper()
	reg := registry.NewMemory()
	return New(WithContexts(Standard(reg, opts...))), reg
}

func TestResolve_UnknownHolonIsPlaceholder(t *testing.T) {
	r, reg := newStandard(t)

	n, err := r.Resolve(context.Background(), "world.house.manifest")
	require.NoError(t, err)

	_, ok := n.(*node.Placeholder)
	assert.True(t, ok, "unknown holon should resolve to a placeholder, got %T", n)
	assert.Equal(t, "world.house", n.Handle())
	assert.Equal(t, 0, reg.Len(), "placeholders are not registered")
}

func TestResolve_CacheIdentity(t *testing.T) {
	r, _ := newStandard(t)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "world.house.manifest")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "world.house.witness[phase=DEVELOP]@span=x")
	require.NoError(t, err)

	assert.Same(t, first, second, "aspect and clauses are not part of the cache key")
	assert.True(t, r.IsResolved("world.house"))
	assert.False(t, r.IsResolved("world.house.manifest"))

	r.ClearCache()
	assert.False(t, r.IsResolved("world.house"))

	third, err := r.Resolve(ctx, "world.house")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestResolve_Invalidate(t *testing.T) {
	r, _ := newStandard(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "world.house")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "self.memory")
	require.NoError(t, err)
	assert.Equal(t, []string{"self.memory", "world.house"}, r.CachedHandles())

	r.Invalidate("world.house")
	assert.Equal(t, []string{"self.memory"}, r.CachedHandles())
}

func TestResolve_RegistryHit(t *testing.T) {
	r, reg := newStandard(t)
	fn := node.NewFunc("concept.justice", "fairness")
	require.NoError(t, reg.Register("concept.justice", fn))

	n, err := r.Resolve(context.Background(), "concept.justice.manifest")
	require.NoError(t, err)
	assert.Same(t, fn, n)
}

func TestResolve_UnknownContext_EmptyCacheSuggestsContexts(t *testing.T) {
	r, _ := newStandard(t)

	_, err := r.Resolve(context.Background(), "wrold.house")
	require.Error(t, err)

	var nf *PathNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.True(t, IsPathNotFound(err))
	assert.Equal(t, "wrold.house", nf.Handle)
	assert.Equal(t, "wrold", nf.Context)
	require.Len(t, nf.Suggestions, 5)
	assert.Equal(t, "world", nf.Suggestions[0])
	assert.Contains(t, err.Error(), "PathNotFoundError@wrold.house")
}

func TestResolve_UnknownContext_SuggestsCachedHandles(t *testing.T) {
	r, _ := newStandard(t)
	ctx := context.Background()
	for _, h := range []string{"world.house", "world.garden", "self.memory"} {
		_, err := r.Resolve(ctx, h)
		require.NoError(t, err)
	}

	_, err := r.Resolve(ctx, "wrld.house")
	var nf *PathNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "world.house", nf.Suggestions[0])
	assert.ElementsMatch(t, []string{"world.house", "world.garden", "self.memory"}, nf.Suggestions)
	assert.Equal(t, nf.Suggestions, nf.Related)
}

func TestResolve_SuggestionLimit(t *testing.T) {
	reg := registry.NewMemory()
	r := New(WithContexts(Standard(reg)), WithSuggestionLimit(2))
	ctx := context.Background()
	for _, h := range []string{"world.a", "world.b", "world.c", "world.d"} {
		_, err := r.Resolve(ctx, h)
		require.NoError(t, err)
	}

	_, err := r.Resolve(ctx, "nowhere.a")
	var nf *PathNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Len(t, nf.Suggestions, 2)
}

func TestResolve_ValidContextWithoutResolver(t *testing.T) {
	r := New()
	_, err := r.Resolve(context.Background(), "void.entropy")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindPathNotFound))
	assert.Contains(t, err.Error(), "no resolver is registered")
}

func TestResolve_ResolverForForeignContextIgnored(t *testing.T) {
	called := false
	r := New(WithContextResolver("foo", ContextResolverFunc(
		func(_ context.Context, holon string, _ []string) (node.Node, error) {
			called = true
			return node.NewPlaceholder("foo."+holon, nil), nil
		},
	)))
	_, err := r.Resolve(context.Background(), "foo.bar")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindPathNotFound))
	assert.Contains(t, err.Error(), "is not one of the contexts")
	assert.False(t, called)
	assert.False(t, r.IsResolved("foo.bar"))
}

func TestResolve_SyntaxErrorPropagates(t *testing.T) {
	r, _ := newStandard(t)
	_, err := r.Resolve(context.Background(), "world")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindPathSyntax))
}

func TestResolve_ContextResolverErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	r := New(WithContextResolver("time", ContextResolverFunc(
		func(context.Context, string, []string) (node.Node, error) { return nil, boom },
	)))
	_, err := r.Resolve(context.Background(), "time.now")
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.IsResolved("time.now"))
}

func TestResolve_ContextResolverGetsRest(t *testing.T) {
	var gotHolon string
	var gotRest []string
	r := New(WithContextResolver("time", ContextResolverFunc(
		func(_ context.Context, holon string, rest []string) (node.Node, error) {
			gotHolon, gotRest = holon, rest
			return node.NewPlaceholder("time."+holon, nil), nil
		},
	)))
	_, err := r.Resolve(context.Background(), "time.trace.witness.deep")
	require.NoError(t, err)
	assert.Equal(t, "trace", gotHolon)
	assert.Equal(t, []string{"witness", "deep"}, gotRest)
}

func TestRegistryContext_CompilesSpec(t *testing.T) {
	src := compiler.Map{"world.house": `purpose: "A dwelling"`}
	r, reg := newStandard(t, WithSpecs(src, compiler.NewCUE()))

	n, err := r.Resolve(context.Background(), "world.house")
	require.NoError(t, err)

	spec, ok := n.(*node.Spec)
	require.True(t, ok, "got %T", n)
	assert.Equal(t, "A dwelling", spec.Purpose)

	got, ok := reg.Get("world.house")
	require.True(t, ok, "compiled node is registered")
	assert.Same(t, n, got)
}

func TestRegistryContext_ValidationErrorPropagates(t *testing.T) {
	src := compiler.Map{"world.house": `aspects: {}`}
	r, _ := newStandard(t, WithSpecs(src, compiler.NewCUE()))

	_, err := r.Resolve(context.Background(), "world.house")
	require.Error(t, err)
	assert.True(t, compiler.IsValidationError(err))
	assert.True(t, errs.Is(err, errs.KindCompile))
}

func TestRegistryContext_BuildFailureDegradesToStub(t *testing.T) {
	raw := `purpose: "unterminated`
	src := compiler.Map{"world.ruin": raw}
	r, reg := newStandard(t, WithSpecs(src, compiler.NewCUE()))

	n, err := r.Resolve(context.Background(), "world.ruin")
	require.NoError(t, err)

	stub, ok := n.(*node.Stub)
	require.True(t, ok, "got %T", n)
	assert.Equal(t, raw, stub.Raw())
	assert.Equal(t, 0, reg.Len())
}

func TestSimilar(t *testing.T) {
	got := Similar("concpt", []string{"world", "concept", "self"}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "concept", got[0])

	assert.Empty(t, Similar("x", nil, 5))
}
