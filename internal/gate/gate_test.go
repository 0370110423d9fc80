package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/node"
)

func TestCheckAndInvoke_ObserverRequired(t *testing.T) {
	n := node.NewPlaceholder("world.house", nil)

	_, err := CheckAndInvoke(context.Background(), n, "manifest", nil, nil)
	require.Error(t, err)

	var oe *ObserverRequiredError
	require.ErrorAs(t, err, &oe)
	assert.True(t, errs.Is(err, errs.KindObserverRequired))
	assert.Contains(t, err.Error(), "ObserverRequiredError@world.house.manifest")
}

func TestCheckAndInvoke_AffordanceError(t *testing.T) {
	n := node.NewPlaceholder("world.house", nil)
	poet := node.NewObserverMeta("ada", "poet")

	_, err := CheckAndInvoke(context.Background(), n, "blueprint", &poet, nil)
	require.Error(t, err)

	var ae *AffordanceError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "poet", ae.Archetype)
	assert.Equal(t, "blueprint", ae.Aspect)
	assert.Equal(t, []string{"affordances", "describe", "manifest", "metaphorize", "witness"}, ae.Available)
	assert.Equal(t, ae.Available, ae.Related)
	assert.True(t, errs.Is(err, errs.KindAffordance))
}

func TestCheckAndInvoke_SuggestsClosestAspect(t *testing.T) {
	n := node.NewPlaceholder("world.house", nil)
	poet := node.NewObserverMeta("ada", "poet")

	_, err := CheckAndInvoke(context.Background(), n, "manifets", &poet, nil)
	var ae *AffordanceError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "did you mean manifest?", ae.Suggestion)
}

func TestCheckAndInvoke_Delegates(t *testing.T) {
	var got node.Kwargs
	n := node.NewFunc("world.house", "a dwelling").
		On("open", func(_ context.Context, _ *node.ObserverMeta, kw node.Kwargs) (any, error) {
			got = kw
			return "opened", nil
		})
	obs := node.NewObserverMeta("ada", "architect")

	out, err := CheckAndInvoke(context.Background(), n, "open", &obs, node.Kwargs{"key": 1})
	require.NoError(t, err)
	assert.Equal(t, "opened", out)
	assert.Equal(t, node.Kwargs{"key": 1}, got)
}

func TestAvailable_PureInArchetype(t *testing.T) {
	n := node.NewPlaceholder("world.house", nil)
	a := node.NewObserverMeta("ada", "architect")
	b := node.NewObserverMeta("bob", "architect", "flight")

	assert.Equal(t, Available(n, a), Available(n, b))
	assert.Equal(t, Available(n, a), Available(n, a))
	assert.Contains(t, Available(n, a), "blueprint")
}

func TestRequireAffordance_Define(t *testing.T) {
	n := node.NewPlaceholder("concept.justice", nil)
	phil := node.NewObserverMeta("soc", "philosopher")
	poet := node.NewObserverMeta("ada", "poet")

	assert.NoError(t, RequireAffordance(n, node.AspectDefine, &phil))
	assert.Error(t, RequireAffordance(n, node.AspectDefine, &poet))
}
