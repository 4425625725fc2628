package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vendora-hq/vendora/internal/models"
)

func TestRegisterPreventsDuplicates(t *testing.T) {
	key := "page:test-unique-resource"
	err := Register(&ResourceDefinition{
		Key:  key,
		Type: models.ResourceTypePage,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		removeResource(key)
	})

	err = Register(&ResourceDefinition{
		Key:  key,
		Type: models.ResourceTypePage,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, errDuplicateKey)
}

func TestRegisterValidatesDefinition(t *testing.T) {
	require.ErrorIs(t, Register(nil), errNilDefinition)
	require.ErrorIs(t, Register(&ResourceDefinition{Type: models.ResourceTypePage}), errEmptyKey)
	require.ErrorIs(t, Register(&ResourceDefinition{Key: "page:bad-type", Type: "widget"}), errInvalidType)
	require.ErrorIs(t, Register(&ResourceDefinition{
		Key:       "page:self-parent",
		Type:      models.ResourceTypePage,
		ParentKey: "page:self-parent",
	}), errSelfParent)
}

func TestRegisterAppliesDefaults(t *testing.T) {
	key := "component:test-defaults"
	require.NoError(t, Register(&ResourceDefinition{
		Key:  key,
		Type: models.ResourceTypeComponent,
	}))
	t.Cleanup(func() {
		removeResource(key)
	})

	def, ok := Get(key)
	require.True(t, ok)
	require.Equal(t, key, def.Name)
	require.Equal(t, 1, def.RequiredLevel)
}

func TestAllOrdersBySortOrderThenKey(t *testing.T) {
	keys := []string{"page:test-order-b", "page:test-order-a", "page:test-order-c"}
	require.NoError(t, Register(&ResourceDefinition{Key: keys[0], Type: models.ResourceTypePage, SortOrder: 500}))
	require.NoError(t, Register(&ResourceDefinition{Key: keys[1], Type: models.ResourceTypePage, SortOrder: 500}))
	require.NoError(t, Register(&ResourceDefinition{Key: keys[2], Type: models.ResourceTypePage, SortOrder: 499}))
	t.Cleanup(func() {
		for _, key := range keys {
			removeResource(key)
		}
	})

	all := All()
	positions := make(map[string]int, len(all))
	for i, def := range all {
		positions[def.Key] = i
	}

	require.Less(t, positions[keys[2]], positions[keys[1]])
	require.Less(t, positions[keys[1]], positions[keys[0]])
}

func TestValidateParentsCatchesUnknownParent(t *testing.T) {
	key := "page:test-orphan"
	require.NoError(t, Register(&ResourceDefinition{
		Key:       key,
		Type:      models.ResourceTypePage,
		ParentKey: "page:test-missing-parent",
	}))
	t.Cleanup(func() {
		removeResource(key)
	})

	err := ValidateParents()
	require.Error(t, err)
	require.Contains(t, err.Error(), "page:test-missing-parent")
}

func TestCatalogParentsResolve(t *testing.T) {
	require.NoError(t, ValidateParents())

	def, ok := Get(AccessControlResourceKey)
	require.True(t, ok)
	require.Equal(t, models.ResourceTypePage, def.Type)
	require.Equal(t, "/settings/access-control", def.Path)
}
