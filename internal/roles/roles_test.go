package roles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/trustbot/internal/roles"
	"github.com/m3rciful/trustbot/internal/store"
	"github.com/m3rciful/trustbot/internal/store/storetest"
)

func TestGateResolve(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)
	gate := roles.NewGate(s)

	alice := store.Identity{ID: 1, FirstName: "Alice"}
	bob := store.Identity{ID: 2, FirstName: "Bob"}
	carol := store.Identity{ID: 3, FirstName: "Carol"}

	require.NoError(t, s.SeedOperators(ctx, []int64{alice.ID}))
	_, err := s.AddOperator(ctx, bob, false)
	require.NoError(t, err)

	cases := []struct {
		who  store.Identity
		want roles.Role
	}{
		{alice, roles.SuperOperator},
		{bob, roles.Operator},
		{carol, roles.Anonymous},
	}
	for _, tc := range cases {
		got, err := gate.Resolve(ctx, tc.who)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, tc.who.FirstName)
	}

	// Revocation applies on the next call.
	_, err = s.RemoveOperator(ctx, bob.ID)
	require.NoError(t, err)
	got, err := gate.Resolve(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, roles.Anonymous, got)
}

func TestRoleAtLeast(t *testing.T) {
	require.True(t, roles.SuperOperator.AtLeast(roles.Operator))
	require.True(t, roles.Operator.AtLeast(roles.Operator))
	require.False(t, roles.Anonymous.AtLeast(roles.Operator))
	require.Equal(t, "super_operator", roles.SuperOperator.String())
}
