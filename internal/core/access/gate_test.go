package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/client-portal/internal/core/domain"
)

type stubUsers struct {
	users map[string]*domain.User
	err   error
	calls int
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newStubUsers(users ...*domain.User) *stubUsers {
	s := &stubUsers{users: make(map[string]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func engineer(id string, tenants ...string) *domain.User {
	return &domain.User{ID: id, Profile: domain.SolutionsEngineerProfile{AssignedTenantIDs: tenants}}
}

func clientUser(id, tenantID string, orgAdmin bool) *domain.User {
	return &domain.User{ID: id, Profile: domain.ClientUserProfile{TenantID: tenantID, IsOrgAdmin: orgAdmin}}
}

func mustIdentity(t *testing.T, u *domain.User) *domain.Identity {
	t.Helper()
	id, err := u.Identity()
	require.NoError(t, err)
	return id
}

func TestGate_AdminAccessesEveryTenantIncludingUnknown(t *testing.T) {
	gate := NewGate(newStubUsers())
	admin := &domain.Identity{ID: "a1", Role: domain.RoleAdmin}

	for _, tenantID := range []string{"T1", "T2", "does-not-exist"} {
		ok, err := gate.CanAccessTenant(context.Background(), admin, tenantID)
		require.NoError(t, err)
		assert.True(t, ok, tenantID)

		ok, err = gate.CanManageTenantUsers(context.Background(), admin, tenantID)
		require.NoError(t, err)
		assert.True(t, ok, tenantID)
	}
}

// Scenario B: an engineer assigned to T1 and T2 may read T1.
func TestGate_EngineerAssignedTenant(t *testing.T) {
	se := engineer("se1", "T1", "T2")
	gate := NewGate(newStubUsers(se))
	id := mustIdentity(t, se)

	ok, err := gate.CanAccessTenant(context.Background(), id, "T1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.CanAccessTenant(context.Background(), id, "T3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGate_EngineerScopeIsReloadedEveryCall(t *testing.T) {
	se := engineer("se1", "T1")
	users := newStubUsers(se)
	gate := NewGate(users)
	id := mustIdentity(t, se)

	ok, _ := gate.CanAccessTenant(context.Background(), id, "T1")
	require.True(t, ok)

	users.users["se1"] = engineer("se1")
	ok, _ = gate.CanAccessTenant(context.Background(), id, "T1")
	assert.False(t, ok, "unassignment must take effect on the next call")
	assert.Equal(t, 2, users.calls)
}

func TestGate_EngineerRecordGoneIsDenied(t *testing.T) {
	gate := NewGate(newStubUsers())
	id := &domain.Identity{ID: "ghost", Role: domain.RoleSolutionsEngineer}

	ok, err := gate.CanAccessTenant(context.Background(), id, "T1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGate_LookupFailureSurfaces(t *testing.T) {
	users := newStubUsers()
	users.err = errors.New("connection reset")
	gate := NewGate(users)
	id := &domain.Identity{ID: "se1", Role: domain.RoleSolutionsEngineer}

	ok, err := gate.CanAccessTenant(context.Background(), id, "T1")
	assert.False(t, ok)
	assert.Error(t, err)
}

// Scenario A: a client of T1 asking for T2 is denied.
func TestGate_ClientUserOnlyOwnTenant(t *testing.T) {
	cu := clientUser("c1", "T1", false)
	gate := NewGate(newStubUsers(cu))
	id := mustIdentity(t, cu)

	ok, err := gate.CanAccessTenant(context.Background(), id, "T1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.CanAccessTenant(context.Background(), id, "T2")
	require.NoError(t, err)
	assert.False(t, ok)

	err = gate.RequireTenantAccess(context.Background(), id, "T2")
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "forbidden: requires tenant scope", err.Error())
}

func TestGate_ManageUsersNeedsOrgAdmin(t *testing.T) {
	member := clientUser("c1", "T1", false)
	orgAdmin := clientUser("c2", "T1", true)
	gate := NewGate(newStubUsers(member, orgAdmin))

	ok, err := gate.CanManageTenantUsers(context.Background(), mustIdentity(t, member), "T1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gate.CanManageTenantUsers(context.Background(), mustIdentity(t, orgAdmin), "T1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.CanManageTenantUsers(context.Background(), mustIdentity(t, orgAdmin), "T2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGate_ManageUsersReadsCurrentOrgAdminFlag(t *testing.T) {
	cu := clientUser("c1", "T1", true)
	users := newStubUsers(cu)
	gate := NewGate(users)
	id := mustIdentity(t, cu)

	require.NoError(t, gate.RequireTenantUserManagement(context.Background(), id, "T1"))

	users.users["c1"] = clientUser("c1", "T1", false)
	err := gate.RequireTenantUserManagement(context.Background(), id, "T1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGate_NonAdminOutOfScopeAlwaysDenied(t *testing.T) {
	se := engineer("se1", "T1")
	cu := clientUser("c1", "T2", true)
	gate := NewGate(newStubUsers(se, cu))

	for _, id := range []*domain.Identity{mustIdentity(t, se), mustIdentity(t, cu)} {
		for _, tenantID := range []string{"T3", "T4", "unknown"} {
			ok, err := gate.CanAccessTenant(context.Background(), id, tenantID)
			require.NoError(t, err)
			assert.False(t, ok, "%s -> %s", id.Role, tenantID)
		}
	}
}

func TestGate_NilIdentity(t *testing.T) {
	gate := NewGate(newStubUsers())

	ok, err := gate.CanAccessTenant(context.Background(), nil, "T1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, gate.RequireTenantAccess(context.Background(), nil, "T1"), domain.ErrUnauthenticated)
}
