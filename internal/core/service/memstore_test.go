package service

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

// memStore is an in-memory stand-in for the document store. Its
// WithinTransaction snapshots every collection and restores the snapshot
// when fn fails, which is the observable contract of a real transaction.
type memStore struct {
	users   map[string]*domain.User
	tenants map[string]*domain.Tenant
	audit   []*domain.AuditEntry
	seq     int

	failDeleteUser     error
	failRemoveAssigned error

	commits int
	aborts  int
	revoked []string
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*domain.User),
		tenants: make(map[string]*domain.Tenant),
	}
}

type memSnapshot struct {
	users   map[string]*domain.User
	tenants map[string]*domain.Tenant
	audit   []*domain.AuditEntry
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		users:   make(map[string]*domain.User, len(m.users)),
		tenants: make(map[string]*domain.Tenant, len(m.tenants)),
		audit:   slices.Clone(m.audit),
	}
	for id, u := range m.users {
		snap.users[id] = cloneUser(u)
	}
	for id, t := range m.tenants {
		snap.tenants[id] = cloneTenant(t)
	}
	return snap
}

func (m *memStore) restore(s memSnapshot) {
	m.users, m.tenants, m.audit = s.users, s.tenants, s.audit
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.snapshot()
	if err := fn(ctx); err != nil {
		m.restore(snap)
		m.aborts++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if se, ok := u.Profile.(domain.SolutionsEngineerProfile); ok {
		c.Profile = domain.SolutionsEngineerProfile{AssignedTenantIDs: slices.Clone(se.AssignedTenantIDs)}
	}
	return &c
}

func cloneTenant(t *domain.Tenant) *domain.Tenant {
	c := *t
	c.AssignedEngineerIDs = slices.Clone(t.AssignedEngineerIDs)
	return &c
}

// seed helpers

func (m *memStore) addTenant(id string, engineers ...string) {
	m.tenants[id] = &domain.Tenant{ID: id, Name: "tenant " + id, AssignedEngineerIDs: engineers}
}

func (m *memStore) addEngineer(id string, tenants ...string) {
	m.users[id] = &domain.User{ID: id, Email: id + "@staff.io", Profile: domain.SolutionsEngineerProfile{AssignedTenantIDs: tenants}}
}

func (m *memStore) addClient(id, tenantID string, orgAdmin bool) {
	m.users[id] = &domain.User{ID: id, Email: id + "@client.io", Profile: domain.ClientUserProfile{TenantID: tenantID, IsOrgAdmin: orgAdmin}}
}

func (m *memStore) engineerTenants(id string) []string {
	se, _ := m.users[id].SolutionsEngineer()
	return se.AssignedTenantIDs
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type memUsers struct{ m *memStore }

var _ ports.UserRepository = memUsers{}

func (r memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	c.ID = r.m.nextID("u")
	r.m.users[c.ID] = c
	return cloneUser(c), nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	if r.m.failDeleteUser != nil {
		return r.m.failDeleteUser
	}
	if _, ok := r.m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r memUsers) ListClientUsers(_ context.Context, tenantID string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.m.users {
		if cu, ok := u.ClientUser(); ok && cu.TenantID == tenantID {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) AddAssignedTenant(_ context.Context, engineerID, tenantID string) error {
	u, ok := r.m.users[engineerID]
	se, isSE := u.SolutionsEngineer()
	if !ok || !isSE {
		return domain.ErrUserNotFound
	}
	if !se.IsAssignedTo(tenantID) {
		se.AssignedTenantIDs = append(slices.Clone(se.AssignedTenantIDs), tenantID)
	}
	u.Profile = se
	return nil
}

func (r memUsers) RemoveAssignedTenant(_ context.Context, engineerID, tenantID string) error {
	if r.m.failRemoveAssigned != nil {
		return r.m.failRemoveAssigned
	}
	u, ok := r.m.users[engineerID]
	se, isSE := u.SolutionsEngineer()
	if !ok || !isSE {
		return domain.ErrUserNotFound
	}
	se.AssignedTenantIDs = slices.DeleteFunc(slices.Clone(se.AssignedTenantIDs), func(id string) bool { return id == tenantID })
	u.Profile = se
	return nil
}

// ---------------------------------------------------------------------------
// Tenants
// ---------------------------------------------------------------------------

type memTenants struct{ m *memStore }

var _ ports.TenantRepository = memTenants{}

func (r memTenants) FindByID(_ context.Context, id string) (*domain.Tenant, error) {
	t, ok := r.m.tenants[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return cloneTenant(t), nil
}

func (r memTenants) List(_ context.Context, filter ports.TenantFilter) ([]*domain.Tenant, error) {
	var out []*domain.Tenant
	for id, t := range r.m.tenants {
		if filter.IDs != nil && !slices.Contains(filter.IDs, id) {
			continue
		}
		out = append(out, cloneTenant(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memTenants) Create(_ context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	for _, t := range r.m.tenants {
		if domain.NormalizeTenantName(t.Name) == domain.NormalizeTenantName(tenant.Name) {
			return nil, domain.ErrTenantExists
		}
	}
	c := cloneTenant(tenant)
	c.ID = r.m.nextID("t")
	r.m.tenants[c.ID] = c
	return cloneTenant(c), nil
}

func (r memTenants) Delete(_ context.Context, id string) error {
	if _, ok := r.m.tenants[id]; !ok {
		return domain.ErrTenantNotFound
	}
	delete(r.m.tenants, id)
	return nil
}

func (r memTenants) AddAssignedEngineer(_ context.Context, tenantID, engineerID string) error {
	t, ok := r.m.tenants[tenantID]
	if !ok {
		return domain.ErrTenantNotFound
	}
	if !t.HasEngineer(engineerID) {
		t.AssignedEngineerIDs = append(slices.Clone(t.AssignedEngineerIDs), engineerID)
	}
	return nil
}

func (r memTenants) RemoveAssignedEngineer(_ context.Context, tenantID, engineerID string) error {
	t, ok := r.m.tenants[tenantID]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.AssignedEngineerIDs = slices.DeleteFunc(slices.Clone(t.AssignedEngineerIDs), func(id string) bool { return id == engineerID })
	return nil
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

type memAudit struct{ m *memStore }

func (r memAudit) Record(_ context.Context, e *domain.AuditEntry) error {
	c := *e
	r.m.audit = append(r.m.audit, &c)
	return nil
}

// RevokeUser records which users had their sessions revoked.
func (m *memStore) RevokeUser(_ context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}
