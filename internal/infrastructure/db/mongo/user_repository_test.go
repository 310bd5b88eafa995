package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/client-portal/internal/core/domain"
)

func TestMongoUser_RoundTripsEveryProfile(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	profiles := []domain.Profile{
		domain.AdminProfile{},
		domain.SolutionsEngineerProfile{AssignedTenantIDs: []string{"t1", "t2"}},
		domain.ClientUserProfile{TenantID: "t1", IsOrgAdmin: true, HasBillingAccess: true},
	}

	for _, p := range profiles {
		in := &domain.User{Email: "Mixed@Case.IO", Name: "n", Profile: p, CreatedAt: created, UpdatedAt: created}
		doc := fromDomainUser(in)
		doc.ID = primitive.NewObjectID()

		out, err := doc.toDomain()
		if err != nil {
			t.Fatalf("%s: toDomain: %v", p.Role(), err)
		}
		if out.Role() != p.Role() {
			t.Errorf("role = %s, want %s", out.Role(), p.Role())
		}
		if out.Email != "mixed@case.io" {
			t.Errorf("email not normalised: %q", out.Email)
		}
		if !out.CreatedAt.Equal(created) {
			t.Errorf("created_at = %s, want %s", out.CreatedAt, created)
		}
	}
}

func TestMongoUser_RoleFieldsStayWithTheirRole(t *testing.T) {
	doc := fromDomainUser(&domain.User{Email: "a@b.io", Profile: domain.AdminProfile{}})
	if doc.TenantID != "" || doc.IsOrgAdmin || doc.AssignedTenantIDs != nil {
		t.Fatalf("admin document carries role fields: %+v", doc)
	}

	doc = fromDomainUser(&domain.User{Email: "a@b.io", Profile: domain.ClientUserProfile{TenantID: "t1"}})
	if doc.AssignedTenantIDs != nil {
		t.Fatalf("client document carries engineer fields: %+v", doc)
	}
}

func TestMongoUser_UnknownRole(t *testing.T) {
	doc := mongoUser{ID: primitive.NewObjectID(), Email: "x@y.io", Role: "superuser"}
	if _, err := doc.toDomain(); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestMongoTenant_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	tn := mongoTenant{ID: oid, Name: "Acme", NameCI: "acme", AssignedEngineerIDs: []string{"se1"}, PipelineStage: "live"}.toDomain()
	if tn.ID != oid.Hex() || !tn.HasEngineer("se1") || tn.PipelineStage != domain.PipelineLive {
		t.Fatalf("unexpected tenant: %+v", tn)
	}
	if !tn.CreatedAt.IsZero() {
		t.Fatalf("zero timestamp should stay zero, got %s", tn.CreatedAt)
	}
}
