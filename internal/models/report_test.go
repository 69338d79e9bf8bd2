package models

import (
	"testing"
	"time"
)

func TestReviewCommentsScan(t *testing.T) {
	var c ReviewComments
	if err := c.Scan(nil); err != nil || c == nil || len(c) != 0 {
		t.Fatalf("Scan(nil) = %v, %v; want empty non-nil list", c, err)
	}

	raw := []byte(`[{"reviewer_id":2,"reviewer_role":"npc","action":"approve","stage":"planning","comment":"ok","created_at":"2024-03-01T10:00:00Z"}]`)
	if err := c.Scan(raw); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(c) != 1 || c[0].Action != ActionApprove || c[0].Stage != StagePlanning {
		t.Errorf("unexpected comments: %+v", c)
	}
	if !c[0].CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", c[0].CreatedAt)
	}

	if err := c.Scan("null"); err != nil || c == nil {
		t.Errorf("Scan(null) should yield an empty list, got %v, %v", c, err)
	}
	if err := c.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

func TestReviewCommentsValue(t *testing.T) {
	v, err := ReviewComments(nil).Value()
	if err != nil || v != "[]" {
		t.Errorf("nil Value() = %v, %v", v, err)
	}

	v, err = ReviewComments{{ReviewerID: 1, Action: ActionReject}}.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if _, ok := v.(string); !ok {
		t.Errorf("Value() should be a string, got %T", v)
	}
}

func TestRoleID(t *testing.T) {
	tests := []struct {
		role   RoleID
		name   string
		valid  bool
		global bool
	}{
		{RoleAdmin, "admin", true, true},
		{RoleNPC, "npc", true, true},
		{RoleOMA, "oma", true, false},
		{RoleID(9), "unknown", false, false},
	}
	for _, tt := range tests {
		if got := tt.role.Name(); got != tt.name {
			t.Errorf("%d.Name() = %q, want %q", tt.role, got, tt.name)
		}
		if got := tt.role.Valid(); got != tt.valid {
			t.Errorf("%d.Valid() = %v", tt.role, got)
		}
		if got := tt.role.IsGlobal(); got != tt.global {
			t.Errorf("%d.IsGlobal() = %v", tt.role, got)
		}
	}
}

func TestPrincipalInOrganisation(t *testing.T) {
	org := int64(4)
	p := Principal{UserID: 1, Role: RoleOMA, OrganisationID: &org}
	if !p.InOrganisation(4) || p.InOrganisation(5) {
		t.Error("InOrganisation should match only the principal's organisation")
	}
	if (Principal{Role: RoleNPC}).InOrganisation(4) {
		t.Error("principal without organisation belongs to none")
	}
}
