package domain

import "testing"

func TestRole_IsValid(t *testing.T) {
	if !RoleAdmin.IsValid() || !RoleViewer.IsValid() {
		t.Error("admin and viewer should be valid")
	}
	if Role("member").IsValid() {
		t.Error("member should not be valid")
	}
}

func TestAuthContext_IsAdmin(t *testing.T) {
	admin := &AuthContext{Subject: "ops", Role: RoleAdmin}
	viewer := &AuthContext{Subject: "dash", Role: RoleViewer}

	if !admin.IsAdmin() {
		t.Error("expected admin")
	}
	if viewer.IsAdmin() {
		t.Error("viewer should not be admin")
	}
}
