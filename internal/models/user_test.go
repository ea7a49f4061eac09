package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"superadmin role", RoleSuperAdmin, true},
		{"admin role", RoleAdmin, true},
		{"mechanic role", RoleMechanic, true},
		{"customer role", RoleCustomer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	superadmin := &User{Role: RoleSuperAdmin}
	admin := &User{Role: RoleAdmin}
	mechanic := &User{Role: RoleMechanic}
	customer := &User{Role: RoleCustomer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		{"superadmin can manage admins", superadmin, "manage_admins", true},
		{"superadmin can approve requests", superadmin, "approve_request", true},

		{"admin cannot manage admins", admin, "manage_admins", false},
		{"admin can approve requests", admin, "approve_request", true},
		{"admin can manage inventory", admin, "manage_inventory", true},

		{"mechanic can create request", mechanic, "create_request", true},
		{"mechanic can view own requests", mechanic, "view_own_requests", true},
		{"mechanic can request follow-up", mechanic, "request_follow_up", true},
		{"mechanic can create report", mechanic, "create_report", true},
		{"mechanic can view inventory", mechanic, "view_inventory", true},
		{"mechanic cannot approve requests", mechanic, "approve_request", false},
		{"mechanic cannot manage inventory", mechanic, "manage_inventory", false},

		{"customer can view own cars", customer, "view_own_cars", true},
		{"customer can view service history", customer, "view_service_history", true},
		{"customer can register car", customer, "register_car", true},
		{"customer cannot create request", customer, "create_request", false},
		{"customer cannot view inventory", customer, "view_inventory", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestUser_FullName(t *testing.T) {
	user := &User{Username: "dmartin", FirstName: "Dana", LastName: "Martin"}
	if got := user.FullName(); got != "Dana Martin" {
		t.Errorf("FullName() = %q, want %q", got, "Dana Martin")
	}

	bare := &User{Username: "dmartin"}
	if got := bare.FullName(); got != "dmartin" {
		t.Errorf("FullName() fallback = %q, want %q", got, "dmartin")
	}
}
