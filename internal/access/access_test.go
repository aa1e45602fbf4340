package access

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"owner", RoleOwner},
		{" Manager ", RoleManager},
		{"STAFF", RoleStaff},
		{"viewer", RoleViewer},
		{"admin", RoleViewer},
		{"", RoleViewer},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCan(t *testing.T) {
	tests := []struct {
		role    Role
		feature Feature
		want    bool
	}{
		{RoleOwner, FeatureAccounting, true},
		{RoleManager, FeatureAccounting, true},
		{RoleStaff, FeatureAccounting, false},
		{RoleViewer, FeatureAccounting, false},
		{RoleViewer, FeatureTasks, true},
		{RoleViewer, FeatureComments, false},
		{RoleStaff, FeatureComments, true},
		{RoleStaff, FeatureModerate, false},
		{RoleManager, FeatureModerate, true},
		{RoleOwner, Feature("unknown"), false},
	}

	for _, tt := range tests {
		if got := Can(tt.role, tt.feature); got != tt.want {
			t.Errorf("Can(%q, %q) = %v, want %v", tt.role, tt.feature, got, tt.want)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		role Role
		path string
		want bool
	}{
		{RoleViewer, "/tasks", true},
		{RoleViewer, "/tasks/42", true},
		{RoleViewer, "/tasks/42/edit", false},
		{RoleViewer, "/tasks/", false},
		{RoleStaff, "/moodboards/7?item=3", true},
		{RoleStaff, "/accounting", false},
		{RoleManager, "/accounting/orders", true},
		{RoleOwner, "/unknown", false},
		{RoleOwner, "/", true},
	}

	for _, tt := range tests {
		if got := Allowed(tt.role, tt.path); got != tt.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.path, got, tt.want)
		}
	}
}
