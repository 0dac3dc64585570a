package users

import "testing"

func TestCanEditMatrix(t *testing.T) {
	admin := &User{ID: "usr_admin", Role: RoleAdministrator}
	manager := &User{ID: "usr_manager", Role: RoleManager}
	plain := &User{ID: "usr_plain", Role: RoleUser}
	otherPlain := &User{ID: "usr_other", Role: RoleUser}
	corrupted := &User{ID: "usr_corrupt", Role: UserRole("superuser")}

	cases := []struct {
		name   string
		actor  *User
		target *User
		want   bool
	}{
		{"anonymous cannot edit anyone", nil, plain, false},
		{"admin edits plain user", admin, plain, true},
		{"admin edits manager", admin, manager, true},
		{"admin edits other admin", admin, &User{ID: "usr_admin2", Role: RoleAdministrator}, true},
		{"admin edits self", admin, admin, true},
		{"manager edits plain user", manager, plain, true},
		{"manager cannot edit manager", manager, &User{ID: "usr_m2", Role: RoleManager}, false},
		{"manager cannot edit admin", manager, admin, false},
		{"manager cannot edit self", manager, manager, false},
		{"user edits self", plain, plain, true},
		{"user cannot edit other user", plain, otherPlain, false},
		{"user cannot edit admin", plain, admin, false},
		{"unknown actor role fails closed", corrupted, plain, false},
		{"corrupted target role blocks manager", manager, corrupted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanEdit(tc.actor, tc.target); got != tc.want {
				t.Fatalf("CanEdit = %v, want %v", got, tc.want)
			}
		})
	}
}
