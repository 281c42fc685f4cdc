package models

import (
	"strings"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode() error = %v", err)
		}
		if len(code) != InviteCodeLength {
			t.Fatalf("code %q length = %d, want %d", code, len(code), InviteCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(inviteCodeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 200 draws from 36^6 should essentially never collide.
	if len(seen) < 199 {
		t.Errorf("only %d distinct codes in 200 draws", len(seen))
	}
}

func TestValidInviteCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "valid letters and digits", code: "AB12CD", want: true},
		{name: "valid all letters", code: "ABCDEF", want: true},
		{name: "valid all digits", code: "012345", want: true},
		{name: "too short", code: "ABC12", want: false},
		{name: "too long", code: "ABC1234", want: false},
		{name: "lowercase", code: "ab12cd", want: false},
		{name: "punctuation", code: "AB12C!", want: false},
		{name: "empty", code: "", want: false},
		{name: "unicode", code: "AB12Cé", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidInviteCode(tt.code); got != tt.want {
				t.Errorf("ValidInviteCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	members := []FamilyMember{
		{UserID: "u1", Role: RoleAdmin},
		{UserID: "u2", Role: RoleMember},
	}

	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{name: "admin member", userID: "u1", want: true},
		{name: "regular member", userID: "u2", want: false},
		{name: "not on roster", userID: "u3", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdmin(tt.userID, members); got != tt.want {
				t.Errorf("IsAdmin(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestFindMember(t *testing.T) {
	members := []FamilyMember{
		{ID: "m1", UserID: "u1"},
		{ID: "m2", UserID: "u2"},
	}

	if m := FindMember(members, "u2"); m == nil || m.ID != "m2" {
		t.Errorf("FindMember(u2) = %+v, want m2", m)
	}
	if m := FindMember(members, "u9"); m != nil {
		t.Errorf("FindMember(u9) = %+v, want nil", m)
	}
	if m := FindMember(nil, "u1"); m != nil {
		t.Errorf("FindMember on empty roster = %+v, want nil", m)
	}
}

func TestMemberRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleMember.Valid() {
		t.Error("known roles reported invalid")
	}
	if MemberRole("owner").Valid() {
		t.Error("unknown role reported valid")
	}
}
