package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"familycal/internal/models"
	"familycal/internal/validation"
)

func seedUser(store *fakeUserStore, nickname string) string {
	id := uuid.New().String()
	store.users[id] = &models.User{ID: id, Nickname: nickname, CreatedAt: time.Now()}
	return id
}

func TestCreateFamilyAddsAdminMember(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)
	userID := seedUser(userStore, "妈妈")

	family, err := svc.CreateFamily(userID, "我们家")
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}
	if family.AdminID != userID {
		t.Errorf("AdminID = %v, want %v", family.AdminID, userID)
	}
	if len(family.InviteCode) != models.InviteCodeLength {
		t.Errorf("invite code length = %d, want %d", len(family.InviteCode), models.InviteCodeLength)
	}

	member, err := familyStore.GetMember(family.ID, userID)
	if err != nil {
		t.Fatalf("GetMember() error = %v", err)
	}
	if member == nil {
		t.Fatal("admin member row missing after CreateFamily")
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("member role = %v, want %v", member.Role, models.RoleAdmin)
	}

	isAdmin, err := svc.IsAdmin(userID, family.ID)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	if !isAdmin {
		t.Error("IsAdmin() = false for the creator")
	}
}

func TestCreateFamilyValidation(t *testing.T) {
	svc := NewFamilyService(newFakeFamilyStore(), newFakeUserStore())

	tests := []struct {
		name       string
		userID     string
		familyName string
		wantErr    error
	}{
		{name: "no user", userID: "", familyName: "家", wantErr: ErrNotAuthenticated},
		{name: "blank name", userID: "u1", familyName: "   ", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFamily(tt.userID, tt.familyName)
			if err == nil {
				t.Fatal("CreateFamily() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateFamily() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				var verr validation.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("CreateFamily() error = %v, want validation error", err)
				}
			}
		})
	}
}

func TestCreateFamilySagaRepair(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)
	userID := seedUser(userStore, "爸爸")

	familyStore.failAddMember = errors.New("store down")
	family, err := svc.CreateFamily(userID, "我们家")
	if err == nil {
		t.Fatal("CreateFamily() error = nil, want member-write failure")
	}
	if family == nil {
		t.Fatal("CreateFamily() returned nil family despite family row being written")
	}

	// The family row survived the failed member write.
	stored, _ := familyStore.GetFamilyByID(family.ID)
	if stored == nil {
		t.Fatal("family row missing after partial failure")
	}

	// Recovery writes the missing member row without touching the family.
	if err := svc.EnsureAdminMember(family.ID, userID); err != nil {
		t.Fatalf("EnsureAdminMember() error = %v", err)
	}
	member, _ := familyStore.GetMember(family.ID, userID)
	if member == nil || member.Role != models.RoleAdmin {
		t.Fatalf("admin member = %+v after repair, want admin role", member)
	}

	// Repair is idempotent.
	if err := svc.EnsureAdminMember(family.ID, userID); err != nil {
		t.Fatalf("EnsureAdminMember() second call error = %v", err)
	}
	members, _ := familyStore.GetMembers(family.ID)
	if len(members) != 1 {
		t.Errorf("roster size = %d after double repair, want 1", len(members))
	}
}

func TestJoinFamily(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)
	adminID := seedUser(userStore, "妈妈")
	joinerID := seedUser(userStore, "爷爷")

	family, err := svc.CreateFamily(adminID, "我们家")
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	joined, err := svc.JoinFamily(joinerID, family.InviteCode, "")
	if err != nil {
		t.Fatalf("JoinFamily() error = %v", err)
	}
	if joined.ID != family.ID {
		t.Errorf("joined family = %v, want %v", joined.ID, family.ID)
	}

	member, _ := familyStore.GetMember(family.ID, joinerID)
	if member == nil {
		t.Fatal("member row missing after join")
	}
	if member.Role != models.RoleMember {
		t.Errorf("member role = %v, want %v", member.Role, models.RoleMember)
	}
	if member.Nickname != "爷爷" {
		t.Errorf("member nickname = %q, want profile nickname", member.Nickname)
	}

	// Joining again is rejected.
	if _, err := svc.JoinFamily(joinerID, family.InviteCode, ""); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second JoinFamily() error = %v, want %v", err, ErrAlreadyMember)
	}
}

func TestJoinFamilyUnknownCode(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)
	userID := seedUser(userStore, "叔叔")

	_, err := svc.JoinFamily(userID, "ZZZZ99", "")
	if !errors.Is(err, ErrFamilyNotFound) {
		t.Fatalf("JoinFamily() error = %v, want %v", err, ErrFamilyNotFound)
	}

	// No membership row may exist after a failed join.
	for familyID := range familyStore.members {
		if m, _ := familyStore.GetMember(familyID, userID); m != nil {
			t.Errorf("member row written for failed join in family %s", familyID)
		}
	}
}

func TestJoinFamilyBadCodeShape(t *testing.T) {
	svc := NewFamilyService(newFakeFamilyStore(), newFakeUserStore())

	for _, code := range []string{"", "ABC", "abc123", "ABC12!", "ABCD123"} {
		if _, err := svc.JoinFamily("u1", code, ""); err == nil {
			t.Errorf("JoinFamily(%q) error = nil, want validation error", code)
		}
	}
}

func TestLeaveFamily(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)
	adminID := seedUser(userStore, "妈妈")
	memberID := seedUser(userStore, "奶奶")

	family, _ := svc.CreateFamily(adminID, "我们家")
	if _, err := svc.JoinFamily(memberID, family.InviteCode, ""); err != nil {
		t.Fatalf("JoinFamily() error = %v", err)
	}

	if err := svc.LeaveFamily(models.Scope{UserID: adminID, FamilyID: family.ID}); !errors.Is(err, ErrAdminCannotLeave) {
		t.Errorf("admin LeaveFamily() error = %v, want %v", err, ErrAdminCannotLeave)
	}

	if err := svc.LeaveFamily(models.Scope{UserID: memberID, FamilyID: family.ID}); err != nil {
		t.Fatalf("LeaveFamily() error = %v", err)
	}
	if m, _ := familyStore.GetMember(family.ID, memberID); m != nil {
		t.Error("member row still present after leave")
	}
}

func TestVerifyMembership(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)
	adminID := seedUser(userStore, "妈妈")
	outsiderID := seedUser(userStore, "路人")

	family, _ := svc.CreateFamily(adminID, "我们家")

	tests := []struct {
		name    string
		scope   models.Scope
		wantErr error
	}{
		{name: "member", scope: models.Scope{UserID: adminID, FamilyID: family.ID}, wantErr: nil},
		{name: "no user", scope: models.Scope{FamilyID: family.ID}, wantErr: ErrNotAuthenticated},
		{name: "no family", scope: models.Scope{UserID: adminID}, wantErr: ErrNoFamilySelected},
		{name: "outsider", scope: models.Scope{UserID: outsiderID, FamilyID: family.ID}, wantErr: ErrNotFamilyMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.VerifyMembership(tt.scope)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyMembership() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeneratedInviteCodesAreUnique(t *testing.T) {
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewFamilyService(familyStore, userStore)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		userID := seedUser(userStore, "家人")
		family, err := svc.CreateFamily(userID, "家")
		if err != nil {
			t.Fatalf("CreateFamily() error = %v", err)
		}
		if seen[family.InviteCode] {
			t.Fatalf("duplicate invite code %s issued", family.InviteCode)
		}
		seen[family.InviteCode] = true
	}
}
