package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"post-board/pkg/common/dbtest"
	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/user/model"
	dao "post-board/pkg/core/user/repository/dao/impl"
)

func newTestAuthService(t *testing.T) (*AuthService, *dao.GormUserRepository) {
	t.Helper()
	repo := dao.NewGormUserRepository(dbtest.Open(t, &model.User{}))
	tokens, err := NewTokenManager("test-secret", "HS256", "post-board-test", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return NewAuthService(repo, tokens, nil, bcrypt.MinCost), repo
}

func TestSignupStoresHashAndDefaultsRole(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)

	user, err := svc.Signup(ctx, SignupInput{Username: "user123", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.ID == 0 || user.Username != "user123" || user.Role != model.RoleUser {
		t.Fatalf("Signup() = %+v", user)
	}

	stored, err := repo.FindByUsername(ctx, "user123")
	if err != nil {
		t.Fatal(err)
	}
	if stored.PasswordHash == "Passw0rd!" {
		t.Fatal("plaintext password was persisted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Passw0rd!")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestSignupAdminRole(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, err := svc.Signup(context.Background(), SignupInput{Username: "admin123", Password: "Adm1n!pass", Role: "admin"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("role = %q, want ADMIN", user.Role)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	if _, err := svc.Signup(ctx, SignupInput{Username: "dupuser", Password: "Passw0rd!"}); err != nil {
		t.Fatal(err)
	}
	// 与密码无关
	for _, pwd := range []string{"Passw0rd!", "Other9$pw"} {
		_, err := svc.Signup(ctx, SignupInput{Username: "dupuser", Password: pwd})
		if !errors.Is(err, bizerr.ErrDuplicateUsername) {
			t.Fatalf("Signup(dup, %q) error = %v, want ErrDuplicateUsername", pwd, err)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	svc, repo := newTestAuthService(t)

	cases := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"short username", SignupInput{Username: "abc", Password: "Passw0rd!"}, "username"},
		{"uppercase username", SignupInput{Username: "Alice", Password: "Passw0rd!"}, "username"},
		{"long username", SignupInput{Username: "abcdefghijk", Password: "Passw0rd!"}, "username"},
		{"no symbol", SignupInput{Username: "alice", Password: "Passw0rd1"}, "password"},
		{"no upper", SignupInput{Username: "alice", Password: "passw0rd!"}, "password"},
		{"too long", SignupInput{Username: "alice", Password: "Passw0rd!Passw0rd!"}, "password"},
		{"foreign symbol", SignupInput{Username: "alice", Password: "Passw0rd!#"}, "password"},
		{"bad role", SignupInput{Username: "alice", Password: "Passw0rd!", Role: "ROOT"}, "role"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.in)
			if !errors.Is(err, bizerr.ErrInvalidInput) {
				t.Fatalf("Signup() error = %v, want ErrInvalidInput", err)
			}
			if _, ok := bizerr.FieldErrors(err)[tc.field]; !ok {
				t.Fatalf("field errors %v missing %q", bizerr.FieldErrors(err), tc.field)
			}
		})
	}

	exists, _ := repo.ExistsByUsername(context.Background(), "alice")
	if exists {
		t.Fatal("invalid signup reached the store")
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	if _, err := svc.Signup(ctx, SignupInput{Username: "login123", Password: "Passw0rd!", Role: "ADMIN"}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Login(ctx, "login123", "Passw0rd!")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Token == "" || res.User.Username != "login123" || res.User.Role != model.RoleAdmin {
		t.Fatalf("Login() = %+v", res)
	}

	claims, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Username != "login123" || claims.Role != model.RoleAdmin || claims.UserID != res.User.ID {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := svc.Login(ctx, "login123", "Wr0ngpass!"); !errors.Is(err, bizerr.ErrInvalidCredentials) {
		t.Fatalf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "ghost", "Passw0rd!"); !errors.Is(err, bizerr.ErrUserNotFound) {
		t.Fatalf("Login(unknown) error = %v, want ErrUserNotFound", err)
	}

	profile, err := svc.Profile(ctx, claims.Username)
	if err != nil || profile.ID != res.User.ID {
		t.Fatalf("Profile() = %+v, %v", profile, err)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	tokens, err := NewTokenManager("secret-a", "HS256", "iss", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	other, _ := NewTokenManager("secret-b", "HS256", "iss", time.Hour)

	token, _, err := tokens.Issue(model.User{ID: 1, Username: "alice", Role: model.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Parse(token); !errors.Is(err, bizerr.ErrInvalidToken) {
		t.Fatalf("Parse(foreign secret) error = %v", err)
	}

	expired, _ := NewTokenManager("secret-a", "HS256", "iss", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(model.User{ID: 1, Username: "alice", Role: model.RoleUser})
	if _, err := tokens.Parse(old); !errors.Is(err, bizerr.ErrInvalidToken) {
		t.Fatalf("Parse(expired) error = %v", err)
	}
}

func TestNewTokenManagerRejectsAsymmetric(t *testing.T) {
	if _, err := NewTokenManager("s", "RS256", "iss", time.Hour); err == nil {
		t.Fatal("expected error for RS256")
	}
	if _, err := NewTokenManager("", "HS256", "iss", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
