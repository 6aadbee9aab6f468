package dao

import (
	"context"
	"errors"
	"testing"

	"post-board/pkg/common/dbtest"
	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/user/model"
)

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(dbtest.Open(t, &model.User{}))

	exists, err := repo.ExistsByUsername(ctx, "alice01")
	if err != nil || exists {
		t.Fatalf("ExistsByUsername() on empty store = %v, %v", exists, err)
	}

	user := &model.User{Username: "alice01", PasswordHash: "hash", Role: model.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == 0 {
		t.Fatal("Create() did not assign an id")
	}

	exists, err = repo.ExistsByUsername(ctx, "alice01")
	if err != nil || !exists {
		t.Fatalf("ExistsByUsername() after create = %v, %v", exists, err)
	}

	found, err := repo.FindByUsername(ctx, "alice01")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if found.ID != user.ID || found.Role != model.RoleUser || found.PasswordHash != "hash" {
		t.Fatalf("FindByUsername() = %+v", found)
	}

	if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, bizerr.ErrUserNotFound) {
		t.Fatalf("FindByUsername(unknown) error = %v, want ErrUserNotFound", err)
	}

	dup := &model.User{Username: "alice01", PasswordHash: "other", Role: model.RoleAdmin}
	if err := repo.Create(ctx, dup); !errors.Is(err, bizerr.ErrDuplicateUsername) {
		t.Fatalf("Create(duplicate) error = %v, want ErrDuplicateUsername", err)
	}
}
