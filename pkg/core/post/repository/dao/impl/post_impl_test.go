package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"post-board/pkg/common/dbtest"
	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/post/model"
	"post-board/pkg/core/post/repository/dao"
)

func seed(t *testing.T, repo *GormPostRepository, title string, at time.Time) model.Post {
	t.Helper()
	p := model.Post{Title: title, Author: "A", Password: "p1", Content: "C", WriteDate: at}
	if err := repo.Create(context.Background(), &p); err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return p
}

func TestFindAllOrderByWriteDateDesc(t *testing.T) {
	repo := NewGormPostRepository(dbtest.Open(t, &model.Post{}))
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	old := seed(t, repo, "old", base)
	newest := seed(t, repo, "newest", base.Add(2*time.Hour))
	tieA := seed(t, repo, "tie-a", base.Add(time.Hour))
	tieB := seed(t, repo, "tie-b", base.Add(time.Hour))

	posts, err := repo.FindAllOrderByWriteDateDesc(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{newest.ID, tieB.ID, tieA.ID, old.ID}
	if len(posts) != len(want) {
		t.Fatalf("got %d posts, want %d", len(posts), len(want))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Fatalf("posts[%d].ID = %d, want %d", i, posts[i].ID, id)
		}
	}
}

func TestUpdateContentAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPostRepository(dbtest.Open(t, &model.Post{}))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := seed(t, repo, "T", at)

	_, err := repo.UpdateContent(ctx, p.ID, "wrong", dao.ContentUpdate{Title: "X", Author: "X", Content: "X"})
	if !errors.Is(err, bizerr.ErrPasswordMismatch) {
		t.Fatalf("UpdateContent(wrong) error = %v", err)
	}
	unchanged, _ := repo.FindByID(ctx, p.ID)
	if unchanged.Title != "T" {
		t.Fatalf("record mutated on wrong password: %+v", unchanged)
	}

	updated, err := repo.UpdateContent(ctx, p.ID, "p1", dao.ContentUpdate{Title: "T2", Author: "A2", Content: "C2"})
	if err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}
	if updated.Title != "T2" || updated.Password != "p1" {
		t.Fatalf("UpdateContent() = %+v", updated)
	}
	stored, _ := repo.FindByID(ctx, p.ID)
	if stored.Title != "T2" || stored.Author != "A2" || stored.Content != "C2" || stored.Password != "p1" {
		t.Fatalf("stored after update = %+v", stored)
	}
	if !stored.WriteDate.Equal(at) {
		t.Fatalf("write date changed: %v", stored.WriteDate)
	}

	if _, err := repo.UpdateContent(ctx, 999, "p1", dao.ContentUpdate{Title: "T"}); !errors.Is(err, bizerr.ErrPostNotFound) {
		t.Fatalf("UpdateContent(missing) error = %v", err)
	}

	if err := repo.DeleteByID(ctx, p.ID, "nope"); !errors.Is(err, bizerr.ErrPasswordMismatch) {
		t.Fatalf("DeleteByID(wrong) error = %v", err)
	}
	if err := repo.DeleteByID(ctx, p.ID, "p1"); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); !errors.Is(err, bizerr.ErrPostNotFound) {
		t.Fatalf("FindByID(deleted) error = %v", err)
	}
	if err := repo.DeleteByID(ctx, p.ID, "p1"); !errors.Is(err, bizerr.ErrPostNotFound) {
		t.Fatalf("DeleteByID(again) error = %v", err)
	}
}

func TestFindAllByTitleContaining(t *testing.T) {
	repo := NewGormPostRepository(dbtest.Open(t, &model.Post{}))
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seed(t, repo, "hello world", base)
	seed(t, repo, "100% done", base.Add(time.Minute))
	seed(t, repo, "say hello", base.Add(2*time.Minute))

	posts, err := repo.FindAllByTitleContaining(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 || posts[0].Title != "say hello" || posts[1].Title != "hello world" {
		t.Fatalf("search hello = %+v", posts)
	}

	posts, err = repo.FindAllByTitleContaining(context.Background(), "%")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Title != "100% done" {
		t.Fatalf("search %% = %+v", posts)
	}
}
