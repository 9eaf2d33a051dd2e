package post

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bloppost/core/internal/database"
	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:post-test-%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	author *models.UserModel
	cat    *models.CategoryModel
	tags   []models.TagModel
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	author := models.UserModel{Username: "writer", Email: "writer@example.com", Password: "hashed", Role: models.RoleAuthor}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	cat := models.CategoryModel{Name: "Tech"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	tags := []models.TagModel{
		{Name: "go", CategoryID: cat.ID},
		{Name: "web", CategoryID: cat.ID},
	}
	if err := db.Create(&tags).Error; err != nil {
		t.Fatalf("seed tags: %v", err)
	}

	return &fixture{db: db, svc: NewService(db), author: &author, cat: &cat, tags: tags}
}

func TestCreatePost(t *testing.T) {
	f := setupFixture(t)

	p, err := f.svc.Create(&CreatePostDTO{
		Title:      "Hello",
		Content:    "# Hello\n\nFirst post **body**.",
		UserID:     f.author.ID,
		CategoryID: &f.cat.ID,
		TagIDs:     []string{f.tags[0].ID, f.tags[1].ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if p.User == nil || p.User.Username != "writer" {
		t.Fatalf("author not embedded: %+v", p.User)
	}
	if p.Category == nil || p.Category.Name != "Tech" {
		t.Fatalf("category not embedded: %+v", p.Category)
	}
	if len(p.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(p.Tags))
	}
	if p.Excerpt == "" {
		t.Fatal("excerpt must be derived from content")
	}
	if p.Excerpt != "Hello First post body." {
		t.Fatalf("unexpected derived excerpt: %q", p.Excerpt)
	}
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Create(&CreatePostDTO{Title: "x", Content: "y", UserID: "missing"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	var count int64
	if err := f.db.Model(&models.PostModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed create must write nothing, found %d posts", count)
	}
}

func TestCreatePostUnknownTagAtomic(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Create(&CreatePostDTO{
		Title:   "x",
		Content: "y",
		UserID:  f.author.ID,
		TagIDs:  []string{f.tags[0].ID, "missing"},
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	var posts, links int64
	if err := f.db.Model(&models.PostModel{}).Count(&posts).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if err := f.db.Table("post_tags").Count(&links).Error; err != nil {
		t.Fatalf("count post_tags: %v", err)
	}
	if posts != 0 || links != 0 {
		t.Fatalf("failed create must write nothing, found %d posts, %d links", posts, links)
	}
}

func TestUpdatePostPartial(t *testing.T) {
	f := setupFixture(t)

	p, err := f.svc.Create(&CreatePostDTO{Title: "Before", Content: "body", Excerpt: "kept", UserID: f.author.ID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	title := "After"
	updated, err := f.svc.Update(p.ID, &UpdatePostDTO{Title: &title})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "After" {
		t.Fatalf("title = %q, want After", updated.Title)
	}
	if updated.Content != "body" || updated.Excerpt != "kept" {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}
}

func TestUpdatePostExplicitNullUserID(t *testing.T) {
	f := setupFixture(t)

	p, err := f.svc.Create(&CreatePostDTO{Title: "t", Content: "c", UserID: f.author.ID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var dto UpdatePostDTO
	if err := json.Unmarshal([]byte(`{"user_id": null}`), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	_, err = f.svc.Update(p.ID, &dto)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("explicit null user_id must be a validation error, got %v", err)
	}

	// An absent user_id key is fine.
	var noop UpdatePostDTO
	if err := json.Unmarshal([]byte(`{"title": "still here"}`), &noop); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := f.svc.Update(p.ID, &noop); err != nil {
		t.Fatalf("update without user_id failed: %v", err)
	}
}

func TestReplaceTags(t *testing.T) {
	f := setupFixture(t)

	p, err := f.svc.Create(&CreatePostDTO{
		Title:   "t",
		Content: "c",
		UserID:  f.author.ID,
		TagIDs:  []string{f.tags[0].ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.svc.ReplaceTags(p.ID, []string{f.tags[1].ID})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Name != "web" {
		t.Fatalf("unexpected tag set: %+v", updated.Tags)
	}

	cleared, err := f.svc.ReplaceTags(p.ID, nil)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(cleared.Tags) != 0 {
		t.Fatalf("expected empty tag set, got %+v", cleared.Tags)
	}
}

func TestReplaceTagsUnknownIDLeavesPriorSet(t *testing.T) {
	f := setupFixture(t)

	p, err := f.svc.Create(&CreatePostDTO{
		Title:   "t",
		Content: "c",
		UserID:  f.author.ID,
		TagIDs:  []string{f.tags[0].ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.svc.ReplaceTags(p.ID, []string{f.tags[1].ID, "missing"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	current, err := f.svc.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(current.Tags) != 1 || current.Tags[0].Name != "go" {
		t.Fatalf("prior tag set must survive a failed replace: %+v", current.Tags)
	}
}

func TestListNewestFirst(t *testing.T) {
	f := setupFixture(t)

	older := models.PostModel{Title: "older", Content: "c", UserID: f.author.ID}
	older.CreatedAt = time.Now().Add(-time.Hour)
	if err := f.db.Create(&older).Error; err != nil {
		t.Fatalf("seed older post: %v", err)
	}
	newer := models.PostModel{Title: "newer", Content: "c", UserID: f.author.ID}
	if err := f.db.Create(&newer).Error; err != nil {
		t.Fatalf("seed newer post: %v", err)
	}

	posts, err := f.svc.List(ListQuery{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "newer" || posts[1].Title != "older" {
		t.Fatalf("posts not newest first: %s, %s", posts[0].Title, posts[1].Title)
	}
}

func TestListFilters(t *testing.T) {
	f := setupFixture(t)

	if _, err := f.svc.Create(&CreatePostDTO{
		Title: "tagged", Content: "c", UserID: f.author.ID,
		CategoryID: &f.cat.ID, TagIDs: []string{f.tags[0].ID},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.Create(&CreatePostDTO{Title: "plain", Content: "c", UserID: f.author.ID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	catName := "Tech"
	byCat, err := f.svc.List(ListQuery{Category: &catName})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if len(byCat) != 1 || byCat[0].Title != "tagged" {
		t.Fatalf("unexpected category filter result: %+v", byCat)
	}

	tagName := "go"
	byTag, err := f.svc.List(ListQuery{Tag: &tagName})
	if err != nil {
		t.Fatalf("list by tag failed: %v", err)
	}
	if len(byTag) != 1 || byTag[0].Title != "tagged" {
		t.Fatalf("unexpected tag filter result: %+v", byTag)
	}

	noMatch := "nope"
	empty, err := f.svc.List(ListQuery{Tag: &noMatch})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no matches, got %d", len(empty))
	}
}

func TestDeletePostCascades(t *testing.T) {
	f := setupFixture(t)

	p, err := f.svc.Create(&CreatePostDTO{
		Title: "doomed", Content: "c", UserID: f.author.ID,
		TagIDs: []string{f.tags[0].ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	comment := models.CommentModel{Content: "nice", UserID: f.author.ID, PostID: p.ID}
	if err := f.db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	if err := f.svc.Delete(p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.svc.GetByID(p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("deleted post must be gone, got %v", err)
	}
	var comments, links int64
	if err := f.db.Model(&models.CommentModel{}).Where("post_id = ?", p.ID).Count(&comments).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if err := f.db.Table("post_tags").Where("post_id = ?", p.ID).Count(&links).Error; err != nil {
		t.Fatalf("count post_tags: %v", err)
	}
	if comments != 0 || links != 0 {
		t.Fatalf("cascade incomplete: %d comments, %d links", comments, links)
	}

	// The tag itself survives.
	var tags int64
	if err := f.db.Model(&models.TagModel{}).Count(&tags).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if tags != 2 {
		t.Fatalf("tags must survive a post delete, got %d", tags)
	}
}
