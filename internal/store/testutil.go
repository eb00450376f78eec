// Package store provides test utilities for database testing.
package store

import (
	"crypto/sha256"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/database"
	"github.com/verustcode/verustcode/internal/model"
)

// SetupTestDB creates a temporary-file SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database with temp path
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()
	store := NewStore(db)

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// SetupTestDBWithModels creates a temporary-file SQLite database and runs migrations.
// This is a convenience function that ensures all models are migrated.
func SetupTestDBWithModels(t *testing.T) (*gorm.DB, func()) {
	// Reset database state
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()

	// Ensure all models are migrated
	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
		t.Fatalf("Failed to migrate models: %v", err)
	}

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return db, cleanup
}

// CreateTestTenant creates a test Tenant with default values.
func CreateTestTenant(t *testing.T, store Store, overrides ...func(*model.Tenant)) *model.Tenant {
	uniqueID := t.Name() + "-" + time.Now().Format("150405.000000")
	tenant := &model.Tenant{
		ID:   fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID)))[:20],
		Slug: "test-tenant-" + fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID)))[:8],
	}

	for _, override := range overrides {
		override(tenant)
	}

	if err := store.Tenant().Create(tenant); err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}

	return tenant
}

// CreateTestRepository creates a test Repository under the given tenant.
func CreateTestRepository(t *testing.T, store Store, tenantID string, overrides ...func(*model.Repository)) *model.Repository {
	uniqueID := t.Name() + "-" + time.Now().Format("150405.000000")
	repo := &model.Repository{
		ID:             fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID+"repo")))[:20],
		TenantID:       tenantID,
		Provider:       "gitlab",
		ProviderRepoID: fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID)))[:12],
		Namespace:      "test-group",
		Name:           "test-repo",
		DefaultBranch:  "main",
	}

	for _, override := range overrides {
		override(repo)
	}

	if err := store.Repository().Create(repo); err != nil {
		t.Fatalf("Failed to create test repository: %v", err)
	}

	return repo
}

// CreateTestMergeRequest creates a test MergeRequest under the given repository.
func CreateTestMergeRequest(t *testing.T, store Store, tenantID, repositoryID string, overrides ...func(*model.MergeRequest)) *model.MergeRequest {
	uniqueID := t.Name() + "-" + time.Now().Format("150405.000000")
	mr := &model.MergeRequest{
		ID:           fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID+"mr")))[:20],
		TenantID:     tenantID,
		RepositoryID: repositoryID,
		IID:          1,
		Title:        "Test MR",
		Author:       "octocat",
		SourceBranch: "feature/test",
		TargetBranch: "main",
		State:        model.MergeRequestStateOpened,
		WebURL:       "https://gitlab.example.com/test-group/test-repo/-/merge_requests/1",
		LastSeenSha:  fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID)))[:40],
	}

	for _, override := range overrides {
		override(mr)
	}

	if err := store.MergeRequest().Create(mr); err != nil {
		t.Fatalf("Failed to create test merge request: %v", err)
	}

	return mr
}

// CreateTestReviewRun creates a test ReviewRun under the given merge request.
func CreateTestReviewRun(t *testing.T, store Store, tenantID, mergeRequestID string, overrides ...func(*model.ReviewRun)) *model.ReviewRun {
	uniqueID := t.Name() + "-" + time.Now().Format("150405.000000")
	run := &model.ReviewRun{
		ID:             fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID+"run")))[:20],
		TenantID:       tenantID,
		MergeRequestID: mergeRequestID,
		HeadSha:        fmt.Sprintf("%x", sha256.Sum256([]byte(uniqueID)))[:40],
		Status:         model.ReviewRunStatusQueued,
		TriggerSource:  model.ReviewRunTriggerWebhook,
	}

	for _, override := range overrides {
		override(run)
	}

	if err := store.ReviewRun().Create(run); err != nil {
		t.Fatalf("Failed to create test review run: %v", err)
	}

	return run
}
