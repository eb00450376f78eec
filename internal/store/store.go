// Package store provides data access layer interfaces and implementations.
// This package abstracts database operations to improve maintainability
// and decouple business logic from specific database implementations.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	Tenant() TenantStore
	Repository() RepositoryStore
	MergeRequest() MergeRequestStore
	ReviewRun() ReviewRunStore
	CheckResult() CheckResultStore
	Suggestion() SuggestionStore
	Comment() CommentStore
	Knowledge() KnowledgeStore
	AiConfig() AiConfigStore
	CheckConfig() CheckConfigStore
	Settings() SettingsStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db               *gorm.DB
	tenantStore      TenantStore
	repositoryStore  RepositoryStore
	mergeRequestStore MergeRequestStore
	reviewRunStore   ReviewRunStore
	checkResultStore CheckResultStore
	suggestionStore  SuggestionStore
	commentStore     CommentStore
	knowledgeStore   KnowledgeStore
	aiConfigStore    AiConfigStore
	checkConfigStore CheckConfigStore
	settingsStore    SettingsStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:                db,
		tenantStore:       newTenantStore(db),
		repositoryStore:   newRepositoryStore(db),
		mergeRequestStore: newMergeRequestStore(db),
		reviewRunStore:    newReviewRunStore(db),
		checkResultStore:  newCheckResultStore(db),
		suggestionStore:   newSuggestionStore(db),
		commentStore:      newCommentStore(db),
		knowledgeStore:    newKnowledgeStore(db),
		aiConfigStore:     newAiConfigStore(db),
		checkConfigStore:  newCheckConfigStore(db),
		settingsStore:     newSettingsStore(db),
	}
}

func (s *gormStore) Tenant() TenantStore             { return s.tenantStore }
func (s *gormStore) Repository() RepositoryStore     { return s.repositoryStore }
func (s *gormStore) MergeRequest() MergeRequestStore { return s.mergeRequestStore }
func (s *gormStore) ReviewRun() ReviewRunStore       { return s.reviewRunStore }
func (s *gormStore) CheckResult() CheckResultStore   { return s.checkResultStore }
func (s *gormStore) Suggestion() SuggestionStore     { return s.suggestionStore }
func (s *gormStore) Comment() CommentStore           { return s.commentStore }
func (s *gormStore) Knowledge() KnowledgeStore       { return s.knowledgeStore }
func (s *gormStore) AiConfig() AiConfigStore         { return s.aiConfigStore }
func (s *gormStore) CheckConfig() CheckConfigStore   { return s.checkConfigStore }
func (s *gormStore) Settings() SettingsStore         { return s.settingsStore }

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
