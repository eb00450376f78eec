package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/store"
)

func TestIngestRepositoryDocs_SkipsMissingFiles(t *testing.T) {
	st, cleanup := store.SetupTestDB(t)
	defer cleanup()
	tenant := store.CreateTestTenant(t, st)

	prov := newFakeProvider("gitlab")
	prov.files["README.md"] = []byte("# hello\n")

	log := zap.NewNop()
	ingested := IngestRepositoryDocs(context.Background(), st, log, prov,
		tenant.ID, "gitlab", "group", "repo", "main")

	assert.Equal(t, 1, ingested)

	sources, err := st.Knowledge().ListByType(tenant.ID, model.KnowledgeSourceTypeDoc)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "README.md", sources[0].Title)
}

func TestIngestRepositoryDocs_NoCandidatesFound(t *testing.T) {
	st, cleanup := store.SetupTestDB(t)
	defer cleanup()
	tenant := store.CreateTestTenant(t, st)

	prov := newFakeProvider("gitlab")

	log := zap.NewNop()
	ingested := IngestRepositoryDocs(context.Background(), st, log, prov,
		tenant.ID, "gitlab", "group", "repo", "main")

	assert.Equal(t, 0, ingested)
}
