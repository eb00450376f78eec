package precedent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verustcode/verustcode/internal/checkengine"
)

func TestBuildSignature_StableAcrossUnrelatedStopwordNoise(t *testing.T) {
	base := MRInput{
		Title:       "Fix retry backoff in queue worker",
		Description: "The worker was retrying too aggressively under load.",
		Changes: []checkengine.FileChange{
			{Path: "internal/queue/worker.go", Diff: "@@ -1,1 +1,2 @@\n ctx\n+func retryBackoff() {}\n"},
		},
	}
	noisy := base
	noisy.Description = base.Description + " The and for are but not you all any can had her was."

	sig1 := BuildSignature(base)
	sig2 := BuildSignature(noisy)

	assert.Equal(t, sig1.Hash, sig2.Hash, "adding only stopwords must not change the signature")
	assert.Equal(t, sig1.Tokens, sig2.Tokens)
}

func TestBuildSignature_DropsShortAndNumericTokens(t *testing.T) {
	sig := BuildSignature(MRInput{Title: "a bb 123 4567 retry"})
	assert.NotContains(t, sig.Tokens, "a")
	assert.NotContains(t, sig.Tokens, "bb")
	assert.NotContains(t, sig.Tokens, "123")
	assert.NotContains(t, sig.Tokens, "4567")
	assert.Contains(t, sig.Tokens, "retry")
}

func TestBuildSignature_SplitsCamelCaseAndPathComponents(t *testing.T) {
	sig := BuildSignature(MRInput{
		Changes: []checkengine.FileChange{
			{Path: "internal/checkengine/registryScanner.go"},
		},
	})
	assert.Contains(t, sig.Tokens, "registry")
	assert.Contains(t, sig.Tokens, "scanner")
	assert.Contains(t, sig.Tokens, "checkengine")
}

func TestBuildSignature_EmptyInputYieldsEmptySignature(t *testing.T) {
	sig := BuildSignature(MRInput{})
	assert.Empty(t, sig.Tokens)
	assert.NotEmpty(t, sig.Hash, "hash of an empty token set is still well-defined")
}

func TestBuildSignature_CapsAtTopTokenCount(t *testing.T) {
	in := MRInput{}
	words := ""
	for i := 0; i < 50; i++ {
		words += string(rune('a'+i%26)) + string(rune('a'+i%26)) + string(rune('a'+i%26)) + "x" + string(rune('0'+i%10)) + " "
	}
	in.Description = words
	sig := BuildSignature(in)
	assert.LessOrEqual(t, len(sig.Tokens), topTokenCount)
}
