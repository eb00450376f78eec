package checkengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddedLines_TracksPostImageLineNumber(t *testing.T) {
	diff := `@@ -10,3 +10,5 @@ func foo() {
 context line
-removed line
+added line one
+added line two
 trailing context
`
	added := ParseAddedLines(diff)
	require := assert.New(t)
	require.Len(added, 2)
	require.Equal("added line one", added[0].Text)
	require.Equal(11, added[0].Line)
	require.Equal("added line two", added[1].Text)
	require.Equal(12, added[1].Line)
}

func TestParseAddedLines_MultipleHunks(t *testing.T) {
	diff := `@@ -1,2 +1,2 @@
-old
+new
@@ -20,2 +20,3 @@
 ctx
+added
`
	added := ParseAddedLines(diff)
	assert.Len(t, added, 2)
	assert.Equal(t, 1, added[0].Line)
	assert.Equal(t, 21, added[1].Line)
}

func TestParseAddedLines_EmptyDiffYieldsNoLines(t *testing.T) {
	assert.Empty(t, ParseAddedLines(""))
}
