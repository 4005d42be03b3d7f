package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/suite/user_test.go b/suite/user_test.go
index 1111111..2222222 100644
--- a/suite/user_test.go
+++ b/suite/user_test.go
@@ -10,0 +11,3 @@ func (s *UserSuite) TestA() {}
+func (s *UserSuite) TestC() {
+	s.Equal(1, 1)
+}
@@ -20 +23 @@ func (s *UserSuite) TestB() {
-	old
+	new
@@ -30,2 +32,0 @@
-	gone
-	gone
diff --git a/suite/old_test.go b/suite/old_test.go
deleted file mode 100644
index 3333333..0000000
--- a/suite/old_test.go
+++ /dev/null
@@ -1,3 +0,0 @@
-package suite
`

func TestParseDiff(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "suite/user_test.go", changes[0].Path)
	assert.Equal(t, []int{11, 12, 13, 23, 32}, changes[0].ChangedLines)
	assert.False(t, changes[0].Deleted)

	assert.Equal(t, "suite/old_test.go", changes[1].Path)
	assert.True(t, changes[1].Deleted)
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}
