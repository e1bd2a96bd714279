package endpoints

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagsync/swagsync/pysrc"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s := NewScanner()
	t.Cleanup(s.Close)
	return s
}

func TestScanFlatBlock(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route("/pets")
    async def list_pets(self, request):
        """List pets.

        >>>openapi
        summary: List pets
        tags:
          - pets
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 1)

	ep := result.Endpoints[0]
	assert.Equal(t, "/pets", ep.Path)
	assert.Equal(t, "get", ep.Method)
	assert.Equal(t, "pets.py", ep.File)
	assert.Equal(t, "list_pets", ep.Function)
	assert.Equal(t, "List pets", ep.Meta["summary"])
	assert.Empty(t, result.Ignored)
}

func TestScanMultiMethodSharedMeta(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route("/pets", method=["GET", "POST"])
    def pets(self, request):
        """Pets.

        >>>openapi
        summary: Pets collection
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 2)

	// Two endpoints with identical meta but different methods.
	assert.Equal(t, "get", result.Endpoints[0].Method)
	assert.Equal(t, "post", result.Endpoints[1].Method)
	assert.Equal(t, result.Endpoints[0].Meta, result.Endpoints[1].Meta)
	assert.Equal(t, "Pets collection", result.Endpoints[0].Meta["summary"])
}

func TestScanMethodRootedBlock(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route("/pets", method=["GET", "POST"])
    def pets(self, request):
        """Pets.

        >>>openapi
        get:
          summary: List pets
        post:
          summary: Create a pet
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 2)
	assert.Equal(t, "List pets", result.Endpoints[0].Meta["summary"])
	assert.Equal(t, "Create a pet", result.Endpoints[1].Meta["summary"])
}

func TestScanMethodRootedMismatchNonStrict(t *testing.T) {
	var logs strings.Builder
	logger := pysrc.NewSlogAdapter(slog.New(slog.NewTextHandler(&logs, nil)))

	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route("/pets", method=["GET"])
    def pets(self, request):
        """Pets.

        >>>openapi
        get:
          summary: List pets
        post:
          summary: Never emitted
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	s.Logger = logger

	result, err := s.Scan(root)
	require.NoError(t, err)

	// Only the declared GET is emitted; the extraneous post sub-block is
	// dropped with a warning.
	require.Len(t, result.Endpoints, 1)
	assert.Equal(t, "get", result.Endpoints[0].Method)
	assert.Contains(t, logs.String(), "not declared in decorator")
}

func TestScanMethodRootedMismatchStrict(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route("/pets", method=["GET"])
    def pets(self, request):
        """Pets.

        >>>openapi
        get:
          summary: List pets
        post:
          summary: Never emitted
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	s.Strict = true

	_, err := s.Scan(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStrictValidation))
	assert.Contains(t, err.Error(), "not declared in decorator")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pets", verr.Function)
	assert.Equal(t, "post", verr.Method)
}

func TestScanPatternRouteAlwaysIgnored(t *testing.T) {
	root := writeTree(t, map[string]string{
		"files.py": `
class FilesHandler:
    @pattern_route(r"/files/.*", method="GET")
    def files(self, request):
        """Serve files.

        >>>openapi
        summary: Never in swagger
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, result.Endpoints)
	require.Len(t, result.Ignored, 1)
	assert.Equal(t, "/files/.*", result.Ignored[0].Path)
	assert.Equal(t, "get", result.Ignored[0].Method)
}

func TestScanIgnoreMarker(t *testing.T) {
	root := writeTree(t, map[string]string{
		"internal.py": `
class InternalHandler:
    @route("/internal/health")
    def health(self, request):
        """Health probe.

        swagsync: ignore
        """
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, result.Endpoints)
	require.Len(t, result.Ignored, 1)
	assert.Equal(t, "/internal/health", result.Ignored[0].Path)
}

func TestScanModuleIgnoreMarker(t *testing.T) {
	root := writeTree(t, map[string]string{
		"debug.py": `"""Debug handlers.

swagsync: ignore
"""

class DebugHandler:
    @route("/debug")
    def debug(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, result.Endpoints)
	assert.Len(t, result.Ignored, 1)
}

func TestScanFStringVersionPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route(f"/api/{VERSION}/pets/{{pet_id}}")
    def get_pet(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 1)
	assert.Equal(t, "/api/v1/pets/{pet_id}", result.Endpoints[0].Path)
}

func TestScanDynamicPathSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route(f"/api/{make_prefix()}/pets")
    def pets(self, request):
        return None

    @route(compute_path())
    def other(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, result.Endpoints)
}

func TestScanSyntaxErrorSkipsFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"broken.py": "def broken(:\n",
		"good.py": `
class GoodHandler:
    @route("/good")
    def good(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 1)
	assert.Equal(t, "/good", result.Endpoints[0].Path)
}

func TestScanMalformedBlockFatal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @route("/pets")
    def pets(self, request):
        """Pets.

        >>>openapi
        - not
        - a
        - mapping
        <<<openapi
        """
        return None
`,
	})
	s := newTestScanner(t)
	_, err := s.Scan(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pysrc.ErrMalformedDocBlock))
}

func TestScanIgnorePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"skipme_test.py": `
class SkipHandler:
    @route("/skipped")
    def skipped(self, request):
        return None
`,
		"sub/vendor.py": `
class VendorHandler:
    @route("/vendored")
    def vendored(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	s.IgnorePatterns = []string{"*_test.py", "sub/*"}

	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, result.Endpoints)
}

func TestScanDecoratorMetadata(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pets.py": `
class PetsHandler:
    @doc_summary("List pets")
    @doc_tags("pets", "public")
    @route("/pets")
    def pets(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 1)

	meta := result.Endpoints[0].DecoratorMeta
	require.NotNil(t, meta)
	assert.Equal(t, "List pets", meta["summary"])
	assert.Equal(t, []any{"pets", "public"}, meta["tags"])
}

func TestScanStaticRouteAndSingleMethodString(t *testing.T) {
	root := writeTree(t, map[string]string{
		"static.py": `
class StaticHandler:
    @static_route("/robots.txt", method="GET")
    def robots(self, request):
        return None
`,
	})
	s := newTestScanner(t)
	result, err := s.Scan(root)
	require.NoError(t, err)
	require.Len(t, result.Endpoints, 1)
	assert.Equal(t, "/robots.txt", result.Endpoints[0].Path)
	assert.Equal(t, "get", result.Endpoints[0].Method)
}
