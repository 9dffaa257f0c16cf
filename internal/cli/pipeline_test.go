package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const getUserBru = `meta {
  name: Get User
  type: http
  seq: 1
}

get {
  url: {{baseUrl}}/api/users/:id
  body: none
  auth: none
}

docs {
  ` + "```json" + `
  {"id": 1, "name": "John"}
  ` + "```" + `
}
`

const postUserBru = `meta {
  name: Create User
  type: http
  seq: 2
}

post {
  url: {{baseUrl}}/api/users
  body: json
  auth: none
}

body:json {
  {
    "name": "Jane"
  }
}
`

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// writeCollection lays out a small Bruno collection and returns its root.
func writeCollection(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "bruno")
	files := map[string]string{
		"users/get-user.bru":  getUserBru,
		"users/post-user.bru": postUserBru,
		"users/folder.bru":    "meta {\n  name: users\n}\n",
		"bruno.json":          `{"name": "demo"}`,
		"health.bru":          "GET /health\n",
		"broken/latin1.bru":   "GET /x\ndocs {\n  \xff\xfe\n}\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

func TestGeneratePipeline_JSON(t *testing.T) {
	input := writeCollection(t)
	output := filepath.Join(t.TempDir(), "out", "openapi.json")

	var stderr bytes.Buffer
	root := newTestRoot("generate", "--input", input, "--output", output, "--validate")
	root.SetErr(&stderr)
	out := captureStdout(func() {
		require.NoError(t, root.Execute())
	})
	assert.Contains(t, out, "Wrote "+output)
	assert.Contains(t, out, "3 operations from 3 files, 2 tags")
	assert.Contains(t, stderr.String(), "skipping unreadable file")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.0.0", doc["openapi"])

	paths := doc["paths"].(map[string]any)
	require.Contains(t, paths, "/api/users/{id}")
	require.Contains(t, paths, "/api/users")
	require.Contains(t, paths, "/health")

	get := paths["/api/users/{id}"].(map[string]any)["get"].(map[string]any)
	schema := get["responses"].(map[string]any)["200"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["schema"].(map[string]any)
	props := schema["properties"].(map[string]any)
	assert.Equal(t, "number", props["id"].(map[string]any)["type"])
	assert.Equal(t, "string", props["name"].(map[string]any)["type"])

	post := paths["/api/users"].(map[string]any)["post"].(map[string]any)
	body := post["requestBody"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["schema"].(map[string]any)
	assert.Equal(t, "string", body["properties"].(map[string]any)["name"].(map[string]any)["type"])

	tags := doc["tags"].([]any)
	require.Len(t, tags, 2)
	names := []string{tags[0].(map[string]any)["name"].(string), tags[1].(map[string]any)["name"].(string)}
	assert.ElementsMatch(t, []string{"users", "default"}, names)
}

func TestGeneratePipeline_YAMLHoisted(t *testing.T) {
	input := writeCollection(t)
	output := filepath.Join(t.TempDir(), "openapi.yaml")

	captureStdout(func() {
		require.NoError(t, newTestRoot("generate", "--input", input, "--output", output, "--hoist-schemas", "--title", "Demo").Execute())
	})

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "title: Demo")
	assert.Contains(t, s, "$ref: '#/components/schemas/GetApiUsersByIdResponse'")
	assert.Contains(t, s, "PostApiUsersRequest:")

	out := captureStdout(func() {
		require.NoError(t, newTestRoot("validate", output).Execute())
	})
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "3 operations")
}

func TestGeneratePipeline_MissingInputIsFatal(t *testing.T) {
	output := filepath.Join(t.TempDir(), "openapi.json")
	err := newTestRoot("generate", "--input", filepath.Join(t.TempDir(), "nope"), "--output", output).Execute()
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "input")
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTypesPipeline(t *testing.T) {
	input := writeCollection(t)
	outDir := filepath.Join(t.TempDir(), "types")

	out := captureStdout(func() {
		require.NoError(t, newTestRoot("types", "--input", input, "--out", outDir, "--dry-run").Execute())
	})
	assert.Contains(t, out, "Planned writes to")
	assert.Contains(t, out, "- users/types.ts")
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "dry run wrote files")

	out = captureStdout(func() {
		require.NoError(t, newTestRoot("types", "--input", input, "--out", outDir).Execute())
	})
	assert.Contains(t, out, "Wrote 1 type files")
	data, err := os.ReadFile(filepath.Join(outDir, "users", "types.ts"))
	require.NoError(t, err)
	assert.Equal(t,
		"export interface GetApiUsersByIdResponse {\n  id: number;\n  name: string;\n}\n\n"+
			"export interface PostApiUsersRequest {\n  name: string;\n}\n",
		string(data))

	err = newTestRoot("types", "--input", input, "--out", outDir).Execute()
	require.ErrorIs(t, err, ErrUsage, "non-empty output without --force")
	captureStdout(func() {
		require.NoError(t, newTestRoot("types", "--input", input, "--out", outDir, "--force").Execute())
	})
}

func TestValidateCommand(t *testing.T) {
	err := newTestRoot("validate").Execute()
	require.ErrorIs(t, err, ErrUsage)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("openapi: 3.0.0\ninfo:\n  title: Bad\n  version: '1'\npaths:\n  /pet:\n    get:\n      responses: {}\n"), 0o600))
	err = newTestRoot("validate", bad).Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract validationerror in "+bad)
}

func TestLogFileFlag(t *testing.T) {
	input := writeCollection(t)
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")

	captureStdout(func() {
		require.NoError(t, newTestRoot("-v", "--log-file", logPath,
			"generate", "--input", input, "--output", filepath.Join(t.TempDir(), "o.json")).Execute())
	})
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=DEBUG")
	assert.Contains(t, string(data), "contract written")
}
