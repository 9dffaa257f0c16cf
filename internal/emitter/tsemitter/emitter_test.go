package tsemitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/bru2openapi/internal/bru"
	"github.com/mark3labs/bru2openapi/internal/typeinfer"
)

func sampleFiles() []bru.File {
	mk := func(domain, text string) bru.File {
		return bru.File{Domain: domain, Document: bru.Parse(text)}
	}
	return []bru.File{
		mk("users", "GET {{baseUrl}}/api/users/:id\ndocs {\n  {\"id\": 1, \"name\": \"John\", \"tags\": [\"a\"]}\n}\n"),
		mk("users", "POST {{baseUrl}}/api/users\nbody:json {\n  {\"name\": \"Jane\"}\n}\n"),
		mk("orders", "GET /orders\ndocs {\n  [{\"sku\": \"x\", \"total-price\": 2.5}]\n}\n"),
		mk("empty", "GET /nothing\n"),
		mk("skipped", "meta {\n  name: no url\n}\n"),
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got := Render([]typeinfer.Declaration{
		{Name: "Item", Fields: []typeinfer.Field{
			{Name: "id", Type: typeinfer.PrimitiveNode(typeinfer.Number)},
			{Name: "content-type", Type: typeinfer.PrimitiveNode(typeinfer.Null)},
		}},
		{Name: "List", Alias: ptr(typeinfer.ArrayOf(typeinfer.RefTo("Item")))},
	})
	want := "export interface Item {\n  id: number;\n  \"content-type\": null;\n}\n\nexport type List = Item[];\n"
	assert.Equal(t, want, got)
	assert.Empty(t, Render(nil))
}

func ptr[T any](v T) *T { return &v }

func TestEmit_DryRunPlan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), sampleFiles(), Options{OutDir: dir, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 2)
	assert.Equal(t, "orders/types.ts", res.Planned[0].RelPath)
	assert.Equal(t, 2, res.Planned[0].Declarations)
	assert.Equal(t, "users/types.ts", res.Planned[1].RelPath)
	assert.Equal(t, 2, res.Planned[1].Declarations)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run wrote files")
}

func TestEmit_WritesPerDomainFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := Emit(context.Background(), sampleFiles(), Options{OutDir: dir})
	require.NoError(t, err)

	users, err := os.ReadFile(filepath.Join(dir, "users", FileName))
	require.NoError(t, err)
	assert.Equal(t,
		"export interface GetApiUsersByIdResponse {\n  id: number;\n  name: string;\n  tags: string[];\n}\n\n"+
			"export interface PostApiUsersRequest {\n  name: string;\n}\n",
		string(users))

	orders, err := os.ReadFile(filepath.Join(dir, "orders", FileName))
	require.NoError(t, err)
	assert.Equal(t,
		"export interface GetOrdersResponseItem {\n  sku: string;\n  \"total-price\": number;\n}\n\n"+
			"export type GetOrdersResponse = GetOrdersResponseItem[];\n",
		string(orders))

	_, err = os.Stat(filepath.Join(dir, "empty"))
	assert.True(t, os.IsNotExist(err))
}

func TestEmit_NonEmptyDirNeedsForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	_, err := Emit(context.Background(), sampleFiles(), Options{OutDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")

	_, err = Emit(context.Background(), sampleFiles(), Options{OutDir: dir, Force: true})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "users", FileName))
}

func TestEmit_DedupesWithinDomain(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := []bru.File{
		{Domain: "a", Document: bru.Parse("GET /x\ndocs {\n  {\"meta\": {\"page\": 1}}\n}\n")},
		{Domain: "a", Document: bru.Parse("GET /y\ndocs {\n  {\"meta\": {\"cursor\": \"c\"}}\n}\n")},
	}
	res, err := Emit(context.Background(), files, Options{OutDir: dir, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 1)
	// Meta (twice, last kept), GetXResponse, GetYResponse.
	assert.Equal(t, 3, res.Planned[0].Declarations)

	_, err = Emit(context.Background(), nil, Options{})
	require.Error(t, err)
}
