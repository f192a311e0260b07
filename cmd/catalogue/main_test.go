package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolatedEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "products.db"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestStructureCommand_HeuristicFallback(t *testing.T) {
	isolatedEnv(t)

	out, err := execute(t, "Acme ghee, visit https://acme.example today", "structure", "--name", "acme.pdf", "-")
	require.NoError(t, err)

	var records []entity.ProductRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "acme", records[0].ProductName)
	assert.Equal(t, "https://acme.example", records[0].Website)
	assert.Equal(t, "acme.pdf", records[0].CatalogueLink)
}

func TestSeedThenSearch(t *testing.T) {
	dir := isolatedEnv(t)
	csvPath := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"product_name,company_name,seller_contact,website,catalogue_link,description\n"+
			"Ghee 500ml,Acme Foods,61234567,https://acme.example,acme.pdf,Pure cow ghee\n"+
			"Mustard Oil,Acme Foods,61234567,https://acme.example,acme.pdf,Cold pressed\n"), 0o644))

	out, err := execute(t, "", "seed", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 products into the sqlite store")

	out, err = execute(t, "", "search", "ghee")
	require.NoError(t, err)
	var records []entity.ProductRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ghee 500ml", records[0].ProductName)

	out, err = execute(t, "", "export", "ghee", "--out", filepath.Join(dir, "ghee.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 products")
	assert.FileExists(t, filepath.Join(dir, "ghee.xlsx"))

	out, err = execute(t, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "store (sqlite): ok")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	isolatedEnv(t)
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := execute(t, "", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG_ERROR")
}
