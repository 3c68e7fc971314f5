package dotenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_LayerPrecedence(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".env"), "MDFLOW_TEST_A=base\nMDFLOW_TEST_B=base\n")
	write(t, filepath.Join(dir, ".env.development"), "MDFLOW_TEST_A=dev\n")

	t.Setenv("MDFLOW_TEST_A", "")
	t.Setenv("MDFLOW_TEST_B", "")
	os.Unsetenv("MDFLOW_TEST_A")
	os.Unsetenv("MDFLOW_TEST_B")
	t.Setenv("NODE_ENV", "")
	os.Unsetenv("NODE_ENV")

	Load(dir)
	assert.Equal(t, "dev", os.Getenv("MDFLOW_TEST_A"), "more specific layer wins")
	assert.Equal(t, "base", os.Getenv("MDFLOW_TEST_B"))
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".env"), "MDFLOW_TEST_C=file\n")
	t.Setenv("MDFLOW_TEST_C", "process")

	Load(dir)
	assert.Equal(t, "process", os.Getenv("MDFLOW_TEST_C"))
}

func TestLoad_NodeEnvSelectsLayer(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".env.production"), "MDFLOW_TEST_D=prod\n")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("MDFLOW_TEST_D", "")
	os.Unsetenv("MDFLOW_TEST_D")

	Load(dir)
	assert.Equal(t, "prod", os.Getenv("MDFLOW_TEST_D"))
}

func TestLoad_MissingFilesAreFine(t *testing.T) {
	Load(t.TempDir())
}
