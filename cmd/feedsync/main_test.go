package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Studio Journal</title>
  <item>
    <title>Breath &amp; Calm</title>
    <link>https://x.com/breath-calm/</link>
    <pubDate>Mon, 02 Mar 2026 09:00:00 +0000</pubDate>
    <description>A short practice for busy days.</description>
  </item>
</channel>
</rss>`

const configTemplate = `
site:
  root: %q
  title: "Studio Journal"
sources:
  - name: blog
    kind: feed
    feed_url: %q
    manifest: "data/blog.json"
    allow_missing: true
    enabled: true
    pages:
      dir: "blog"
      link_prefix: "/blog/"
    targets:
      - document: "index.html"
        begin_marker: "<!-- posts:begin -->"
        end_marker: "<!-- posts:end -->"
        limit: 3
retry:
  max_attempts: 1
  initial_delay_ms: 1
  max_delay_ms: 1
  backoff_multiplier: 1
  timeout_sec: 5
logging:
  level: error
  format: text
`

type cliEnv struct {
	root       string
	configPath string
}

func setupCLIEnv(t *testing.T, index string) *cliEnv {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/feed", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedXML))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(index), 0o644))

	configPath := filepath.Join(root, "feedsync.yaml")
	cfg := fmt.Sprintf(configTemplate, root, srv.URL+"/feed")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	return &cliEnv{root: root, configPath: configPath}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

const markedIndex = "<main>\n<!-- posts:begin -->\n<!-- posts:end -->\n</main>\n"

func TestRunCommand(t *testing.T) {
	env := setupCLIEnv(t, markedIndex)

	out, err := execute(t, "run", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: updated")
	assert.Contains(t, out, "Breath & Calm")
	assert.Contains(t, out, "/blog/post-1.html")

	assert.FileExists(t, filepath.Join(env.root, "blog", "post-1.html"))
	assert.FileExists(t, filepath.Join(env.root, "data", "blog.json"))

	out, err = execute(t, "run", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: no-change")
}

func TestRunCommand_DryRun(t *testing.T) {
	env := setupCLIEnv(t, markedIndex)

	out, err := execute(t, "run", "--config", env.configPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: updated (dry run)")
	assert.NoFileExists(t, filepath.Join(env.root, "data", "blog.json"))
}

func TestRunCommand_UnknownSourceAborts(t *testing.T) {
	env := setupCLIEnv(t, markedIndex)

	out, err := execute(t, "run", "--config", env.configPath, "--source", "podcast")
	require.Error(t, err)
	assert.Contains(t, out, "Status: aborted")
}

func TestRunCommand_MissingConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestManifestCommands(t *testing.T) {
	env := setupCLIEnv(t, markedIndex)

	_, err := execute(t, "run", "--config", env.configPath)
	require.NoError(t, err)

	out, err := execute(t, "manifest", "list", "--config", env.configPath, "--source", "blog")
	require.NoError(t, err)
	assert.Contains(t, out, "Breath & Calm")
	assert.Contains(t, out, "post-1.html")
	assert.Contains(t, out, "1 entries, last assigned sequence 1")

	out, err = execute(t, "manifest", "check", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (1 entries, last 1)")
	assert.Contains(t, out, "ok (region)")
}

func TestManifestList_RequiresSource(t *testing.T) {
	env := setupCLIEnv(t, markedIndex)

	_, err := execute(t, "manifest", "list", "--config", env.configPath)
	assert.ErrorIs(t, err, errSourceRequired)
}

func TestManifestCheck_MissingMarkers(t *testing.T) {
	env := setupCLIEnv(t, "<main>no markers</main>\n")

	out, err := execute(t, "manifest", "check", "--config", env.configPath)
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "marker not found")
}
