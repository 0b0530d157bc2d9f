package dossier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

type fakeResearcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeResearcher) GenerateCompanyInfo(_ context.Context, email string) (string, error) {
	f.calls++
	return f.text, f.err
}

func siteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	})
	mux.HandleFunc("/broken", http.NotFound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBuilder_Build(t *testing.T) {
	site := siteServer(t)
	researcher := &fakeResearcher{text: fmt.Sprintf(
		"ORGANIZATION: Acme Robotics\nORGANIZATION DETAILS:\n- Website: %s/\n- Old page: %s/broken\n", site.URL, site.URL)}

	b := &Builder{
		Researcher: researcher,
		Cache:      NewCache(context.Background(), "", time.Hour),
		Links:      NewLinkChecker(),
		Site:       NewSummarizer(),
	}

	res, err := b.Build(context.Background(), "  Dear candidate, Acme is hiring.  ")
	require.NoError(t, err)

	assert.Equal(t, "Acme Robotics", res.Company)
	assert.False(t, res.Cached)
	assert.Equal(t, []string{site.URL + "/broken"}, res.BrokenLinks())
	require.NotNil(t, res.Site)
	assert.Equal(t, "Acme Robotics | Home", res.Site.Title)

	assert.Contains(t, res.Text, "ORGANIZATION: Acme Robotics")
	assert.Contains(t, res.Text, "UNVERIFIED LINKS:\n- "+site.URL+"/broken")
	assert.Contains(t, res.Text, "WEBSITE SNAPSHOT:")
	assert.Contains(t, res.Text, "- facebook: "+NotAvailable)

	again, err := b.Build(context.Background(), "Dear candidate, Acme is hiring.")
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, 1, researcher.calls)
}

func TestBuilder_MinimalCollaborators(t *testing.T) {
	b := &Builder{Researcher: &fakeResearcher{text: "ORGANIZATION: Hooli"}}
	res, err := b.Build(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hooli", res.Company)
	assert.Nil(t, res.Social)
	assert.Equal(t, "ORGANIZATION: Hooli\n", res.Text)
}

func TestBuilder_Errors(t *testing.T) {
	b := &Builder{Researcher: &fakeResearcher{err: errors.New("quota")}}
	_, err := b.Build(context.Background(), "hi")
	assert.ErrorContains(t, err, "quota")

	_, err = b.Build(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = (&Builder{Researcher: &fakeResearcher{text: "  "}}).Build(context.Background(), "hi")
	assert.Error(t, err)

	_, err = (&Builder{}).Build(context.Background(), "hi")
	assert.Error(t, err)
}

func TestReadInput(t *testing.T) {
	got, err := ReadInput(common.PipelineConfig{EmailText: "inline"})
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	path := filepath.Join(t.TempDir(), "mail.eml")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	got, err = ReadInput(common.PipelineConfig{EmailPath: path})
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = ReadInput(common.PipelineConfig{})
	assert.ErrorIs(t, err, ErrEmptyEmail)
}

func TestWriteDossier(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path, err := WriteDossier(dir, &Result{Text: "ORGANIZATION: X\n"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dossier.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ORGANIZATION: X"))
}
