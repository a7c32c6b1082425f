package spapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAddMedia(t *testing.T) {
	t.Run("uploads the file and joins text lists", func(t *testing.T) {
		source := writeTempFile(t, "promo.mp4", "video-bytes")

		f := newFakeAPI(t)
		f.handle("/api/medias/upload", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tok-123", r.FormValue("token"))
			file, header, err := r.FormFile("file")
			if assert.NoError(t, err) {
				defer file.Close()
				data, _ := io.ReadAll(file)
				assert.Equal(t, "video-bytes", string(data))
				assert.Equal(t, "promo.mp4", header.Filename)
			}
			writeJSON(w, http.StatusOK, map[string]any{"file": map[string]any{"code": "file-42"}})
		})
		f.handle("/api/medias/add/file", func(w http.ResponseWriter, r *http.Request) {
			form := r.PostForm
			assert.Equal(t, "file-42", form.Get("file_input"))
			assert.NotContains(t, form, "file")
			assert.Equal(t, "sale,summer", form.Get("tags_text"))
			assert.NotContains(t, form, "tags")
			assert.Equal(t, "sport,music", form.Get("interests_text"))
			assert.Equal(t, "acc1", form.Get("post_accounts_text"))
			assert.Equal(t, "True", form.Get("force_fullscreen"))
			assert.Equal(t, "False", form.Get("keep_audio"))
			assert.Equal(t, []string{"b1", "b2"}, form["buildings"])
			assert.Equal(t, "Promo", form.Get("name"))
			writeJSON(w, http.StatusOK, map[string]any{"media": map[string]any{"code": "med-1", "name": "Promo"}})
		})
		client := newTestClient(t, f)

		params := Params{
			"name":             "Promo",
			"file":             source,
			"tags":             []string{"sale", "summer"},
			"interests":        []any{"sport", "music"},
			"post_accounts":    "acc1",
			"force_fullscreen": true,
			"keep_audio":       false,
			"buildings":        []string{"b1", "b2"},
		}
		media, err := client.AddMedia(context.Background(), "file", params)
		require.NoError(t, err)
		assert.Equal(t, "med-1", media.Code())

		// The caller keeps its own values
		assert.Equal(t, source, params["file"])
		assert.Equal(t, []string{"sale", "summer"}, params["tags"])
	})

	t.Run("upload without code fails before creating", func(t *testing.T) {
		source := writeTempFile(t, "image.png", "png")

		f := newFakeAPI(t)
		f.handle("/api/medias/upload", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"file": map[string]any{}})
		})
		client := newTestClient(t, f)

		_, err := client.AddMedia(context.Background(), "file", Params{"file": source})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.Nil(t, f.form("/api/medias/add/file"))
	})

	t.Run("missing local file", func(t *testing.T) {
		f := newFakeAPI(t)
		client := newTestClient(t, f)

		_, err := client.AddMedia(context.Background(), "file", Params{"file": filepath.Join(t.TempDir(), "nope.mp4")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.Contains(t, err.Error(), "maybe the file is not found or not readable")
		assert.Nil(t, f.form("/api/medias/upload"))
	})

	t.Run("uploads before converting lists", func(t *testing.T) {
		source := writeTempFile(t, "clip.mp4", "mp4")

		f := newFakeAPI(t)
		f.handle("/api/medias/upload", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"file": map[string]any{"code": "file-9"}})
		})
		client := newTestClient(t, f)

		_, err := client.AddMedia(context.Background(), "file", Params{"file": source, "tags": 12})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot convert tags")
		assert.NotNil(t, f.form("/api/medias/upload"))
		assert.Nil(t, f.form("/api/medias/add/file"))
	})

	t.Run("upload error wins over list error", func(t *testing.T) {
		f := newFakeAPI(t)
		client := newTestClient(t, f)

		_, err := client.AddMedia(context.Background(), "file", Params{
			"file": filepath.Join(t.TempDir(), "nope.mp4"),
			"tags": 12,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.NotContains(t, err.Error(), "cannot convert")
	})

	t.Run("web media without file", func(t *testing.T) {
		f := newFakeAPI(t)
		f.handle("/api/medias/add/web", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "https://example.com", r.PostForm.Get("url"))
			assert.JSONEq(t, `{"zoom":1.5}`, r.PostForm.Get("webview_details"))
			writeJSON(w, http.StatusOK, map[string]any{"media": map[string]any{"code": "med-2"}})
		})
		client := newTestClient(t, f)

		media, err := client.AddMedia(context.Background(), "web", Params{
			"url":             "https://example.com",
			"webview_details": map[string]any{"zoom": 1.5},
		})
		require.NoError(t, err)
		assert.Equal(t, "med-2", media.Code())
		assert.Nil(t, f.form("/api/medias/upload"))
	})

	t.Run("category required", func(t *testing.T) {
		f := newFakeAPI(t)
		client := newTestClient(t, f)

		_, err := client.AddMedia(context.Background(), " ", Params{"name": "x"})
		require.Error(t, err)
		assert.Zero(t, f.hitCount())
	})
}

func TestEditMedia(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("/api/medias/edit", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "med-1", r.PostForm.Get("media_code"))
		assert.Equal(t, "New name", r.PostForm.Get("name"))
		assert.Equal(t, "a,b", r.PostForm.Get("tags_text"))
		assert.Equal(t, `{"notes":"x"}`, r.PostForm.Get("hidden_details"))
		writeJSON(w, http.StatusOK, map[string]any{"media": map[string]any{"code": "med-1", "name": "New name"}})
	})
	client := newTestClient(t, f)

	media, err := client.EditMedia(context.Background(), "med-1", Params{
		"name":           "New name",
		"tags":           []string{"a", "b"},
		"hidden_details": map[string]any{"notes": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New name", media.Name())
}

func TestUploadMediaTemplateFile(t *testing.T) {
	source := writeTempFile(t, "logo.svg", "<svg/>")

	f := newFakeAPI(t)
	f.handle("/api/medias/upload/template", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "logo.svg", header.Filename)
		}
		writeJSON(w, http.StatusOK, map[string]any{"file": map[string]any{"url": "https://cdn.example.com/logo.svg"}})
	})
	client := newTestClient(t, f)

	file, err := client.UploadMediaTemplateFile(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.svg", file.String("url"))
}

func TestDownloads(t *testing.T) {
	serveFile := func(disposition, content string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if disposition != "" {
				w.Header().Set("Content-Disposition", disposition)
			}
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte(content))
		}
	}

	t.Run("final media keeps served extension", func(t *testing.T) {
		dir := t.TempDir()
		f := newFakeAPI(t)
		f.handle("/api/medias/download/final", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "med-1", r.PostForm.Get("media_code"))
			assert.Equal(t, "mat-1", r.PostForm.Get("material_code"))
			serveFile(`attachment; filename="final.mp4"`, "final-bytes")(w, r)
		})
		client := newTestClient(t, f, WithDownloadDir(dir))

		path, err := client.DownloadFinalMedia(context.Background(), "med-1", "mat-1", "exports/lobby")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "exports", "lobby.mp4"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "final-bytes", string(data))
	})

	t.Run("converted media uses served name", func(t *testing.T) {
		dir := t.TempDir()
		f := newFakeAPI(t)
		f.handle("/api/medias/download/convert", serveFile("attachment; filename=converted.mp4", "mp4"))
		client := newTestClient(t, f, WithDownloadDir(dir))

		path, err := client.DownloadConvertedMedia(context.Background(), "med-1", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "converted.mp4"), path)
	})

	t.Run("source media without header", func(t *testing.T) {
		dir := t.TempDir()
		f := newFakeAPI(t)
		f.handle("/api/medias/download/src", serveFile("", "src"))
		client := newTestClient(t, f, WithDownloadDir(dir))

		path, err := client.DownloadSrcMedia(context.Background(), "med-1", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "unknown"), path)
	})

	t.Run("absolute requested name ignores download dir", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "copy")
		f := newFakeAPI(t)
		f.handle("/api/medias/download/src", serveFile(`attachment; filename="origin.jpeg"`, "jpeg"))
		client := newTestClient(t, f, WithDownloadDir(t.TempDir()))

		path, err := client.DownloadSrcMedia(context.Background(), "med-1", target)
		require.NoError(t, err)
		assert.Equal(t, target+".jpeg", path)
	})

	t.Run("conversion not ready", func(t *testing.T) {
		dir := t.TempDir()
		f := newFakeAPI(t)
		f.handle("/api/medias/download/convert", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "conversion running"})
		})
		client := newTestClient(t, f, WithDownloadDir(dir))

		_, err := client.DownloadConvertedMedia(context.Background(), "med-1", "out")
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		requested   string
		want        string
		wantOK      bool
	}{
		{"served name", `attachment; filename="clip.mp4"`, "", "clip.mp4", true},
		{"requested keeps served extension", `attachment; filename="clip.mp4"`, "out/lobby", "out/lobby.mp4", true},
		{"served name without extension", `attachment; filename="clip"`, "lobby", "lobby", true},
		{"unquoted name", "attachment; filename=clip.webm", "", "clip.webm", true},
		{"loose header", "attachment;filename=my clip.mov", "", "my clip.mov", true},
		{"no header", "", "lobby", "lobby", false},
		{"no header nor name", "", "", "unknown", false},
		{"header without filename", "attachment", "", "unknown", false},
		{"path in served name", `attachment; filename="../../etc/passwd"`, "", "passwd", true},
		{"only dots", `attachment; filename=".."`, "", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := downloadFilename(tt.disposition, tt.requested)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
