package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// AssetsWithCache serves the catalog images and stylesheet under dir. Each
// file gets a weak ETag computed once at startup, and a matching If-None-Match
// answers 304. The /assets prefix must already be stripped.
func AssetsWithCache(dir string) http.Handler {
	fsys := os.DirFS(dir)
	etags := assetETags(fsys)
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if tag, ok := etags[strings.TrimPrefix(r.URL.Path, "/")]; ok {
			w.Header().Set("ETag", tag)
			if r.Header.Get("If-None-Match") == tag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// assetETags skips unreadable files; they are served without an ETag.
func assetETags(fsys fs.FS) map[string]string {
	tags := map[string]string{}
	_ = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil
		}
		sum := sha256.Sum256(data)
		tags[name] = `W/"` + hex.EncodeToString(sum[:16]) + `"`
		return nil
	})
	return tags
}
