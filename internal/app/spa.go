package app

import (
	"bytes"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// spaHandler serves the built frontend from files. Unknown paths fall back
// to index.html so client-side routes survive a reload; /api/ stays JSON.
func spaHandler(files fs.FS) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			apiNotFound(c)
			return
		}

		reqPath := strings.TrimPrefix(path.Clean(c.Request.URL.Path), "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		if serveFile(c, files, reqPath) {
			return
		}
		if serveFile(c, files, "index.html") {
			return
		}
		c.Status(http.StatusNotFound)
	}
}

func serveFile(c *gin.Context, files fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	f, err := files.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		c.Header("Content-Type", ct)
	}
	// hashed build assets never change; index.html must be revalidated
	if name != "index.html" {
		c.Header("Cache-Control", "public, max-age=86400, immutable")
	}

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		body, err := io.ReadAll(f)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return true
		}
		rs = bytes.NewReader(body)
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), rs)
	return true
}
