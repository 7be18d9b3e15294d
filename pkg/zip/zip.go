package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
	Modified time.Time
}

// WriteArchive streams a zip of assets to w. Repeated file names get a
// numeric suffix so no entry shadows another.
func WriteArchive(w io.Writer, assets []Asset) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := uniqueName(seen, asset.Filename)
		hdr := &zip.FileHeader{Name: name, Method: methodFor(asset.MIME)}
		if !asset.Modified.IsZero() {
			hdr.Modified = asset.Modified
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := fw.Write(asset.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	return zw.Close()
}

func uniqueName(seen map[string]int, name string) string {
	name = strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if name == "" {
		name = "file"
	}
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
	if _, taken := seen[candidate]; taken {
		return uniqueName(seen, candidate)
	}
	seen[candidate] = 1
	return candidate
}

// already-compressed formats are stored as is
func methodFor(mime string) uint16 {
	switch strings.ToLower(mime) {
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		return zip.Store
	}
	return zip.Deflate
}
