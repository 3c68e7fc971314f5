package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// binaryExtensions is the known-binary list checked before sniffing.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".webp": true, ".ico": true, ".svgz": true, ".pdf": true, ".zip": true,
	".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".zst": true,
	".7z": true, ".rar": true, ".exe": true, ".dll": true, ".so": true,
	".dylib": true, ".a": true, ".o": true, ".class": true, ".jar": true,
	".war": true, ".wasm": true, ".pyc": true, ".mp3": true, ".mp4": true,
	".mov": true, ".avi": true, ".mkv": true, ".flac": true, ".ogg": true,
	".wav": true, ".ttf": true, ".otf": true, ".woff": true, ".woff2": true,
	".eot": true, ".db": true, ".sqlite": true, ".bin": true,
}

const sniffLen = 8 * 1024

// IsBinaryFile detects binaries by extension or by a null byte within the
// first 8 KiB.
func IsBinaryFile(path string) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// IsBinaryContent reports whether data contains a null byte in its first
// 8 KiB. Used for command output checks on already-buffered data.
func IsBinaryContent(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
