package extractor_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"cellar/internal/extractor"
)

// writeRunnerTar writes a minimal runner tree tarball through w.
func writeRunnerTar(t *testing.T, w io.Writer) {
	t.Helper()

	tw := tar.NewWriter(w)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "wine-9.0/",
		Typeflag: tar.TypeDir,
		Mode:     0755,
	}))
	content := []byte("#!/bin/sh\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "wine-9.0/bin/wine",
		Typeflag: tar.TypeReg,
		Mode:     0755,
		Size:     int64(len(content)),
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
}

func writeZip(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "component.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("dxvk-2.3/x64/d3d11.dll")
	require.NoError(t, err)
	_, err = w.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

// Mirrors carry every compression Wine builds ship with; the extractor
// dispatches on magic bytes, so each format gets a real roundtrip.
func TestExtract_TarCompressionFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		compress func(t *testing.T, w io.Writer) io.WriteCloser
	}{
		{
			name:     "gzip",
			filename: "component.tar.gz",
			compress: func(_ *testing.T, w io.Writer) io.WriteCloser {
				return gzip.NewWriter(w)
			},
		},
		{
			name:     "xz",
			filename: "component.tar.xz",
			compress: func(t *testing.T, w io.Writer) io.WriteCloser {
				xw, err := xz.NewWriter(w)
				require.NoError(t, err)
				return xw
			},
		},
		{
			name:     "zstd",
			filename: "component.tar.zst",
			compress: func(t *testing.T, w io.Writer) io.WriteCloser {
				zw, err := zstd.NewWriter(w)
				require.NoError(t, err)
				return zw
			},
		},
		{
			name:     "plain",
			filename: "component.tar",
			compress: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if tt.compress != nil {
				cw := tt.compress(t, &buf)
				writeRunnerTar(t, cw)
				require.NoError(t, cw.Close())
			} else {
				writeRunnerTar(t, &buf)
			}

			src := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(src, buf.Bytes(), 0644))

			dst := t.TempDir()
			require.NoError(t, extractor.New().Extract(src, dst))

			data, err := os.ReadFile(filepath.Join(dst, "wine-9.0", "bin", "wine"))
			require.NoError(t, err)
			assert.Equal(t, "#!/bin/sh\n", string(data))
		})
	}
}

// The stdlib has no bzip2 writer, so the bz2 case uses a pregenerated
// archive with the same wine-9.0/bin/wine layout as writeRunnerTar.
const runnerTarBz2 = "QlpoOTFBWSZTWYHulH8AAJz/gMqQAQBoA/+gAACAgHJhHoAICCAAdQlQQNDQDQHq" +
	"AAkpQeiepiY1MCekHmqN6tui46JAdnpIRGPwqIBZ5cQKxCHAcclj9WaEmC+iDAVk" +
	"OGAo2Roo1iM7GovFKIEZMOEHBMkXqf4ZURQew8Y5tKwSD+LuSKcKEhA90o/g"

func TestExtract_TarBz2(t *testing.T) {
	t.Parallel()

	blob, err := base64.StdEncoding.DecodeString(runnerTarBz2)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "component.tar.bz2")
	require.NoError(t, os.WriteFile(src, blob, 0644))

	dst := t.TempDir()
	require.NoError(t, extractor.New().Extract(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "wine-9.0", "bin", "wine"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(data))
}

func TestExtract_Zip(t *testing.T) {
	t.Parallel()

	src := writeZip(t, t.TempDir())
	dst := t.TempDir()

	require.NoError(t, extractor.New().Extract(src, dst))

	_, err := os.Stat(filepath.Join(dst, "dxvk-2.3", "x64", "d3d11.dll"))
	assert.NoError(t, err)
}

func TestExtract_ZipSymlink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "component.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("dxvk-2.3/x64/d3d11.dll")
	require.NoError(t, err)
	_, err = w.Write([]byte("MZ"))
	require.NoError(t, err)

	hdr := &zip.FileHeader{Name: "dxvk-2.3/x64/d3d10.dll"}
	hdr.SetMode(os.ModeSymlink | 0777)
	lw, err := zw.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = lw.Write([]byte("d3d11.dll"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dst := t.TempDir()
	require.NoError(t, extractor.New().Extract(path, dst))

	link, err := os.Readlink(filepath.Join(dst, "dxvk-2.3", "x64", "d3d10.dll"))
	require.NoError(t, err)
	assert.Equal(t, "d3d11.dll", link)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "component.rar")
	require.NoError(t, os.WriteFile(src, []byte("rar"), 0644))

	err := extractor.New().Extract(src, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "evil.tar")
	f, err := os.Create(path)
	require.NoError(t, err)

	tw := tar.NewWriter(f)
	content := []byte("pwned")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "../escape",
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     int64(len(content)),
	}))
	_, err = tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, f.Close())

	err = extractor.New().Extract(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path in archive")
}
