package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ReportFunc receives extraction progress: tars finished so far, the
// total count, and the name of the tar just extracted.
type ReportFunc func(done, total int, name string)

// Unpack finds every .tar file under srcDir and extracts it into
// destDir, mirroring the source directory layout. report may be nil.
func Unpack(srcDir, destDir string, report ReportFunc) error {
	srcAbs, err := filepath.Abs(srcDir)
	if err != nil {
		return fmt.Errorf("archive: resolving %s: %w", srcDir, err)
	}
	if _, err := os.Stat(srcAbs); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	tarFiles, err := doublestar.FilepathGlob(filepath.Join(srcAbs, "**", "*.tar"))
	if err != nil {
		return fmt.Errorf("archive: globbing tars: %w", err)
	}
	if len(tarFiles) == 0 {
		return fmt.Errorf("archive: no .tar files found under %s", srcDir)
	}

	parent := filepath.Dir(srcAbs)
	for i, tarPath := range tarFiles {
		rel, err := filepath.Rel(parent, filepath.Dir(tarPath))
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		extractDir := filepath.Join(destDir, rel)
		if err := extractTar(tarPath, extractDir); err != nil {
			return err
		}
		if report != nil {
			report(i+1, len(tarFiles), filepath.Base(tarPath))
		}
	}
	return nil
}

func extractTar(tarPath, destDir string) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("archive: reading %s: %w", tarPath, err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("archive: %w", err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return fmt.Errorf("archive: %w", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("archive: extracting %s: %w", hdr.Name, err)
			}
			out.Close()
		default:
			// Symlinks and special files are not expected in these archives.
		}
	}
}

// safeJoin joins name under dir, rejecting entries that would escape it.
// Archives built with `tar -C dir -cf out .` start with a `./` entry
// that joins to the destination itself; that is the one non-prefixed
// target that is safe.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target == filepath.Clean(dir) {
		return target, nil
	}
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive: entry %q escapes extraction directory", name)
	}
	return target, nil
}
