package infrastructure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// ScanOutputs lists files in dir produced by the fetch tagged with token.
// Other fetches may be writing to dir concurrently, so entries that vanish
// between listing and stat are skipped. Sizes are read at scan time.
func ScanOutputs(dir string, token domain.OutputToken, container string) ([]domain.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindFilesystem, "scan output", fmt.Errorf("failed to read output directory: %w", err))
	}

	var files []domain.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !token.Matches(entry.Name(), container) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, domain.NewError(domain.ErrKindFilesystem, "scan output", err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		files = append(files, domain.FileInfo{
			Filename: entry.Name(),
			Filepath: path,
			Filesize: info.Size(),
			SizeStr:  domain.SizeLabel(info.Size()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}
