package store

import "path/filepath"

// Locations decides where report files are written
type Locations interface {
	ReportPaths(fileName string) []string
}

// DirLocations writes to a primary directory and, when set, a mirror
// directory such as a synced folder
type DirLocations struct {
	Primary string
	Mirror  string
}

// ReportPaths returns one path per configured directory, primary first
func (l DirLocations) ReportPaths(fileName string) []string {
	primary := l.Primary
	if primary == "" {
		primary = "."
	}
	paths := []string{filepath.Join(primary, fileName)}
	if l.Mirror != "" && filepath.Clean(l.Mirror) != filepath.Clean(primary) {
		paths = append(paths, filepath.Join(l.Mirror, fileName))
	}
	return paths
}
