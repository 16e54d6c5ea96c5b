package ios

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	plist "howett.net/plist"
)

// FormatName returns a readable name for one of the howett.net/plist format constants.
func FormatName(format int) string {
	switch format {
	case plist.XMLFormat:
		return "xml"
	case plist.BinaryFormat:
		return "binary"
	case plist.OpenStepFormat:
		return "openstep"
	case plist.GNUStepFormat:
		return "gnustep"
	default:
		return "invalid"
	}
}

// ReadPlistFile reads the file at path and decodes its plist content into v.
// It returns the format the file was encoded in. Errors from reading the file are
// returned unwrapped so callers can check them with errors.Is(err, fs.ErrNotExist).
func ReadPlistFile(path string, v interface{}) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return plist.InvalidFormat, err
	}
	format, err := plist.Unmarshal(content, v)
	if err != nil {
		return plist.InvalidFormat, fmt.Errorf("ReadPlistFile: could not parse plist content: %w", err)
	}
	log.WithFields(log.Fields{"path": path, "format": FormatName(format)}).Trace("decoded plist file")
	return format, nil
}

// ToPlistBytes converts data to a plist in the given format using the
// github.com/DHowett/go-plist library. XML output is tab indented like the plists
// macOS writes.
func ToPlistBytes(data interface{}, format int) ([]byte, error) {
	if format == plist.XMLFormat {
		return plist.MarshalIndent(data, format, "\t")
	}
	return plist.Marshal(data, format)
}

// StagedFile holds new content for a target file in a temporary file next to it.
// The target is only replaced when Commit is called.
type StagedFile struct {
	Target    string
	tmp       string
	committed bool
}

// StageFile writes content into a temporary file in the directory of target.
// The temporary file gets the permissions of target if target exists, 0644 otherwise.
func StageFile(target string, content []byte) (*StagedFile, error) {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("StageFile: could not create temp file for '%s': %w", target, err)
	}
	s := &StagedFile{Target: target, tmp: f.Name()}
	err = writeAndClose(f, content, mode)
	if err != nil {
		_ = os.Remove(s.tmp)
		return nil, fmt.Errorf("StageFile: could not write temp file for '%s': %w", target, err)
	}
	return s, nil
}

func writeAndClose(f *os.File, content []byte, mode fs.FileMode) error {
	_, err := f.Write(content)
	if err == nil {
		err = f.Chmod(mode)
	}
	if err == nil {
		err = f.Sync()
	}
	closeErr := f.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// Commit replaces the target file with the staged content.
func (s *StagedFile) Commit() error {
	if s.committed {
		return nil
	}
	err := os.Rename(s.tmp, s.Target)
	if err != nil {
		return fmt.Errorf("Commit: could not replace '%s': %w", s.Target, err)
	}
	s.committed = true
	return nil
}

// Discard removes the temporary file. It does nothing once the file was committed.
func (s *StagedFile) Discard() {
	if s.committed {
		return
	}
	err := os.Remove(s.tmp)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithFields(log.Fields{"path": s.tmp, "err": err}).Warn("failed removing temp file")
	}
}

// WriteFile stages content for path and commits it right away.
func WriteFile(path string, content []byte) error {
	s, err := StageFile(path, content)
	if err != nil {
		return err
	}
	defer s.Discard()
	return s.Commit()
}
