package backup

import (
	"path/filepath"

	"github.com/danielpaulus/go-ios-backup/ios"
	log "github.com/sirupsen/logrus"
)

// State is the step a Patch run has reached.
type State int

const (
	Start State = iota
	Loaded
	Patched
	Written
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Loaded:
		return "loaded"
	case Patched:
		return "patched"
	case Written:
		return "written"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes how far a Patch run got.
// Written lists the documents that were replaced on disk, on success that is both.
type Result struct {
	State        State
	InfoPath     string
	ManifestPath string
	Changes      []Change
	Written      []string
}

// Patch rewrites Info.plist and Manifest.plist in the backup directory dir so that they
// describe the device identity. Both documents are loaded before anything is written.
// On error the returned Result is in state Failed and the error is an *Error.
func Patch(dir string, identity DeviceIdentity) (Result, error) {
	res := Result{
		State:        Start,
		InfoPath:     filepath.Join(dir, InfoFileName),
		ManifestPath: filepath.Join(dir, ManifestFileName),
	}
	logger := log.WithField("backup", dir)

	info, err := LoadInfo(res.InfoPath)
	if err != nil {
		return res.fail(logger, err)
	}
	manifest, err := LoadManifest(res.ManifestPath)
	if err != nil {
		return res.fail(logger, err)
	}
	checkFormat(logger, manifest)
	res.advance(logger, Loaded)

	res.Changes = Apply(identity, info, manifest)
	for _, c := range res.Changes {
		logger.WithFields(log.Fields{"document": c.Document, "key": c.Key, "from": c.From, "to": c.To}).Debug("override")
		if c.Key == keyIMEI && identity.IMEI == nil {
			logger.WithField("imei", c.From).Warn("no IMEI given, removing the IMEI from Info.plist")
		}
	}
	res.advance(logger, Patched)

	res.Written, err = saveAll([]target{
		{doc: info, path: res.InfoPath},
		{doc: manifest, path: res.ManifestPath},
	})
	if err != nil {
		if len(res.Written) > 0 {
			logger.WithField("written", res.Written).Error("backup is left half patched")
		}
		return res.fail(logger, err)
	}
	res.advance(logger, Written)
	return res, nil
}

func (res *Result) advance(logger *log.Entry, s State) {
	res.State = s
	logger.WithField("state", s).Debug("patch")
}

func (res Result) fail(logger *log.Entry, err error) (Result, error) {
	logger.WithFields(log.Fields{"state": res.State, "err": err}).Debug("patch failed")
	res.State = Failed
	return res, err
}

func checkFormat(logger *log.Entry, manifest *ManifestDocument) {
	known, err := IsKnownFormat(manifest.Version)
	if err != nil {
		logger.WithField("err", err).Warn("could not check the backup format version")
		return
	}
	if !known {
		logger.WithField("version", manifest.Version).Warn("unknown backup format version, patching anyway")
	}
}

type target struct {
	doc  Document
	path string
}

// saveAll encodes and stages every document before replacing any of them, so an
// encoding or disk error leaves all targets untouched. Only a failing rename
// can leave some documents written and others not, those written are returned.
func saveAll(targets []target) ([]string, error) {
	staged := make([]*ios.StagedFile, 0, len(targets))
	defer func() {
		for _, s := range staged {
			s.Discard()
		}
	}()

	for _, t := range targets {
		content, err := Encode(t.doc)
		if err != nil {
			return nil, &Error{Kind: WriteError, Document: t.doc.Name(), Path: t.path, Err: err}
		}
		s, err := ios.StageFile(t.path, content)
		if err != nil {
			return nil, &Error{Kind: WriteError, Document: t.doc.Name(), Path: t.path, Err: err}
		}
		staged = append(staged, s)
	}

	var written []string
	for i, s := range staged {
		err := s.Commit()
		if err != nil {
			return written, &Error{Kind: WriteError, Document: targets[i].doc.Name(), Path: targets[i].path, Err: err}
		}
		written = append(written, targets[i].doc.Name())
		log.WithFields(log.Fields{"document": targets[i].doc.Name(), "path": s.Target}).Debug("wrote document")
	}
	return written, nil
}
