package backup

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/danielpaulus/go-ios-backup/ios"
	log "github.com/sirupsen/logrus"
	plist "howett.net/plist"
)

// Document is one of the two backup files this package rewrites.
// The encoding a Document is written in is fixed by its type.
type Document interface {
	plist.Marshaler
	// Name is the file name of the document inside the backup directory.
	Name() string
	// Encoding is the howett.net/plist format the document is written in.
	Encoding() int
}

type decodable interface {
	Document
	decode(values map[string]interface{}) error
}

func load(path string, doc decodable) error {
	var values map[string]interface{}
	format, err := ios.ReadPlistFile(path, &values)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Kind: NotFound, Document: doc.Name(), Path: path, Err: err}
		}
		return &Error{Kind: ParseError, Document: doc.Name(), Path: path, Err: err}
	}
	err = doc.decode(values)
	if err != nil {
		return &Error{Kind: ParseError, Document: doc.Name(), Path: path, Err: err}
	}
	if format != doc.Encoding() {
		log.WithFields(log.Fields{
			"document": doc.Name(),
			"found":    ios.FormatName(format),
			"writing":  ios.FormatName(doc.Encoding()),
		}).Warn("document is not stored in its usual encoding, it will be rewritten")
	}
	log.WithFields(log.Fields{"document": doc.Name(), "path": path}).Debug("loaded document")
	return nil
}

// Encode serializes doc in its fixed encoding.
func Encode(doc Document) ([]byte, error) {
	v, err := doc.MarshalPlist()
	if err != nil {
		return nil, err
	}
	content, err := ios.ToPlistBytes(v, doc.Encoding())
	if err != nil {
		return nil, fmt.Errorf("Encode: could not encode %s as %s plist: %w", doc.Name(), ios.FormatName(doc.Encoding()), err)
	}
	return content, nil
}

// Save encodes doc and replaces the file at path with the result.
func Save(doc Document, path string) error {
	content, err := Encode(doc)
	if err != nil {
		return &Error{Kind: WriteError, Document: doc.Name(), Path: path, Err: err}
	}
	err = ios.WriteFile(path, content)
	if err != nil {
		return &Error{Kind: WriteError, Document: doc.Name(), Path: path, Err: err}
	}
	return nil
}
