package backup

import (
	"time"

	plist "howett.net/plist"
)

// ManifestFileName is the name of the backup manifest.
const ManifestFileName = "Manifest.plist"

const (
	keyBackupKeyBag         = "BackupKeyBag"
	keyVersion              = "Version"
	keyDate                 = "Date"
	keySystemDomainsVersion = "SystemDomainsVersion"
	keyWasPasscodeSet       = "WasPasscodeSet"
	keyLockdown             = "Lockdown"
	keyManifestApplications = "Applications"
	keyIsEncrypted          = "IsEncrypted"
)

const (
	keyLockdownProductVersion = "ProductVersion"
	keyLockdownProductType    = "ProductType"
	keyLockdownBuildVersion   = "BuildVersion"
	keyLockdownUDID           = "UniqueDeviceID"
	keyLockdownSerialNumber   = "SerialNumber"
	keyLockdownDeviceName     = "DeviceName"
)

// ManifestDocument is the content of Manifest.plist. It is stored as a binary plist.
// BackupKeyBag is opaque and never looked at.
type ManifestDocument struct {
	BackupKeyBag         []byte
	Version              string
	Date                 time.Time
	SystemDomainsVersion string
	WasPasscodeSet       bool
	Lockdown             LockdownSection
	Applications         map[string]interface{}
	IsEncrypted          bool

	extra map[string]interface{}
}

// LockdownSection is the copy of lockdown values the device handed out when the backup was made.
// Next to the identity values it carries vendor domains like com.apple.mobile.wireless_lockdown
// or com.apple.MobileDeviceCrashCopy, those are passed through as they are. Use Domain to read them.
type LockdownSection struct {
	ProductVersion string
	ProductType    string
	BuildVersion   string
	UniqueDeviceID string
	SerialNumber   string
	DeviceName     string

	extra map[string]interface{}
}

// LoadManifest reads and decodes the Manifest.plist at path.
func LoadManifest(path string) (*ManifestDocument, error) {
	var manifest ManifestDocument
	err := load(path, &manifest)
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (manifest *ManifestDocument) Name() string {
	return ManifestFileName
}

// Encoding is always binary.
func (manifest *ManifestDocument) Encoding() int {
	return plist.BinaryFormat
}

// Extra returns the value of a top level key the model does not know about.
func (manifest *ManifestDocument) Extra(key string) (interface{}, bool) {
	v, ok := manifest.extra[key]
	return v, ok
}

func (manifest *ManifestDocument) decode(values map[string]interface{}) error {
	d := newDict(values)
	var decoded ManifestDocument
	decoded.BackupKeyBag = d.data(keyBackupKeyBag)
	decoded.Version = d.str(keyVersion)
	decoded.Date = d.date(keyDate)
	decoded.SystemDomainsVersion = d.str(keySystemDomainsVersion)
	decoded.WasPasscodeSet = d.boolean(keyWasPasscodeSet)
	d.nested(keyLockdown, decoded.Lockdown.decode)
	decoded.Applications = d.dictionary(keyManifestApplications)
	decoded.IsEncrypted = d.boolean(keyIsEncrypted)
	if d.err != nil {
		return d.err
	}
	decoded.extra = d.rest()
	*manifest = decoded
	return nil
}

func (manifest *ManifestDocument) encode() map[string]interface{} {
	return merge(manifest.extra, map[string]interface{}{
		keyBackupKeyBag:         orEmptyData(manifest.BackupKeyBag),
		keyVersion:              manifest.Version,
		keyDate:                 manifest.Date,
		keySystemDomainsVersion: manifest.SystemDomainsVersion,
		keyWasPasscodeSet:       manifest.WasPasscodeSet,
		keyLockdown:             manifest.Lockdown.encode(),
		keyManifestApplications: orEmptyDict(manifest.Applications),
		keyIsEncrypted:          manifest.IsEncrypted,
	})
}

// UnmarshalPlist implements plist.Unmarshaler.
func (manifest *ManifestDocument) UnmarshalPlist(unmarshal func(interface{}) error) error {
	var values map[string]interface{}
	err := unmarshal(&values)
	if err != nil {
		return err
	}
	return manifest.decode(values)
}

// MarshalPlist implements plist.Marshaler.
func (manifest *ManifestDocument) MarshalPlist() (interface{}, error) {
	return manifest.encode(), nil
}

// Domain returns one of the vendor dictionaries of the lockdown section,
// for example "com.apple.mobile.data_sync".
func (lockdown *LockdownSection) Domain(name string) (map[string]interface{}, bool) {
	v, ok := lockdown.extra[name].(map[string]interface{})
	return v, ok
}

func (lockdown *LockdownSection) decode(values map[string]interface{}) error {
	d := newDict(values)
	decoded := LockdownSection{
		ProductVersion: d.str(keyLockdownProductVersion),
		ProductType:    d.str(keyLockdownProductType),
		BuildVersion:   d.str(keyLockdownBuildVersion),
		UniqueDeviceID: d.str(keyLockdownUDID),
		SerialNumber:   d.str(keyLockdownSerialNumber),
		DeviceName:     d.str(keyLockdownDeviceName),
	}
	if d.err != nil {
		return d.err
	}
	decoded.extra = d.rest()
	*lockdown = decoded
	return nil
}

func (lockdown *LockdownSection) encode() map[string]interface{} {
	return merge(lockdown.extra, map[string]interface{}{
		keyLockdownProductVersion: lockdown.ProductVersion,
		keyLockdownProductType:    lockdown.ProductType,
		keyLockdownBuildVersion:   lockdown.BuildVersion,
		keyLockdownUDID:           lockdown.UniqueDeviceID,
		keyLockdownSerialNumber:   lockdown.SerialNumber,
		keyLockdownDeviceName:     lockdown.DeviceName,
	})
}
