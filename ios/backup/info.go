package backup

import (
	"time"

	plist "howett.net/plist"
)

// InfoFileName is the name of the backup's top level device description.
const InfoFileName = "Info.plist"

const (
	keyInfoApplications = "Applications"
	keyBuildVersion     = "Build Version"
	keyDeviceName       = "Device Name"
	keyDisplayName      = "Display Name"
	keyGUID             = "GUID"
	keyIMEI             = "IMEI"
	keyInstalledApps    = "Installed Applications"
	keyLastBackupDate   = "Last Backup Date"
	keyProductName      = "Product Name"
	keyProductType      = "Product Type"
	keyProductVersion   = "Product Version"
	keySerialNumber     = "Serial Number"
	keyTargetIdentifier = "Target Identifier"
	keyTargetType       = "Target Type"
	keyUniqueIdentifier = "Unique Identifier"
	keyITunesFiles      = "iTunes Files"
	keyITunesSettings   = "iTunes Settings"
	keyITunesVersion    = "iTunes Version"
)

// InfoDocument is the content of Info.plist. It is stored as an XML plist.
// Keys that are not modelled here are kept as they were decoded and written back unchanged.
// TargetIdentifier and UniqueIdentifier both hold the UDID.
type InfoDocument struct {
	Applications          map[string]interface{}
	BuildVersion          string
	DeviceName            string
	DisplayName           string
	GUID                  string
	IMEI                  *string
	InstalledApplications []interface{}
	LastBackupDate        time.Time
	ProductName           string
	ProductType           string
	ProductVersion        string
	SerialNumber          string
	TargetIdentifier      string
	TargetType            string
	UniqueIdentifier      string
	ITunesFiles           map[string]interface{}
	ITunesSettings        map[string]interface{}
	ITunesVersion         string

	extra map[string]interface{}
}

// LoadInfo reads and decodes the Info.plist at path.
func LoadInfo(path string) (*InfoDocument, error) {
	var info InfoDocument
	err := load(path, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (info *InfoDocument) Name() string {
	return InfoFileName
}

// Encoding is always XML, Info.plist stays human readable.
func (info *InfoDocument) Encoding() int {
	return plist.XMLFormat
}

// Extra returns the value of a key the model does not know about.
func (info *InfoDocument) Extra(key string) (interface{}, bool) {
	v, ok := info.extra[key]
	return v, ok
}

func (info *InfoDocument) decode(values map[string]interface{}) error {
	d := newDict(values)
	decoded := InfoDocument{
		Applications:          d.dictionary(keyInfoApplications),
		BuildVersion:          d.str(keyBuildVersion),
		DeviceName:            d.str(keyDeviceName),
		DisplayName:           d.str(keyDisplayName),
		GUID:                  d.str(keyGUID),
		IMEI:                  d.optionalString(keyIMEI),
		InstalledApplications: d.array(keyInstalledApps),
		LastBackupDate:        d.date(keyLastBackupDate),
		ProductName:           d.str(keyProductName),
		ProductType:           d.str(keyProductType),
		ProductVersion:        d.str(keyProductVersion),
		SerialNumber:          d.str(keySerialNumber),
		TargetIdentifier:      d.str(keyTargetIdentifier),
		TargetType:            d.str(keyTargetType),
		UniqueIdentifier:      d.str(keyUniqueIdentifier),
		ITunesFiles:           d.dictionary(keyITunesFiles),
		ITunesSettings:        d.dictionary(keyITunesSettings),
		ITunesVersion:         d.str(keyITunesVersion),
	}
	if d.err != nil {
		return d.err
	}
	decoded.extra = d.rest()
	*info = decoded
	return nil
}

func (info *InfoDocument) encode() map[string]interface{} {
	known := map[string]interface{}{
		keyInfoApplications: orEmptyDict(info.Applications),
		keyBuildVersion:     info.BuildVersion,
		keyDeviceName:       info.DeviceName,
		keyDisplayName:      info.DisplayName,
		keyGUID:             info.GUID,
		keyInstalledApps:    orEmptyArray(info.InstalledApplications),
		keyLastBackupDate:   info.LastBackupDate,
		keyProductName:      info.ProductName,
		keyProductType:      info.ProductType,
		keyProductVersion:   info.ProductVersion,
		keySerialNumber:     info.SerialNumber,
		keyTargetIdentifier: info.TargetIdentifier,
		keyTargetType:       info.TargetType,
		keyUniqueIdentifier: info.UniqueIdentifier,
		keyITunesFiles:      orEmptyDict(info.ITunesFiles),
		keyITunesSettings:   orEmptyDict(info.ITunesSettings),
		keyITunesVersion:    info.ITunesVersion,
	}
	if info.IMEI != nil {
		known[keyIMEI] = *info.IMEI
	}
	return merge(info.extra, known)
}

// UnmarshalPlist implements plist.Unmarshaler.
func (info *InfoDocument) UnmarshalPlist(unmarshal func(interface{}) error) error {
	var values map[string]interface{}
	err := unmarshal(&values)
	if err != nil {
		return err
	}
	return info.decode(values)
}

// MarshalPlist implements plist.Marshaler.
func (info *InfoDocument) MarshalPlist() (interface{}, error) {
	return info.encode(), nil
}
