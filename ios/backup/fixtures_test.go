package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpaulus/go-ios-backup/ios"
	"github.com/stretchr/testify/require"
	plist "howett.net/plist"
)

var backupDate = time.Date(2023, 5, 4, 3, 2, 1, 0, time.UTC)

func sampleInfo() map[string]interface{} {
	return map[string]interface{}{
		"Applications": map[string]interface{}{
			"com.example.notes": map[string]interface{}{
				"iTunesMetadata":  []byte{0x62, 0x70, 0x6c, 0x69},
				"PlaceholderIcon": []byte{0x89, 0x50, 0x4e, 0x47},
			},
		},
		"Build Version":          "17A577",
		"Device Name":            "Test iPhone",
		"Display Name":           "Test iPhone",
		"GUID":                   "6C2F3C7B0E8A4F1D9B2A1E3C4D5F6A7B",
		"ICCID":                  "89490200001234567890",
		"IMEI":                   "353000000000001",
		"Installed Applications": []interface{}{"com.example.notes", "com.example.maps"},
		"Last Backup Date":       backupDate,
		"MEID":                   "35300000000000",
		"Phone Number":           "+1 (555) 010-0100",
		"Product Name":           "iPhone 11",
		"Product Type":           "iPhone12,1",
		"Product Version":        "13.0",
		"Serial Number":          "F17AAAAAAAAA",
		"Target Identifier":      "AAA",
		"Target Type":            "Device",
		"Unique Identifier":      "AAA",
		"iTunes Files": map[string]interface{}{
			"IC-Info.sidv": []byte{0x01, 0x02, 0x03},
		},
		"iTunes Settings": map[string]interface{}{
			"LibraryApplications": []interface{}{"com.example.notes"},
			"SyncCount":           uint64(3),
		},
		"iTunes Version": "12.9.5.5",
		"Offset":         int64(-42),
		"Ratio":          0.5,
	}
}

func sampleLockdown() map[string]interface{} {
	lockdown := map[string]interface{}{
		"ProductVersion": "13.0",
		"ProductType":    "iPhone12,1",
		"BuildVersion":   "17A577",
		"UniqueDeviceID": "AAA",
		"SerialNumber":   "F17AAAAAAAAA",
		"DeviceName":     "Test iPhone",
	}
	lockdown["com.apple.MobileDeviceCrashCopy"] = map[string]interface{}{"ShouldSubmit": true}
	lockdown["com.apple.TerminalFlashr"] = map[string]interface{}{}
	lockdown["com.apple.mobile.data_sync"] = map[string]interface{}{
		"Notes": map[string]interface{}{"AccountNames": []interface{}{"iCloud"}},
	}
	lockdown["com.apple.Accessibility"] = map[string]interface{}{
		"ClosedCaptioningEnabledByiTunes":     false,
		"SpeakAutoCorrectionsEnabledByiTunes": uint64(0),
	}
	lockdown["com.apple.mobile.iTunes.accessories"] = map[string]interface{}{}
	lockdown["com.apple.mobile.wireless_lockdown"] = map[string]interface{}{"EnableWifiConnections": true}
	return lockdown
}

func sampleManifest() map[string]interface{} {
	return map[string]interface{}{
		"BackupKeyBag":         []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01},
		"Version":              "10.0",
		"Date":                 backupDate,
		"SystemDomainsVersion": "24.0",
		"WasPasscodeSet":       true,
		"Lockdown":             sampleLockdown(),
		"Applications": map[string]interface{}{
			"com.example.notes": map[string]interface{}{
				"CFBundleIdentifier":    "com.example.notes",
				"ContainerContentClass": "Data/Application",
			},
		},
		"IsEncrypted":     false,
		"ManifestKeyHint": "kept as is",
	}
}

func writePlist(t *testing.T, path string, v interface{}, format int) {
	t.Helper()
	content, err := ios.ToPlistBytes(v, format)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// writeBackup creates a backup directory holding the given documents.
// A nil document is not written.
func writeBackup(t *testing.T, info, manifest map[string]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	if info != nil {
		writePlist(t, filepath.Join(dir, InfoFileName), info, plist.XMLFormat)
	}
	if manifest != nil {
		writePlist(t, filepath.Join(dir, ManifestFileName), manifest, plist.BinaryFormat)
	}
	return dir
}

// readRaw decodes a plist file without the document model, the way any other tool would see it.
func readRaw(t *testing.T, path string) (map[string]interface{}, int) {
	t.Helper()
	var values map[string]interface{}
	format, err := ios.ReadPlistFile(path, &values)
	require.NoError(t, err)
	return values, format
}

func readBytes(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return content
}

func strPtr(s string) *string {
	return &s
}
