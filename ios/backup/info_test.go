package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	plist "howett.net/plist"
)

func TestLoadInfo(t *testing.T) {
	dir := writeBackup(t, sampleInfo(), nil)

	info, err := LoadInfo(filepath.Join(dir, InfoFileName))
	require.NoError(t, err)

	assert.Equal(t, "17A577", info.BuildVersion)
	assert.Equal(t, "Test iPhone", info.DeviceName)
	assert.Equal(t, "6C2F3C7B0E8A4F1D9B2A1E3C4D5F6A7B", info.GUID)
	if assert.NotNil(t, info.IMEI) {
		assert.Equal(t, "353000000000001", *info.IMEI)
	}
	assert.Equal(t, []interface{}{"com.example.notes", "com.example.maps"}, info.InstalledApplications)
	assert.True(t, backupDate.Equal(info.LastBackupDate))
	assert.Equal(t, "iPhone12,1", info.ProductType)
	assert.Equal(t, "F17AAAAAAAAA", info.SerialNumber)
	assert.Equal(t, "AAA", info.TargetIdentifier)
	assert.Equal(t, "AAA", info.UniqueIdentifier)
	assert.Equal(t, "Device", info.TargetType)
	assert.Equal(t, "12.9.5.5", info.ITunesVersion)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, info.ITunesFiles["IC-Info.sidv"])
	assert.Contains(t, info.Applications, "com.example.notes")

	iccid, ok := info.Extra("ICCID")
	assert.True(t, ok)
	assert.Equal(t, "89490200001234567890", iccid)
	_, ok = info.Extra("Build Version")
	assert.False(t, ok, "known keys must not end up in the extra keys")

	assert.Equal(t, plist.XMLFormat, info.Encoding())
	assert.Equal(t, InfoFileName, info.Name())
}

func TestLoadInfoWithoutIMEI(t *testing.T) {
	values := sampleInfo()
	delete(values, "IMEI")
	dir := writeBackup(t, values, nil)

	info, err := LoadInfo(filepath.Join(dir, InfoFileName))
	require.NoError(t, err)
	assert.Nil(t, info.IMEI)
}

func TestLoadInfoErrors(t *testing.T) {
	testCases := map[string]struct {
		modify func(map[string]interface{})
		raw    []byte
		kind   error
	}{
		"date is a string": {
			modify: func(m map[string]interface{}) { m["Last Backup Date"] = "yesterday" },
			kind:   ErrParse,
		},
		"udid is missing": {
			modify: func(m map[string]interface{}) { delete(m, "Unique Identifier") },
			kind:   ErrParse,
		},
		"imei is a number": {
			modify: func(m map[string]interface{}) { m["IMEI"] = uint64(353000000000001) },
			kind:   ErrParse,
		},
		"applications is an array": {
			modify: func(m map[string]interface{}) { m["Applications"] = []interface{}{} },
			kind:   ErrParse,
		},
		"not a plist": {
			raw:  []byte("<plist version=\"1.0\"><dict><key>Build"),
			kind: ErrParse,
		},
		"top level is an array": {
			raw:  []byte(`<?xml version="1.0" encoding="UTF-8"?><plist version="1.0"><array><string>a</string></array></plist>`),
			kind: ErrParse,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), InfoFileName)
			if tc.raw != nil {
				require.NoError(t, os.WriteFile(path, tc.raw, 0o644))
			} else {
				values := sampleInfo()
				tc.modify(values)
				writePlist(t, path, values, plist.XMLFormat)
			}

			_, err := LoadInfo(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "unexpected error %v", err)
			var berr *Error
			if assert.True(t, errors.As(err, &berr)) {
				assert.Equal(t, InfoFileName, berr.Document)
				assert.Equal(t, path, berr.Path)
			}
		})
	}
}

func TestLoadInfoMissing(t *testing.T) {
	_, err := LoadInfo(filepath.Join(t.TempDir(), InfoFileName))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveInfoKeepsEveryValue(t *testing.T) {
	dir := writeBackup(t, sampleInfo(), nil)
	path := filepath.Join(dir, InfoFileName)
	before, _ := readRaw(t, path)

	info, err := LoadInfo(path)
	require.NoError(t, err)
	require.NoError(t, Save(info, path))

	after, format := readRaw(t, path)
	assert.Equal(t, plist.XMLFormat, format)
	assert.Equal(t, before, after)
}

func TestSaveInfoWithoutIMEI(t *testing.T) {
	dir := writeBackup(t, sampleInfo(), nil)
	path := filepath.Join(dir, InfoFileName)
	info, err := LoadInfo(path)
	require.NoError(t, err)

	info.IMEI = nil
	require.NoError(t, Save(info, path))

	after, _ := readRaw(t, path)
	assert.NotContains(t, after, "IMEI")
}

func TestInfoWorksWithPlistPackage(t *testing.T) {
	dir := writeBackup(t, sampleInfo(), nil)
	content := readBytes(t, filepath.Join(dir, InfoFileName))

	var info InfoDocument
	_, err := plist.Unmarshal(content, &info)
	require.NoError(t, err)
	assert.Equal(t, "AAA", info.UniqueIdentifier)

	encoded, err := plist.Marshal(&info, plist.BinaryFormat)
	require.NoError(t, err)
	var values map[string]interface{}
	_, err = plist.Unmarshal(encoded, &values)
	require.NoError(t, err)
	assert.Equal(t, "89490200001234567890", values["ICCID"])
	assert.Equal(t, "AAA", values["Target Identifier"])
}
