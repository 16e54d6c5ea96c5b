package backup

import (
	"fmt"
	"strings"
)

// DeviceIdentity is the device a backup should look like it was taken from.
// IMEI is nil for devices without a cellular modem.
type DeviceIdentity struct {
	BuildVersion string
	ProductType  string
	SerialNumber string
	UDID         string
	IMEI         *string
}

// Validate checks that every required value is set. It does not check the values
// make sense for a real device.
func (identity DeviceIdentity) Validate() error {
	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{"build version", identity.BuildVersion},
		{"product type", identity.ProductType},
		{"serial number", identity.SerialNumber},
		{"udid", identity.UDID},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("device identity is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Change records one field Apply modified. An absent value is the empty string.
type Change struct {
	Document string
	Key      string
	From     string
	To       string
}

// override puts one identity value into one document field.
type override struct {
	document string
	key      string
	value    func(DeviceIdentity) string
	field    func(*InfoDocument, *ManifestDocument) *string
}

// overrides is the only place that decides which identity value ends up where.
// Info.plist and the Lockdown section of Manifest.plist duplicate the identity
// under different keys and have to agree after a patch.
var overrides = []override{
	{InfoFileName, keyBuildVersion, buildVersionOf, func(i *InfoDocument, _ *ManifestDocument) *string { return &i.BuildVersion }},
	{InfoFileName, keyProductType, productTypeOf, func(i *InfoDocument, _ *ManifestDocument) *string { return &i.ProductType }},
	{InfoFileName, keySerialNumber, serialNumberOf, func(i *InfoDocument, _ *ManifestDocument) *string { return &i.SerialNumber }},
	{InfoFileName, keyTargetIdentifier, udidOf, func(i *InfoDocument, _ *ManifestDocument) *string { return &i.TargetIdentifier }},
	{InfoFileName, keyUniqueIdentifier, udidOf, func(i *InfoDocument, _ *ManifestDocument) *string { return &i.UniqueIdentifier }},
	{ManifestFileName, keyLockdown + "." + keyLockdownBuildVersion, buildVersionOf, func(_ *InfoDocument, m *ManifestDocument) *string { return &m.Lockdown.BuildVersion }},
	{ManifestFileName, keyLockdown + "." + keyLockdownProductType, productTypeOf, func(_ *InfoDocument, m *ManifestDocument) *string { return &m.Lockdown.ProductType }},
	{ManifestFileName, keyLockdown + "." + keyLockdownSerialNumber, serialNumberOf, func(_ *InfoDocument, m *ManifestDocument) *string { return &m.Lockdown.SerialNumber }},
	{ManifestFileName, keyLockdown + "." + keyLockdownUDID, udidOf, func(_ *InfoDocument, m *ManifestDocument) *string { return &m.Lockdown.UniqueDeviceID }},
}

func buildVersionOf(identity DeviceIdentity) string { return identity.BuildVersion }
func productTypeOf(identity DeviceIdentity) string { return identity.ProductType }
func serialNumberOf(identity DeviceIdentity) string { return identity.SerialNumber }
func udidOf(identity DeviceIdentity) string { return identity.UDID }

// Apply writes identity into both documents and returns what actually changed.
// The IMEI in Info.plist is always replaced, a nil identity.IMEI removes it.
func Apply(identity DeviceIdentity, info *InfoDocument, manifest *ManifestDocument) []Change {
	var changes []Change
	for _, o := range overrides {
		target := o.field(info, manifest)
		value := o.value(identity)
		if *target != value {
			changes = append(changes, Change{Document: o.document, Key: o.key, From: *target, To: value})
		}
		*target = value
	}

	from, to := deref(info.IMEI), deref(identity.IMEI)
	if from != to || (info.IMEI == nil) != (identity.IMEI == nil) {
		changes = append(changes, Change{Document: InfoFileName, Key: keyIMEI, From: from, To: to})
	}
	info.IMEI = nil
	if identity.IMEI != nil {
		imei := *identity.IMEI
		info.IMEI = &imei
	}
	return changes
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
