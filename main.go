package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpaulus/go-ios-backup/ios/backup"
	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"
)

//JSONdisabled enables or disables output in JSON format
var JSONdisabled = false

func main() {
	Main()
}

const version = "local-build"

func usage() string {
	return fmt.Sprintf(`backuppatch %s

Usage:
  backuppatch --build-version=<version> --product-type=<type> --serial-number=<serial> --udid=<udid> [--imei=<imei>] [options] <backup-directory>
  backuppatch -h | --help
  backuppatch --version | version [options]

Options:
  -v --verbose                 Enable Debug Logging.
  -t --trace                   Enable Trace Logging (dump every decoded plist).
  --nojson                     Disable JSON output (default).
  -h --help                    Show this screen.
  --build-version=<version>    Build version to inject, for example 18B92.
  --product-type=<type>        Product type to inject, for example iPhone14,5.
  --serial-number=<serial>     Serial number to inject.
  --udid=<udid>                UDID to inject.
  --imei=<imei>                IMEI to inject.

The command works as following:
	Info.plist and Manifest.plist inside <backup-directory> are rewritten so the backup looks like
	it was taken from the given device. Info.plist stays an XML plist, Manifest.plist stays a binary plist.
	Both files are read before anything is written. If --imei is left out, the IMEI is removed from Info.plist.
	Specify -v for debug logging, it lists every value that was changed.
  `, version)
}

// Main Exports main for testing
func Main() {
	arguments, err := docopt.ParseDoc(usage())
	if err != nil {
		log.Fatal(err)
	}
	disableJSON, _ := arguments.Bool("--nojson")
	if disableJSON {
		JSONdisabled = true
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}

	traceLevelEnabled, _ := arguments.Bool("--trace")
	if traceLevelEnabled {
		log.Info("Set Trace mode")
		log.SetLevel(log.TraceLevel)
	} else {
		verboseLoggingEnabledLong, _ := arguments.Bool("--verbose")
		if verboseLoggingEnabledLong {
			log.Info("Set Debug mode")
			log.SetLevel(log.DebugLevel)
		}
	}
	log.Debug(arguments)

	shouldPrintVersionNoDashes, _ := arguments.Bool("version")
	shouldPrintVersion, _ := arguments.Bool("--version")
	if shouldPrintVersionNoDashes || shouldPrintVersion {
		printVersion()
		return
	}

	identity, dir, err := patchArguments(arguments)
	if err != nil {
		failWithError("invalid arguments", err)
	}
	result, err := backup.Patch(dir, identity)
	if err != nil {
		log.WithFields(log.Fields{"err": err, "state": result.State, "written": result.Written}).Error("failed patching backup")
		os.Exit(1)
	}
	printResult(result)
}

// patchArguments reads the device identity and the backup directory from the parsed command line.
func patchArguments(arguments docopt.Opts) (backup.DeviceIdentity, string, error) {
	var identity backup.DeviceIdentity
	for _, v := range []struct {
		flag   string
		target *string
	}{
		{"--build-version", &identity.BuildVersion},
		{"--product-type", &identity.ProductType},
		{"--serial-number", &identity.SerialNumber},
		{"--udid", &identity.UDID},
	} {
		value, err := arguments.String(v.flag)
		if err != nil {
			return backup.DeviceIdentity{}, "", fmt.Errorf("missing %s: %w", v.flag, err)
		}
		*v.target = value
	}
	if imei, ok := arguments["--imei"].(string); ok {
		identity.IMEI = &imei
	}
	err := identity.Validate()
	if err != nil {
		return backup.DeviceIdentity{}, "", err
	}
	dir, err := arguments.String("<backup-directory>")
	if err != nil || dir == "" {
		return backup.DeviceIdentity{}, "", fmt.Errorf("missing <backup-directory>")
	}
	return identity, dir, nil
}

func printResult(result backup.Result) {
	if JSONdisabled {
		fmt.Println(result.InfoPath)
		fmt.Println(result.ManifestPath)
		return
	}
	fmt.Println(convertToJSONString(map[string]interface{}{
		"info":     result.InfoPath,
		"manifest": result.ManifestPath,
		"changes":  len(result.Changes),
	}))
}

func printVersion() {
	versionMap := map[string]interface{}{
		"version": version,
	}
	if JSONdisabled {
		fmt.Println(version)
	} else {
		fmt.Println(convertToJSONString(versionMap))
	}
}

func convertToJSONString(data interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		fmt.Println(err)
		return ""
	}
	return string(b)
}

func failWithError(msg string, err error) {
	log.WithFields(log.Fields{"err": err}).Fatalf(msg)
}
