package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "sdlog"

// MachineID returns an ID identifying this machine, derived from the
// OS machine ID so the raw value isn't published. It falls back to the
// host name.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id[:12]
	}
	glog.V(1).Infof("machine id: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
