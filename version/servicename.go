package version

import "os"

// EnvServiceName names the variable holding the service name reported in traces.
const EnvServiceName = "FASTREFLECT_SERVICE_NAME"

const defaultServiceName = "fastreflect"

// ServiceName returns the service name reported in traces
func ServiceName() string {
	name := os.Getenv(EnvServiceName)
	if name == "" {
		return defaultServiceName
	}

	return name
}
