package testing

import (
	"os"
	"path"
	"runtime"
)

// Importing this package for side effects moves the working directory to the
// repository root, so relative paths (logs/, public/) resolve the same way in
// every package's tests:
//
//	import _ "liyu1981.xyz/maintenance-service/pkg/testing"
func init() {
	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
}
