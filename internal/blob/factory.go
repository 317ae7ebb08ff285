package blob

import (
	"context"
	"fmt"
	"os"
)

// Open selects a Store implementation using environment variables.
//
//	ITEMCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	ITEMCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ITEMCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("ITEMCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
