package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyBlobPackageImportsS3SDK ensures the AWS SDK stays behind the
// blob.Store abstraction. Other packages must depend on the Store interface
// instead of reaching for the SDK directly.
func TestOnlyBlobPackageImportsS3SDK(t *testing.T) {
	const sdkPrefix = "github.com/aws/aws-sdk-go-v2"
	const allowedPkg = "itemcore/internal/blob"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "itemcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if pkg.PkgPath == allowedPkg {
			continue
		}
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, sdkPrefix) {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden AWS SDK import: %s", v)
		}
		t.Fatalf("found %d forbidden AWS SDK imports", len(violations))
	}
}
