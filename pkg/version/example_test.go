package version_test

import (
	"fmt"

	"github.com/matzehuels/rocks-admin/pkg/version"
)

func ExampleParse() {
	for _, s := range []string{"1.2", "2.0.0-1", "scm-1", "0"} {
		v := version.Parse(s)
		fmt.Println(v, v.Kind())
	}
	// Output:
	// 1.2-1 semantic
	// 2.0.0-1 semantic
	// scm-1 ordinary
	// scm-1 ordinary
}

func ExampleNewSet() {
	set := version.NewSet(
		version.Parse("1.10.0-1"),
		version.Parse("scm-1"),
		version.Parse("1.2.0-2"),
		version.Parse("dev-1"),
		version.Parse("1.2.0-1"),
	)
	for v := range set.All() {
		fmt.Println(v)
	}

	below, _ := set.ClosestBelow(version.Parse("1.10"))
	fmt.Println("below 1.10:", below)
	// Output:
	// dev-1
	// 1.2.0-1
	// 1.2.0-2
	// 1.10.0-1
	// scm-1
	// below 1.10: 1.2.0-2
}
