package fix

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// UnifiedDiff renders the change from before to after as a unified diff
// with a/ and b/ prefixed file names. Identical texts produce "".
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	unified := gotextdiff.ToUnified("a/"+path, "b/"+path, before, edits)
	return fmt.Sprint(unified)
}
