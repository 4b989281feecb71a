package xcodeproj

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Object isa values used by the adapter.
const (
	isaProject            = "PBXProject"
	isaNativeTarget       = "PBXNativeTarget"
	isaAggregateTarget    = "PBXAggregateTarget"
	isaTargetDependency   = "PBXTargetDependency"
	isaContainerItemProxy = "PBXContainerItemProxy"
	isaBuildFile          = "PBXBuildFile"
	isaFileReference      = "PBXFileReference"
	isaConfigurationList  = "XCConfigurationList"
	isaBuildConfiguration = "XCBuildConfiguration"
)

// groupIsas are the object kinds that own children in the navigator tree.
var groupIsas = []string{"PBXGroup", "PBXVariantGroup", "XCVersionGroup"}

type object = map[string]any

func str(o object, key string) string {
	if o == nil {
		return ""
	}
	s, _ := o[key].(string)
	return s
}

func ids(o object, key string) []string {
	if o == nil {
		return nil
	}
	raw, _ := o[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func setIDs(o object, key string, values []string) {
	raw := make([]any, 0, len(values))
	for _, v := range values {
		raw = append(raw, v)
	}
	o[key] = raw
}

// removeID drops id from the list at key and reports whether it was present.
func removeID(o object, key, id string) bool {
	list := ids(o, key)
	idx := slices.Index(list, id)
	if idx < 0 {
		return false
	}
	setIDs(o, key, slices.Delete(list, idx, idx+1))
	return true
}

func isGroup(o object) bool {
	return slices.Contains(groupIsas, str(o, "isa"))
}

func isBuildPhase(o object) bool {
	isa := str(o, "isa")
	return strings.HasPrefix(isa, "PBX") && strings.HasSuffix(isa, "BuildPhase")
}

// displayName returns what the navigator shows for a group or file.
func displayName(o object) string {
	if name := str(o, "name"); name != "" {
		return name
	}
	return str(o, "path")
}

// newObjectID returns a 24 character uppercase hex id, the form Xcode uses.
func newObjectID() string {
	u := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))[:24]
}
