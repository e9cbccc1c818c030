package slack

import (
	"strings"

	"github.com/gosuda/reactkit/internal/messenger"
)

// reactionNames maps unicode markers to Slack reaction names.
var reactionNames = map[messenger.Marker]string{ //nolint:gochecknoglobals // lookup table
	messenger.MarkerYes:      "white_check_mark",
	messenger.MarkerNo:       "x",
	messenger.MarkerPrev:     "arrow_backward",
	messenger.MarkerNext:     "arrow_forward",
	messenger.MarkerFirst:    "rewind",
	messenger.MarkerLast:     "fast_forward",
	messenger.MarkerDog:      "dog",
	messenger.MarkerCat:      "cat",
	messenger.MarkerThumbsUp: "+1",
}

// markersByName is the inverse of reactionNames.
var markersByName = func() map[string]messenger.Marker { //nolint:gochecknoglobals // lookup table
	out := make(map[string]messenger.Marker, len(reactionNames))
	for marker, name := range reactionNames {
		out[name] = marker
	}
	out["thumbsup"] = messenger.MarkerThumbsUp
	return out
}()

// ReactionName returns the Slack reaction name for marker. Unknown markers
// are treated as custom emoji names, with surrounding colons trimmed.
func ReactionName(marker messenger.Marker) string {
	if name, ok := reactionNames[marker]; ok {
		return name
	}
	return strings.Trim(string(marker), ":")
}

// MarkerFor returns the marker for a Slack reaction name. Skin tone suffixes
// are ignored. Unknown names come back unchanged.
func MarkerFor(name string) messenger.Marker {
	base, _, _ := strings.Cut(name, "::")
	if marker, ok := markersByName[base]; ok {
		return marker
	}
	return messenger.Marker(base)
}
