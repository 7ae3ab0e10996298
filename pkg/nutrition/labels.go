package nutrition

import (
	"fmt"
	"strings"
)

// Labels is a detector label space indexed by class id.
type Labels []string

func ParseLabels(s string) Labels {
	var labels Labels
	for _, part := range strings.Split(s, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// Resolve returns the label for a class id. Ids outside the label space get
// a synthetic "class_<id>" name so they still show up as unscored.
func (l Labels) Resolve(classID int) string {
	if classID >= 0 && classID < len(l) && l[classID] != "" {
		return l[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}
