package engine

import (
	"fmt"
	"strings"
)

// SourceType categorizes what caused an XP grant.
type SourceType string

const (
	SourceTask       SourceType = "task"
	SourceJournal    SourceType = "journal"
	SourceAdhoc      SourceType = "adhoc"
	SourceQuest      SourceType = "quest"
	SourceExperiment SourceType = "experiment"
)

func (s SourceType) IsValid() bool {
	switch s {
	case SourceTask, SourceJournal, SourceAdhoc, SourceQuest, SourceExperiment:
		return true
	default:
		return false
	}
}

// ParseSourceType parses user input to a SourceType.
func ParseSourceType(input string) (SourceType, error) {
	s := SourceType(strings.TrimSpace(strings.ToLower(input)))
	if !s.IsValid() {
		return "", ValidationError{Msg: fmt.Sprintf("invalid source type: %q", input)}
	}
	return s, nil
}
