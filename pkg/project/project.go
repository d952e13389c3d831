package project

import "fmt"

// AccessLevel is the permission tier a user holds on a project. The values
// follow GitLab's numbering.
type AccessLevel int

const (
	Guest      AccessLevel = 10
	Reporter   AccessLevel = 20
	Developer  AccessLevel = 30
	Maintainer AccessLevel = 40
	Owner      AccessLevel = 50
)

var accessLevelNames = map[AccessLevel]string{
	Guest:      "Guest",
	Reporter:   "Reporter",
	Developer:  "Developer",
	Maintainer: "Maintainer",
	Owner:      "Owner",
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", int(l))
}

// Level returns a pointer to l, for building ProjectInfo values.
func Level(l AccessLevel) *AccessLevel {
	return &l
}

// ProjectInfo is one project as seen by the authenticated user.
type ProjectInfo struct {
	ID                int
	Name              string
	PathWithNamespace string
	HTTPURL           string
	// AccessLevel is nil when the user holds no grant on the project.
	AccessLevel *AccessLevel
}

// AccessLevelName is the human readable access level, "None" when absent.
func (p ProjectInfo) AccessLevelName() string {
	if p.AccessLevel == nil {
		return "None"
	}
	return p.AccessLevel.String()
}
