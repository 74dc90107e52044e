package proxy

import "reflect"

// MemberKind tells how a member is accessed.
type MemberKind int

// Member kinds.
const (
	Method MemberKind = iota
	PropertyGet
	PropertySet
)

func (k MemberKind) String() string {
	switch k {
	case Method:
		return "method"
	case PropertyGet:
		return "property-get"
	case PropertySet:
		return "property-set"
	default:
		return "unknown"
	}
}

// Bucket is the interception policy that applies to a member.
type Bucket int

// Buckets. Only OverridableMethod and OverridableSet are reported.
const (
	Unclassified Bucket = iota
	Foundational
	Excluded
	NonOverridable
	OverridableMethod
	OverridableGet
	OverridableSet
)

func (b Bucket) String() string {
	switch b {
	case Foundational:
		return "foundational"
	case Excluded:
		return "excluded"
	case NonOverridable:
		return "non-overridable"
	case OverridableMethod:
		return "overridable-method"
	case OverridableGet:
		return "overridable-get"
	case OverridableSet:
		return "overridable-set"
	default:
		return "unclassified"
	}
}

// Reported returns true if calls to members in the bucket are recorded as
// activities.
func (b Bucket) Reported() bool {
	return b == OverridableMethod || b == OverridableSet
}

// A Member is one method or property of a proxied type, together with its
// classification. Members are immutable.
type Member struct {
	DeclaringType string
	Name          string
	Kind          MemberKind
	Bucket        Bucket

	// Type is the function type of a method (without receiver) or the value
	// type of a field.
	Type reflect.Type
}

// QualifiedName returns the name that activities of the member are recorded
// under.
func (m *Member) QualifiedName() string {
	return m.DeclaringType + "::" + m.Name
}
