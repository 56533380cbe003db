package telemetry

import "go.opentelemetry.io/otel/attribute"

// MemberKind is the kind of member a thunk is compiled for.
type MemberKind int

func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberConstructor:
		return "constructor"
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberUnknown:
		fallthrough
	default:
		return "unknown"
	}
}

const (
	MemberUnknown MemberKind = iota
	MemberMethod
	MemberConstructor
	MemberField
	MemberProperty
)

func Kind(k MemberKind) attribute.KeyValue {
	return attribute.String("member_kind", k.String())
}

func Member(name string) attribute.KeyValue {
	return attribute.String("member_name", name)
}

func TargetType(name string) attribute.KeyValue {
	return attribute.String("target_type", name)
}

func ContextID(id uint64) attribute.KeyValue {
	return attribute.Int64("context_id", int64(id)) //nolint:gosec
}
