package grammar

import verr "github.com/astirlang/astir/error"

// FieldKind is the sum type a Field's payload belongs to.
type FieldKind string

const (
	FieldFlag = FieldKind("flag")
	FieldRaw  = FieldKind("raw")
	FieldItem = FieldKind("item")
	FieldList = FieldKind("list")
)

// Field is one member of an attributed statement's (or category's) field
// list. Item and list fields name a type that must resolve, after
// initialization, to a concrete statement in the enclosing machine.
type Field struct {
	Name string
	Kind FieldKind

	// TypeName is set for Item/List fields; it must resolve to a
	// type-forming statement in Machine.
	TypeName     string
	ResolvedType Statement

	// OwnerName is the name of the statement that declared this field,
	// which may differ from the statement currently using it once fields
	// are inherited down a category chain.
	OwnerName string

	Machine *Machine
	Pos     verr.Position
}

// FieldIdentity satisfies register.Field: a stable identity for a resolved
// field pointer, used by action-register equality and deduplication.
func (f *Field) FieldIdentity() string {
	mname := ""
	if f.Machine != nil {
		mname = f.Machine.Name()
	}
	return mname + "." + f.OwnerName + "." + f.Name
}
